package osb

import "strings"

// EndpointKind distinguishes the two service definition kinds a project owns.
type EndpointKind string

const (
	KindProxy    EndpointKind = "ProxyService"
	KindBusiness EndpointKind = "BusinessService"
)

// Ref identifies one endpoint in the registry's configuration tree.
// Identity is the full path; a Ref is immutable once resolved.
type Ref struct {
	Kind       EndpointKind
	FolderPath string
	LocalName  string
}

// FullPath returns the registry-wide path, e.g. "Prj1/Proxy/Proxy1".
func (r Ref) FullPath() string {
	if r.FolderPath == "" {
		return r.LocalName
	}
	return r.FolderPath + "/" + r.LocalName
}

// SplitServicePath splits a fully-qualified endpoint path into its containing
// folder path and local name. A path without a separator is all local name.
func SplitServicePath(full string) (folder, local string) {
	full = strings.TrimSpace(full)
	i := strings.LastIndex(full, "/")
	if i < 0 {
		return "", full
	}
	return full[:i], full[i+1:]
}

package osb

import "strings"

// EndpointDetail is a point-in-time snapshot of one endpoint. It is
// recomputed on every query and never cached across a session boundary,
// because activating a session changes the live configuration.
type EndpointDetail struct {
	Ref         Ref
	Enabled     bool
	ServiceURI  string
	WorkManager string
}

// DependencySet is the ordered list of endpoints owned by one project,
// captured before the project is deleted. Ordering is registry-defined.
type DependencySet []EndpointDetail

// Work managers the platform provides; never candidates for cascade cleanup.
var defaultWorkManagers = map[string]struct{}{
	"SBDefaultResponseWorkManager": {},
	"None":                         {},
	"default":                      {},
}

// QueueNames derives the unique set of queue names referenced through
// jms:// service URIs, preserving first-seen order. The bare queue name is
// the last dot-delimited token of the URI's trailing path segment.
func (s DependencySet) QueueNames() []string {
	var names []string
	seen := make(map[string]struct{})
	for _, d := range s {
		name, ok := QueueNameFromURI(d.ServiceURI)
		if !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// WorkManagerNames returns the unique non-default work manager names in the
// set, preserving first-seen order.
func (s DependencySet) WorkManagerNames() []string {
	var names []string
	seen := make(map[string]struct{})
	for _, d := range s {
		name := strings.TrimSpace(d.WorkManager)
		if name == "" {
			continue
		}
		if _, isDefault := defaultWorkManagers[name]; isDefault {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// EnabledFlag renders an enabled state the way the reports print it: 1 for
// enabled, 0 for disabled.
func EnabledFlag(enabled bool) int {
	if enabled {
		return 1
	}
	return 0
}

// QueueNameFromURI extracts the bare queue name from a jms:// service URI.
// For "jms://host:7001/weblogic.jms.ConnFactory/jndi.MY_QUEUE" the result is
// "MY_QUEUE". Non-JMS URIs report ok=false.
func QueueNameFromURI(uri string) (name string, ok bool) {
	uri = strings.TrimSpace(uri)
	if uri == "" || !strings.Contains(uri, "jms://") {
		return "", false
	}
	segments := strings.Split(uri, "/")
	jndi := segments[len(segments)-1]
	if jndi == "" {
		return "", false
	}
	tokens := strings.Split(jndi, ".")
	return tokens[len(tokens)-1], true
}

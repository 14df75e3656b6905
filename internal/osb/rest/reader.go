package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/osb-tools/osbctl/internal/osb"
)

const apiPrefix = "/management/registry"

var _ osb.Reader = (*Client)(nil)

type refPayload struct {
	Kind       string `json:"kind"`
	FolderPath string `json:"folderPath"`
	LocalName  string `json:"localName"`
}

func (p refPayload) toRef() osb.Ref {
	return osb.Ref{
		Kind:       osb.EndpointKind(p.Kind),
		FolderPath: p.FolderPath,
		LocalName:  p.LocalName,
	}
}

func refQuery(ref osb.Ref) url.Values {
	q := url.Values{}
	q.Set("kind", string(ref.Kind))
	q.Set("folder", ref.FolderPath)
	q.Set("name", ref.LocalName)
	return q
}

// ListProjects returns the names of every deployed project.
func (c *Client) ListProjects(ctx context.Context) ([]string, error) {
	endpoint, err := c.endpoint(apiPrefix+"/projects", nil)
	if err != nil {
		return nil, err
	}
	var payload struct {
		Projects []string `json:"projects"`
	}
	if err := c.do(ctx, "list_projects", http.MethodGet, endpoint, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Projects, nil
}

func (c *Client) ProjectExists(ctx context.Context, project string) (bool, error) {
	endpoint, err := c.endpoint(apiPrefix+"/projects/"+url.PathEscape(project), nil)
	if err != nil {
		return false, err
	}
	err = c.do(ctx, "project_exists", http.MethodGet, endpoint, nil, nil)
	if errors.Is(err, errStatusNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ProjectRefs enumerates the references a project owns. A missing project is
// osb.ErrNotFound.
func (c *Client) ProjectRefs(ctx context.Context, project string) ([]osb.Ref, error) {
	endpoint, err := c.endpoint(apiPrefix+"/projects/"+url.PathEscape(project)+"/refs", nil)
	if err != nil {
		return nil, err
	}
	var payload struct {
		Refs []refPayload `json:"refs"`
	}
	err = c.do(ctx, "project_refs", http.MethodGet, endpoint, nil, &payload)
	if errors.Is(err, errStatusNotFound) {
		return nil, fmt.Errorf("project %q: %w", project, osb.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	refs := make([]osb.Ref, 0, len(payload.Refs))
	for _, p := range payload.Refs {
		refs = append(refs, p.toRef())
	}
	return refs, nil
}

func (c *Client) ListEndpoints(ctx context.Context, kind osb.EndpointKind) ([]osb.Ref, error) {
	q := url.Values{}
	q.Set("kind", string(kind))
	endpoint, err := c.endpoint(apiPrefix+"/endpoints", q)
	if err != nil {
		return nil, err
	}
	var payload struct {
		Refs []refPayload `json:"refs"`
	}
	if err := c.do(ctx, "list_endpoints", http.MethodGet, endpoint, nil, &payload); err != nil {
		return nil, err
	}
	refs := make([]osb.Ref, 0, len(payload.Refs))
	for _, p := range payload.Refs {
		refs = append(refs, p.toRef())
	}
	return refs, nil
}

func (c *Client) EnvValue(ctx context.Context, ref osb.Ref, attr osb.AttributeKind) (string, error) {
	return c.envValue(ctx, apiPrefix, ref, attr)
}

func (c *Client) IsEnabled(ctx context.Context, ref osb.Ref) (bool, error) {
	state, err := c.endpointState(ctx, apiPrefix, ref)
	if err != nil {
		return false, err
	}
	return state.Enabled, nil
}

func (c *Client) IsMonitoringEnabled(ctx context.Context, ref osb.Ref) (bool, error) {
	state, err := c.endpointState(ctx, apiPrefix, ref)
	if err != nil {
		return false, err
	}
	return state.MonitoringEnabled, nil
}

// envValue reads one environment attribute of a reference. prefix selects
// the deployed view (apiPrefix) or a session view (sessionPrefix).
func (c *Client) envValue(ctx context.Context, prefix string, ref osb.Ref, attr osb.AttributeKind) (string, error) {
	q := refQuery(ref)
	q.Set("attr", string(attr))
	endpoint, err := c.endpoint(prefix+"/endpoints/env-value", q)
	if err != nil {
		return "", err
	}
	var payload struct {
		Value string `json:"value"`
	}
	err = c.do(ctx, "env_value", http.MethodGet, endpoint, nil, &payload)
	if errors.Is(err, errStatusNotFound) {
		return "", fmt.Errorf("endpoint %q: %w", ref.FullPath(), osb.ErrNotFound)
	}
	if err != nil {
		return "", err
	}
	return payload.Value, nil
}

type endpointState struct {
	Enabled           bool `json:"enabled"`
	MonitoringEnabled bool `json:"monitoringEnabled"`
}

func (c *Client) endpointState(ctx context.Context, prefix string, ref osb.Ref) (endpointState, error) {
	endpoint, err := c.endpoint(prefix+"/endpoints/state", refQuery(ref))
	if err != nil {
		return endpointState{}, err
	}
	var payload endpointState
	err = c.do(ctx, "endpoint_state", http.MethodGet, endpoint, nil, &payload)
	if errors.Is(err, errStatusNotFound) {
		return endpointState{}, fmt.Errorf("endpoint %q: %w", ref.FullPath(), osb.ErrNotFound)
	}
	if err != nil {
		return endpointState{}, err
	}
	return payload, nil
}

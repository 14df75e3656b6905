package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/osb-tools/osbctl/internal/osb"
)

var _ osb.SessionWriter = (*Writer)(nil)

// Writer performs queries and mutations scoped to an open session. It is a
// separate type because the session-scoped reads shadow their deployed-view
// counterparts on Client with an extra session argument.
type Writer struct {
	c *Client
}

// SessionWriter returns the session-scoped view of the client.
func (c *Client) SessionWriter() *Writer {
	return &Writer{c: c}
}

// ProjectExists reports whether the session's uncommitted view still
// contains the project.
func (w *Writer) ProjectExists(ctx context.Context, session, project string) (bool, error) {
	endpoint, err := w.c.endpoint(sessionPrefix(session)+"/projects/"+url.PathEscape(project), nil)
	if err != nil {
		return false, err
	}
	err = w.c.do(ctx, "session_project_exists", http.MethodGet, endpoint, nil, nil)
	if errors.Is(err, errStatusNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (w *Writer) DeleteProject(ctx context.Context, session, project string) error {
	endpoint, err := w.c.endpoint(sessionPrefix(session)+"/projects/"+url.PathEscape(project), nil)
	if err != nil {
		return err
	}
	err = w.c.do(ctx, "delete_project", http.MethodDelete, endpoint, nil, nil)
	if errors.Is(err, errStatusNotFound) {
		return fmt.Errorf("project %q: %w", project, osb.ErrNotFound)
	}
	return err
}

// FindEndpoints resolves (kind, folder, local name) inside the session to
// zero or more references. No match is an empty result, not an error.
func (w *Writer) FindEndpoints(ctx context.Context, session string, kind osb.EndpointKind, folderPath, localName string) ([]osb.Ref, error) {
	q := url.Values{}
	q.Set("kind", string(kind))
	q.Set("folder", folderPath)
	q.Set("name", localName)
	endpoint, err := w.c.endpoint(sessionPrefix(session)+"/endpoints", q)
	if err != nil {
		return nil, err
	}
	var payload struct {
		Refs []refPayload `json:"refs"`
	}
	if err := w.c.do(ctx, "find_endpoints", http.MethodGet, endpoint, nil, &payload); err != nil {
		return nil, err
	}
	refs := make([]osb.Ref, 0, len(payload.Refs))
	for _, p := range payload.Refs {
		refs = append(refs, p.toRef())
	}
	return refs, nil
}

func (w *Writer) EnvValue(ctx context.Context, session string, ref osb.Ref, attr osb.AttributeKind) (string, error) {
	return w.c.envValue(ctx, sessionPrefix(session), ref, attr)
}

func (w *Writer) IsEnabled(ctx context.Context, session string, ref osb.Ref) (bool, error) {
	state, err := w.c.endpointState(ctx, sessionPrefix(session), ref)
	if err != nil {
		return false, err
	}
	return state.Enabled, nil
}

func (w *Writer) IsMonitoringEnabled(ctx context.Context, session string, ref osb.Ref) (bool, error) {
	state, err := w.c.endpointState(ctx, sessionPrefix(session), ref)
	if err != nil {
		return false, err
	}
	return state.MonitoringEnabled, nil
}

func (w *Writer) SetEnabled(ctx context.Context, session string, ref osb.Ref, enabled bool) error {
	return w.setState(ctx, session, "/endpoints/enabled", "set_enabled", ref, enabled)
}

func (w *Writer) SetMonitoringEnabled(ctx context.Context, session string, ref osb.Ref, enabled bool) error {
	return w.setState(ctx, session, "/endpoints/monitoring-enabled", "set_monitoring_enabled", ref, enabled)
}

func (w *Writer) setState(ctx context.Context, session, path, op string, ref osb.Ref, enabled bool) error {
	endpoint, err := w.c.endpoint(sessionPrefix(session)+path, nil)
	if err != nil {
		return err
	}
	in := struct {
		Kind       string `json:"kind"`
		FolderPath string `json:"folderPath"`
		LocalName  string `json:"localName"`
		Enabled    bool   `json:"enabled"`
	}{
		Kind:       string(ref.Kind),
		FolderPath: ref.FolderPath,
		LocalName:  ref.LocalName,
		Enabled:    enabled,
	}
	err = w.c.do(ctx, op, http.MethodPost, endpoint, in, nil)
	if errors.Is(err, errStatusNotFound) {
		return fmt.Errorf("endpoint %q: %w", ref.FullPath(), osb.ErrNotFound)
	}
	return err
}

package rest

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/osb-tools/osbctl/internal/osb"
)

var _ osb.SessionManager = (*Client)(nil)

func sessionPrefix(session string) string {
	return apiPrefix + "/sessions/" + url.PathEscape(session)
}

// Create opens a named configuration session on the server.
func (c *Client) Create(ctx context.Context, name string) error {
	endpoint, err := c.endpoint(apiPrefix+"/sessions", nil)
	if err != nil {
		return err
	}
	in := struct {
		Name string `json:"name"`
	}{Name: name}
	return c.do(ctx, "create_session", http.MethodPost, endpoint, in, nil)
}

// Activate commits the session. The server blocks until the change is fully
// propagated, so this call uses the extended timeout.
func (c *Client) Activate(ctx context.Context, name, comment string) error {
	endpoint, err := c.endpoint(sessionPrefix(name)+"/activate", nil)
	if err != nil {
		return err
	}
	in := struct {
		Comment string `json:"comment"`
	}{Comment: comment}
	return c.doBlocking(ctx, "activate_session", http.MethodPost, endpoint, in, nil)
}

// Discard drops the session. A session that no longer exists counts as
// discarded.
func (c *Client) Discard(ctx context.Context, name string) error {
	endpoint, err := c.endpoint(sessionPrefix(name), nil)
	if err != nil {
		return err
	}
	err = c.do(ctx, "discard_session", http.MethodDelete, endpoint, nil, nil)
	if errors.Is(err, errStatusNotFound) {
		return nil
	}
	return err
}

func (c *Client) Exists(ctx context.Context, name string) (bool, error) {
	endpoint, err := c.endpoint(sessionPrefix(name), nil)
	if err != nil {
		return false, err
	}
	err = c.do(ctx, "session_exists", http.MethodGet, endpoint, nil, nil)
	if errors.Is(err, errStatusNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *Client) ListSessions(ctx context.Context) ([]string, error) {
	endpoint, err := c.endpoint(apiPrefix+"/sessions", nil)
	if err != nil {
		return nil, err
	}
	var payload struct {
		Sessions []string `json:"sessions"`
	}
	if err := c.do(ctx, "list_sessions", http.MethodGet, endpoint, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Sessions, nil
}

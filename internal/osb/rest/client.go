// Package rest implements the osb boundary interfaces against the registry's
// management REST API. One Client serves as configuration reader, session
// manager, and domain editor; session-scoped writes go through the Writer
// handle it hands out.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/osb-tools/osbctl/internal/metrics"
)

const (
	defaultTimeout = 120 * time.Second
	// Activation blocks server side until the change is propagated to every
	// managed node, which can take far longer than a normal call.
	activateTimeout  = 10 * time.Minute
	maxErrorBodySize = 1 << 20 // 1 MiB
)

// ErrAPI is the sentinel every *APIError unwraps to.
var ErrAPI = errors.New("registry api error")

// APIError is a non-2xx response from the management API.
type APIError struct {
	StatusCode int
	Status     string
	Summary    string
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	status := strings.TrimSpace(e.Status)
	summary := strings.TrimSpace(e.Summary)
	if status != "" && summary != "" {
		return fmt.Sprintf("registry api error: %s: %s", status, summary)
	}
	if status != "" {
		return fmt.Sprintf("registry api error: %s", status)
	}
	if summary != "" {
		return fmt.Sprintf("registry api error: %s", summary)
	}
	return "registry api error"
}

func (e *APIError) Unwrap() error {
	return ErrAPI
}

// Client talks to one registry admin server using basic authentication.
type Client struct {
	BaseURL  string
	Username string
	Password string
	HTTP     *http.Client
}

// New creates a registry client. It validates that baseURL and username are
// provided; an empty password is accepted because some test domains run
// without one.
func New(baseURL, username, password string) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	username = strings.TrimSpace(username)

	if base == "" {
		return nil, errors.New("registry base URL is required")
	}
	if username == "" {
		return nil, errors.New("registry username is required")
	}

	return &Client{
		BaseURL:  base,
		Username: username,
		Password: password,
		HTTP:     &http.Client{Timeout: defaultTimeout},
	}, nil
}

func (c *Client) ensureClient() error {
	if c.BaseURL == "" {
		return errors.New("registry base URL is required")
	}
	if c.Username == "" {
		return errors.New("registry username is required")
	}
	if c.HTTP == nil {
		return errors.New("registry http client is not configured")
	}
	return nil
}

// endpoint joins path onto the base URL and encodes the query values.
func (c *Client) endpoint(path string, query url.Values) (string, error) {
	base := strings.TrimRight(c.BaseURL, "/")
	if base == "" {
		return "", errors.New("registry base URL is required")
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	u.Path = strings.TrimRight(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}
	u.Fragment = ""
	return u.String(), nil
}

// do issues one request and decodes a 2xx JSON body into out (when out is
// non-nil). A 404 comes back as errStatusNotFound so callers can map it to
// their domain sentinel; every other non-2xx status becomes an *APIError.
// op labels the request in metrics.
func (c *Client) do(ctx context.Context, op, method, endpoint string, in, out any) error {
	return c.doClient(ctx, c.HTTP, op, method, endpoint, in, out)
}

// doBlocking is do with the extended activation timeout. Commit calls block
// server side until the change is propagated.
func (c *Client) doBlocking(ctx context.Context, op, method, endpoint string, in, out any) error {
	if err := c.ensureClient(); err != nil {
		return err
	}
	hc := *c.HTTP
	hc.Timeout = activateTimeout
	return c.doClient(ctx, &hc, op, method, endpoint, in, out)
}

func (c *Client) doClient(ctx context.Context, hc *http.Client, op, method, endpoint string, in, out any) error {
	if err := c.ensureClient(); err != nil {
		return err
	}

	var reqBody io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.Username, c.Password)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "osbctl")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := hc.Do(req)
	metrics.RegistryRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RegistryRequestErrorsTotal.WithLabelValues(op).Inc()
		return err
	}
	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	resp.Body.Close()
	if readErr != nil {
		metrics.RegistryRequestErrorsTotal.WithLabelValues(op).Inc()
		return readErr
	}

	if resp.StatusCode == http.StatusNotFound {
		return errStatusNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.RegistryRequestErrorsTotal.WithLabelValues(op).Inc()
		return &APIError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Summary:    extractAPIErrorMessage(body),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", op, err)
	}
	return nil
}

// errStatusNotFound is internal to the transport layer. Callers translate it
// to osb.ErrNotFound, a nil lookup result, or a false existence answer.
var errStatusNotFound = errors.New("registry object not found")

func extractAPIErrorMessage(body []byte) string {
	var payload struct {
		Errors  []string `json:"errors"`
		Error   string   `json:"error"`
		Message string   `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if len(payload.Errors) > 0 {
			first := strings.TrimSpace(payload.Errors[0])
			if first != "" {
				return first
			}
		}
		if msg := strings.TrimSpace(payload.Error); msg != "" {
			return msg
		}
		if msg := strings.TrimSpace(payload.Message); msg != "" {
			return msg
		}
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return ""
	}
	if strings.HasPrefix(msg, "<!DOCTYPE html") || strings.HasPrefix(msg, "<html") {
		return ""
	}
	msg = strings.Join(strings.Fields(msg), " ")
	const maxLen = 300
	if len(msg) > maxLen {
		msg = msg[:maxLen] + "..."
	}
	return msg
}

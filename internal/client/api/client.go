// Package api is the HTTP client studyctl uses to talk to the study server.
//
// Record reads used by the session store come back as domain.Lookup values:
// HTTP 404 is NotFound, any other failure is TransientError. Every other call
// returns an *Error for non-2xx responses.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/palavraviva/study-platform/internal/core/domain"
)

// Error is a non-2xx response from the server.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// IsStatus reports whether err is an *Error with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Client calls the study server.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a Client for baseURL. timeout bounds each request.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// do sends in as JSON (when non-nil) and decodes a 2xx body into out (when
// non-nil). token, when set, is sent as a bearer credential.
func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		return &Error{Status: resp.StatusCode, Message: envelope.Error}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// lookup fetches a single record, mapping 404 to NotFound.
func lookup[T any](ctx context.Context, c *Client, path, token string) domain.Lookup[T] {
	var v T
	err := c.do(ctx, http.MethodGet, path, token, nil, &v)
	switch {
	case err == nil:
		return domain.Found(v)
	case IsStatus(err, http.StatusNotFound):
		return domain.NotFound[T]()
	default:
		return domain.TransientError[T](err)
	}
}

// FetchProfile reads the caller's profile row.
func (c *Client) FetchProfile(ctx context.Context, sess domain.Session) domain.Lookup[domain.ProfileRecord] {
	return lookup[domain.ProfileRecord](ctx, c, "/v1/profile", sess.AccessToken)
}

// FetchAdminMembership reads the caller's admin allow-list row.
func (c *Client) FetchAdminMembership(ctx context.Context, sess domain.Session) domain.Lookup[domain.AdminMembership] {
	return lookup[domain.AdminMembership](ctx, c, "/v1/admin-membership", sess.AccessToken)
}

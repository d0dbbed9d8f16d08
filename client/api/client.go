// Package api is the HTTP client the client components share. It maps every
// outcome onto one of two errors: *ServerError when the server answered with
// a decodable failure, and an error matching ErrUnreachable when it could not
// be reached or answered with something undecodable.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/mysupport/mysupport/pkg/i18n"
)

// ErrUnreachable matches every transport failure.
var ErrUnreachable = errors.New("server unreachable")

// UnreachableError carries the localized message shown for transport
// failures. Cause is kept for logs only.
type UnreachableError struct {
	Message string
	Cause   error
}

func (e *UnreachableError) Error() string { return e.Message }

func (e *UnreachableError) Is(target error) bool { return target == ErrUnreachable }

func (e *UnreachableError) Unwrap() error { return e.Cause }

// ServerError is a decoded failure answer. Message is the server's error
// string or the localized generic fallback.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string { return e.Message }

// envelope is the part every response may carry.
type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Client talks JSON to the API.
type Client struct {
	baseURL string
	http    *http.Client
	loc     *i18n.Localizer
}

// New returns a Client for baseURL. Messages are localized with loc.
func New(baseURL string, httpClient *http.Client, loc *i18n.Localizer) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: baseURL, http: httpClient, loc: loc}
}

// Localizer returns the client's localizer.
func (c *Client) Localizer() *i18n.Localizer {
	return c.loc
}

// Response is a decoded answer.
type Response struct {
	Status  int
	Success bool
	Error   string
	body    []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Decode unmarshals the body into out.
func (r *Response) Decode(out any) error {
	return json.Unmarshal(r.body, out)
}

// Do sends body (when non-nil) as JSON with the session token (when
// non-empty) and returns the decoded answer whatever its status. Only
// transport and decoding failures are errors.
func (c *Client) Do(ctx context.Context, method, path, token string, body any) (*Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept-Language", c.loc.Lang())
	if token != "" {
		req.Header.Set("X-Session-Token", token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.unreachable(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.unreachable(err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, c.unreachable(err)
	}

	return &Response{Status: resp.StatusCode, Success: env.Success, Error: env.Error, body: data}, nil
}

// Call is Do plus the common failure mapping: a non-2xx answer becomes a
// *ServerError and a 2xx answer is decoded into out (when non-nil).
func (c *Client) Call(ctx context.Context, method, path, token string, body, out any) error {
	resp, err := c.Do(ctx, method, path, token, body)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return c.ServerError(resp)
	}
	if out != nil {
		if err := resp.Decode(out); err != nil {
			return c.unreachable(err)
		}
	}
	return nil
}

// ServerError builds the error for a failure answer.
func (c *Client) ServerError(resp *Response) *ServerError {
	msg := resp.Error
	if msg == "" {
		msg = c.loc.T("client.genericError")
	}
	return &ServerError{Status: resp.Status, Message: msg}
}

func (c *Client) unreachable(cause error) error {
	return &UnreachableError{Message: c.loc.T("client.unreachable"), Cause: cause}
}

// Package client is a Go client for the LIMS API. Login opens a Session
// holding the bearer token; the session detects expiry and refuses further
// use once closed. Request timeouts surface as ErrTimeout so callers can
// tell a slow server from a rejection.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 15 * time.Second

// ErrTimeout reports that the server did not answer within the client's
// request timeout.
var ErrTimeout = errors.New("lims: request timed out")

// ErrSessionClosed reports use of a session after Close or after the server
// rejected its token.
var ErrSessionClosed = errors.New("lims: session closed")

// APIError is a non-2xx response decoded from the server's error body.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("lims: %d %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	httpc   *http.Client
	timeout time.Duration
}

type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithHTTPClient substitutes the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpc = hc }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpc:   &http.Client{},
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login authenticates and opens a session.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var resp struct {
		Token string      `json:"token"`
		User  UserSummary `json:"user"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/login", "", body, &resp); err != nil {
		return nil, err
	}
	return &Session{client: c, token: resp.Token, user: resp.User}, nil
}

// do runs one request with the client timeout applied, optionally encoding a
// JSON body and decoding a JSON response. Deadline overruns come back as
// ErrTimeout.
func (c *Client) do(ctx context.Context, method, path, token string, in, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("lims: encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("lims: build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return fmt.Errorf("lims: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		if errBody.Error == "" {
			errBody.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: errBody.Error}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("lims: decode response: %w", err)
		}
	}
	return nil
}

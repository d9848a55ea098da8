// Package api is a client for the remote storefront API. Every endpoint
// answers with a {success, data, message} envelope.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// DefaultTimeout bounds a single API call.
const DefaultTimeout = 30 * time.Second

// TokenSource supplies the bearer token for authenticated calls. An empty
// token sends the request anonymously.
type TokenSource interface {
	Token() string
}

// Client calls the remote API.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New creates a client for the API rooted at baseURL. tokens may be nil.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		tokens:  tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Envelope is the response wrapper used by every endpoint.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

// call performs a request and decodes the envelope's data into T.
func call[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	var zero T
	op := method + " " + path

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return zero, errors.Wrap(err, "encoding request")
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return zero, errors.Wrap(err, "building request")
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return zero, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	slog.Debug("api call", "method", method, "path", path, "status", resp.StatusCode,
		"request_id", requestID, "duration", time.Since(start))

	var env Envelope[T]
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return zero, &Error{Status: resp.StatusCode, Message: messageOr(env.Message, resp.StatusCode)}
	}
	if decodeErr != nil {
		if resp.StatusCode >= 300 {
			return zero, &Error{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return zero, &TransportError{Op: op, Err: errors.Wrap(decodeErr, "decoding response")}
	}
	if !env.Success || resp.StatusCode >= 300 {
		return zero, &Error{Status: resp.StatusCode, Message: messageOr(env.Message, resp.StatusCode)}
	}
	return env.Data, nil
}

func messageOr(message string, status int) string {
	if message != "" {
		return message
	}
	if status >= 300 {
		return http.StatusText(status)
	}
	return "request failed"
}

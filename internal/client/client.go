// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package client is a typed HTTP client for the QuillPress content API.
// Each Client value carries its own bearer token; there is no shared
// authentication state between values.
package client

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

	"quillpress/internal/apperr"
	"quillpress/internal/httpx"
)

// Client calls one QuillPress server.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a client for the server at baseURL, for example
// "http://localhost:8080".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithToken returns a copy of c that authenticates as token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// Token returns the bearer token of c, or "" for an anonymous client.
func (c *Client) Token() string { return c.token }

// envelope is the only response shape the server produces. Success is a
// pointer so a body without it is rejected.
type envelope struct {
	Success    *bool               `json:"success"`
	Data       json.RawMessage     `json:"data"`
	Pagination *httpx.Pagination   `json:"pagination"`
	Error      string              `json:"error"`
	Details    []apperr.FieldError `json:"details"`
}

// malformed reports a response that does not follow the envelope.
func malformed(format string, args ...any) *apperr.Error {
	return &apperr.Error{
		Kind:    apperr.KindServer,
		Message: "Unexpected response from server",
		Err:     fmt.Errorf(format, args...),
	}
}

// do sends a request and decodes the data of a success envelope into out,
// which may be nil. Failure envelopes are returned as *apperr.Error with
// the kind derived from the status code.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) (*httpx.Pagination, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("client marshal: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("client request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client http: %w", err)
	}
	defer resp.Body.Close()

	return decodeEnvelope(resp, out)
}

func decodeEnvelope(resp *http.Response, out any) (*httpx.Pagination, error) {
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("client read body: %w", err)
	}

	var env envelope
	dec := json.NewDecoder(bytes.NewReader(respBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&env); err != nil {
		return nil, malformed("status %d: %w", resp.StatusCode, err)
	}
	if dec.More() {
		return nil, malformed("status %d: trailing data after envelope", resp.StatusCode)
	}
	if env.Success == nil {
		return nil, malformed("status %d: missing success flag", resp.StatusCode)
	}

	if !*env.Success {
		if env.Error == "" || resp.StatusCode < 400 {
			return nil, malformed("status %d: failure without error message", resp.StatusCode)
		}
		return nil, &apperr.Error{
			Kind:    httpx.KindForStatus(resp.StatusCode),
			Message: env.Error,
			Fields:  env.Details,
		}
	}

	if resp.StatusCode >= 400 {
		return nil, malformed("status %d: success envelope on error status", resp.StatusCode)
	}
	if len(env.Data) == 0 || env.Error != "" {
		return nil, malformed("status %d: success envelope without data", resp.StatusCode)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, malformed("status %d: decode data: %w", resp.StatusCode, err)
		}
	}
	return env.Pagination, nil
}

// ErrNoToken is returned by calls that need a token on an anonymous client.
var ErrNoToken = errors.New("client has no token")

func (c *Client) requireToken() error {
	if c.token == "" {
		return &apperr.Error{Kind: apperr.KindUnauthenticated, Message: "Not authorized to access this route", Err: ErrNoToken}
	}
	return nil
}

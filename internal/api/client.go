// Package api is a client for the shortener REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	shortenPath = "/api/shorten"
	lookupPath  = "/api/url/"
)

// Client talks to the shortener API. Every call is a single round trip:
// no retries, no caching and no timeout beyond the caller's context.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BaseURL returns the API root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Shorten asks the API for a short link to rawURL.
func (c *Client) Shorten(ctx context.Context, rawURL string) (*ShortenResponse, error) {
	payload, err := json.Marshal(ShortenRequest{URL: rawURL})
	if err != nil {
		return nil, &Error{Message: msgInvalidResponse, Err: err}
	}

	var resp ShortenResponse
	if err := c.do(ctx, http.MethodPost, c.baseURL+shortenPath, bytes.NewReader(payload), &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// Lookup resolves a short code to its original URL.
func (c *Client) Lookup(ctx context.Context, code string) (*LookupResponse, error) {
	if code == "" {
		return nil, ErrEmptyCode
	}

	var resp LookupResponse
	if err := c.do(ctx, http.MethodGet, c.baseURL+lookupPath+url.PathEscape(code), nil, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// Ping reports whether the API answers HTTP at all. Any status counts.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/", nil)
	if err != nil {
		return transportError(err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(err)
	}

	_ = resp.Body.Close()

	return nil
}

func (c *Client) do(ctx context.Context, method, target string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return transportError(err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Message: msgInvalidResponse, Status: resp.StatusCode, Err: err}
	}

	return nil
}

func decodeError(status int, data []byte) error {
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil || body.Message == "" {
		return unexpectedStatus(status)
	}

	return &Error{Message: body.Message, Status: status}
}

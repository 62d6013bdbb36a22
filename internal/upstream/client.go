// Package upstream provides the base HTTP client for vehicle-data providers with:
// - Query building and JSON decoding
// - Standardized non-2xx error parsing
// - Request-ID forwarding and metrics hooks
//
// There are no retries: a failed call is reported once and the adapter decides
// whether to propagate or degrade.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"carwise/internal/core"
	"carwise/internal/httpclient"
)

const maxBodySize = 10 * 1024 * 1024 // 10 MB

// Hooks receives one observation per upstream round-trip.
// status is 0 when the request never got a response.
type Hooks interface {
	ObserveRequest(source string, status int, duration time.Duration)
}

// Config holds configuration for the upstream client
type Config struct {
	// Source identifies the provider in errors, logs and metrics
	Source string

	// BaseURL is the API base URL
	BaseURL string

	// Timeout bounds each request when no custom http.Client is supplied
	Timeout time.Duration

	Hooks Hooks
}

// HeaderSetter is a function that sets headers on an HTTP request
type HeaderSetter func(req *http.Request)

// Client is a base HTTP client for vehicle-data providers
type Client struct {
	httpClient   *http.Client
	config       Config
	headerSetter HeaderSetter
}

// New creates a client backed by the shared httpclient factory.
func New(config Config, headerSetter HeaderSetter) *Client {
	return NewWithHTTPClient(httpclient.WithTimeout(config.Timeout), config, headerSetter)
}

// NewWithHTTPClient creates a client with a custom HTTP client.
// If httpClient is nil, http.DefaultClient is used.
func NewWithHTTPClient(httpClient *http.Client, config Config, headerSetter HeaderSetter) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient:   httpClient,
		config:       config,
		headerSetter: headerSetter,
	}
}

// SetBaseURL updates the base URL
func (c *Client) SetBaseURL(url string) {
	c.config.BaseURL = url
}

// BaseURL returns the current base URL
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// Source returns the provider name used in errors.
func (c *Client) Source() string {
	return c.config.Source
}

// Request represents a GET request to be made.
// Path is appended to the base URL verbatim, so callers escape path segments.
type Request struct {
	Path    string
	Query   url.Values
	Headers map[string]string
}

// Response represents an HTTP response
type Response struct {
	StatusCode int
	Body       []byte
}

// Get executes req and decodes a 2xx JSON body into result.
func (c *Client) Get(ctx context.Context, req Request, result any) error {
	resp, err := c.GetRaw(ctx, req)
	if err != nil {
		return err
	}

	if result != nil {
		if err := json.Unmarshal(resp.Body, result); err != nil {
			return core.NewUpstreamError(c.config.Source, resp.StatusCode, "failed to unmarshal response: "+err.Error(), err)
		}
	}
	return nil
}

// GetRaw executes req and returns the raw 2xx response.
// Non-2xx responses become an UpstreamError carrying the upstream status code.
func (c *Client) GetRaw(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.observe(0, start)
		return nil, core.NewUpstreamError(c.config.Source, 0, "failed to send request: "+err.Error(), err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	c.observe(resp.StatusCode, start)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		// status 0 marks a transport-class failure
		return nil, core.NewUpstreamError(c.config.Source, 0, "failed to read response: "+err.Error(), err)
	}
	if len(body) > maxBodySize {
		return nil, core.NewUpstreamError(c.config.Source, 0,
			fmt.Sprintf("response body too large (exceeds %d bytes)", maxBodySize), nil)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, core.ParseUpstreamError(c.config.Source, resp.StatusCode, body)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}

func (c *Client) observe(status int, start time.Time) {
	if c.config.Hooks != nil {
		c.config.Hooks.ObserveRequest(c.config.Source, status, time.Since(start))
	}
}

// buildRequest creates an HTTP request from a Request
func (c *Client) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	target := c.config.BaseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, core.NewInvalidRequestError("failed to create request", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	if requestID := core.RequestID(ctx); requestID != "" {
		httpReq.Header.Set("X-Request-Id", requestID)
	}

	if c.headerSetter != nil {
		c.headerSetter(httpReq)
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	return httpReq, nil
}

// StatusCode extracts the upstream status from an error returned by Get/GetRaw, or 0.
func StatusCode(err error) int {
	var ce *core.CarwiseError
	if errors.As(err, &ce) {
		return ce.StatusCode
	}
	return 0
}

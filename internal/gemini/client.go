// Package gemini is a minimal client for the Gemini Interactions and
// generate-content REST APIs, covering what the research CLI needs:
// streamed interaction creation, interaction status lookup and streamed
// generation with thought summaries.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the public Gemini API endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com"

	// DefaultAPIVersion is the API version that exposes interactions.
	DefaultAPIVersion = "v1alpha"

	apiKeyHeader = "x-goog-api-key"
)

// ErrMissingAPIKey is returned by New when no API key is given.
var ErrMissingAPIKey = errors.New("gemini: API key is required")

// Client talks to the Gemini REST API.
type Client struct {
	apiKey     string
	baseURL    *url.URL
	apiVersion string
	http       *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint. Blank values are ignored.
func WithBaseURL(raw string) Option {
	return func(c *Client) {
		if raw == "" {
			return
		}
		if u, err := url.Parse(strings.TrimRight(raw, "/")); err == nil {
			c.baseURL = u
		} else {
			c.baseURL = nil
		}
	}
}

// WithAPIVersion selects the API version path segment.
func WithAPIVersion(v string) Option {
	return func(c *Client) {
		if v != "" {
			c.apiVersion = v
		}
	}
}

// WithTimeout bounds every request, including reading a streamed body.
// Zero means no limit.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New creates a client. It fails when the key is empty or the base URL is
// not an absolute http(s) URL.
func New(apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}

	base, _ := url.Parse(DefaultBaseURL)
	c := &Client{
		apiKey:     apiKey,
		baseURL:    base,
		apiVersion: DefaultAPIVersion,
		http:       &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.baseURL == nil || c.baseURL.Host == "" ||
		(c.baseURL.Scheme != "http" && c.baseURL.Scheme != "https") {
		return nil, fmt.Errorf("gemini: invalid base URL")
	}

	return c, nil
}

// endpoint joins the versioned API root with path and optional query.
func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + c.apiVersion + "/" + strings.TrimLeft(path, "/")
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends a request and returns the response when the status is 2xx.
// Other statuses are turned into an APIError and the body is closed.
func (c *Client) do(
	ctx context.Context,
	method, endpoint string,
	body any,
	stream bool,
) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if stream {
		req.Header.Set("Accept", "text/event-stream")
	}
	req.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling Gemini API: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return nil, newAPIError(resp.StatusCode, respBody)
	}

	return resp, nil
}

// streamEvents turns an event-stream body into a sequence of events. The
// body is closed when the sequence ends or the consumer stops early.
// Payloads for which decode reports false are skipped.
func streamEvents(
	body io.ReadCloser,
	decode func([]byte) (Event, bool, error),
) iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		defer body.Close()

		r := newSSEReader(body)
		for {
			data, err := r.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(Event{}, fmt.Errorf("reading stream: %w", err))
				return
			}

			if bytes.Equal(bytes.TrimSpace(data), []byte("[DONE]")) {
				continue
			}

			ev, ok, err := decode(data)
			if err != nil {
				yield(Event{}, err)
				return
			}
			if !ok {
				continue
			}
			if !yield(ev, nil) {
				return
			}
		}
	}
}

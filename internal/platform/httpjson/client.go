// Package httpjson is the shared outbound client for the upstream book
// catalogs: one rate limiter, one User-Agent and one timeout per client.
package httpjson

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const maxBodySnippet = 512

type Options struct {
	Timeout   time.Duration
	UserAgent string
	// RPS caps outbound requests per second. Zero disables limiting.
	RPS float64
	// HTTPClient overrides the default client; its Timeout is left alone.
	HTTPClient *http.Client
}

type Client struct {
	httpClient *http.Client
	userAgent  string
	limiter    *rate.Limiter
}

func NewClient(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RPS), 1)
	}

	return &Client{
		httpClient: hc,
		userAgent:  opts.UserAgent,
		limiter:    limiter,
	}
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// DecodeError is returned when a 2xx body is not the expected JSON.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("GET %s: decode body: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// GetJSON issues a single GET and decodes the body into target. It never
// retries; transport failures come back wrapped as-is.
func (c *Client) GetJSON(ctx context.Context, rawURL string, target any) error {
	safeURL := redact(rawURL)

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("GET %s: rate limit wait: %w", safeURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("GET %s: build request: %w", safeURL, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", safeURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	slog.DebugContext(ctx, "upstream response",
		"url", safeURL,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodySnippet))
		return &StatusError{URL: safeURL, StatusCode: resp.StatusCode, Body: string(snippet)}
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return &DecodeError{URL: safeURL, Err: err}
	}
	return nil
}

// redact strips credentials from a URL before it lands in logs or errors.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid url>"
	}
	q := u.Query()
	if q.Has("key") {
		q.Set("key", "REDACTED")
		u.RawQuery = q.Encode()
	}
	u.User = nil
	return u.String()
}

// Package client talks to a booknook API server. It implements the pager's
// Searcher and Adder so a terminal front end can drive searches and adds.
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
	"strconv"
	"strings"
	"sync"
	"time"

	"booknook/internal/book"
	"booknook/internal/catalog"
	"booknook/internal/pager"
)

var ErrNotAuthenticated = errors.New("not signed in")

// APIError is a non-2xx envelope from the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Details    []FieldError
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api status %d", e.StatusCode)
	}
	return fmt.Sprintf("api status %d: %s: %s", e.StatusCode, e.Code, e.Message)
}

type Options struct {
	BaseURL    string
	Token      string
	UserAgent  string
	Timeout    time.Duration
	HTTPClient *http.Client
}

type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client

	mu    sync.RWMutex
	token string
}

var (
	_ pager.Searcher = (*Client)(nil)
	_ pager.Adder    = (*Client)(nil)
)

func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		userAgent: opts.UserAgent,
		http:      hc,
		token:     opts.Token,
	}
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
	Error   *struct {
		Code    string       `json:"code"`
		Message string       `json:"message"`
		Details []FieldError `json:"details"`
	} `json:"error"`
}

// do sends one request and decodes the envelope's data into out. out may
// be nil for 204 responses.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any, authed bool) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if authed {
		token := c.Token()
		if token == "" {
			return ErrNotAuthenticated
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 300 {
			return &APIError{StatusCode: resp.StatusCode}
		}
		return fmt.Errorf("%s %s: decode envelope: %w", method, path, err)
	}

	if resp.StatusCode >= 300 || !env.Success {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
			apiErr.Details = env.Error.Details
		}
		return apiErr
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%s %s: decode data: %w", method, path, err)
		}
	}
	return nil
}

// Tokens is the pair returned by sign-in.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// Login signs in with email and password and keeps the access token for
// later calls.
func (c *Client) Login(ctx context.Context, email, password string) (Tokens, error) {
	var tokens Tokens
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/v1/users/login", nil, body, &tokens, false); err != nil {
		return Tokens{}, err
	}
	c.SetToken(tokens.AccessToken)
	return tokens, nil
}

// Search runs GET /v1/search-books.
func (c *Client) Search(ctx context.Context, query string, source catalog.Source, page, pageSize int) (catalog.SearchResult, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("dataSource", source.String())
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(pageSize))

	var res catalog.SearchResult
	if err := c.do(ctx, http.MethodGet, "/v1/search-books", q, nil, &res, false); err != nil {
		return catalog.SearchResult{}, err
	}
	if res.Books == nil {
		res.Books = []catalog.NormalizedBook{}
	}
	return res, nil
}

// AddBook stores a search hit in the signed-in user's collection.
func (c *Client) AddBook(ctx context.Context, b pager.NewBook) error {
	return c.do(ctx, http.MethodPost, "/v1/books", nil, b, nil, true)
}

// ListBooks returns one page of the signed-in user's collection.
func (c *Client) ListBooks(ctx context.Context, page, pageSize int) ([]book.Book, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))

	var books []book.Book
	if err := c.do(ctx, http.MethodGet, "/v1/books", q, nil, &books, true); err != nil {
		return nil, err
	}
	return books, nil
}

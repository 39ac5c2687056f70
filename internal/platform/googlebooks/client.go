package googlebooks

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"booknook/internal/platform/httpjson"
)

const DefaultBaseURL = "https://www.googleapis.com/books/v1"

// Getter is the slice of httpjson.Client the catalog clients need.
type Getter interface {
	GetJSON(ctx context.Context, rawURL string, target any) error
}

type Client struct {
	http    Getter
	baseURL string
	apiKey  string
}

func NewClient(http Getter, baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:    http,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

var _ Getter = (*httpjson.Client)(nil)

// VolumesResponse matches /volumes. TotalItems is a pointer so that a
// missing field can be told apart from zero.
type VolumesResponse struct {
	TotalItems *int     `json:"totalItems"`
	Items      []Volume `json:"items"`
}

type Volume struct {
	ID         string     `json:"id"`
	VolumeInfo VolumeInfo `json:"volumeInfo"`
}

type VolumeInfo struct {
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Description   string   `json:"description"`
	AverageRating *float64 `json:"averageRating"`
	PublishedDate string   `json:"publishedDate"`
	PageCount     *int     `json:"pageCount"`
	Language      string   `json:"language"`
}

type SearchParams struct {
	Query      string
	StartIndex int
	MaxResults int
}

func (c *Client) searchURL(p SearchParams) string {
	q := url.Values{}
	q.Set("q", p.Query)
	q.Set("startIndex", strconv.Itoa(p.StartIndex))
	q.Set("maxResults", strconv.Itoa(p.MaxResults))
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}
	return c.baseURL + "/volumes?" + q.Encode()
}

func (c *Client) SearchVolumes(ctx context.Context, p SearchParams) (*VolumesResponse, error) {
	var res VolumesResponse
	if err := c.http.GetJSON(ctx, c.searchURL(p), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

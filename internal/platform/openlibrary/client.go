package openlibrary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const DefaultBaseURL = "https://openlibrary.org"

// searchFields is the projection requested from search.json.
var searchFields = []string{
	"key",
	"title",
	"author_name",
	"first_sentence",
	"ratings_average",
	"first_publish_year",
	"number_of_pages_median",
	"language",
}

// Getter is the slice of httpjson.Client this client needs.
type Getter interface {
	GetJSON(ctx context.Context, rawURL string, target any) error
}

type Client struct {
	http    Getter
	baseURL string
}

func NewClient(http Getter, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{http: http, baseURL: strings.TrimRight(baseURL, "/")}
}

// SearchResponse matches search.json. Older deployments spell the total
// num_found; both are pointers so a missing total is detectable.
type SearchResponse struct {
	NumFound       *int  `json:"numFound"`
	NumFoundLegacy *int  `json:"num_found"`
	Docs           []Doc `json:"docs"`
}

// Total returns the reported total and whether either spelling was present.
func (r *SearchResponse) Total() (int, bool) {
	switch {
	case r.NumFound != nil:
		return *r.NumFound, true
	case r.NumFoundLegacy != nil:
		return *r.NumFoundLegacy, true
	}
	return 0, false
}

type Doc struct {
	Key                 string        `json:"key"`
	Title               string        `json:"title"`
	AuthorNames         []string      `json:"author_name"`
	FirstSentence       FirstSentence `json:"first_sentence"`
	RatingsAverage      *float64      `json:"ratings_average"`
	FirstPublishYear    *int          `json:"first_publish_year"`
	NumberOfPagesMedian *int          `json:"number_of_pages_median"`
	Language            []string      `json:"language"`
}

// FirstSentence accepts a plain string, a list of strings, or a
// {"type": ..., "value": ...} text object.
type FirstSentence string

func (f *FirstSentence) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FirstSentence(s)
	case '[':
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*f = FirstSentence(strings.Join(list, ", "))
	case '{':
		var obj struct {
			Value string `json:"value"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		*f = FirstSentence(obj.Value)
	default:
		return fmt.Errorf("first_sentence: unsupported JSON %q", data)
	}
	return nil
}

type SearchParams struct {
	Query string
	Page  int
	Limit int
}

func (c *Client) searchURL(p SearchParams) string {
	q := url.Values{}
	q.Set("q", p.Query)
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("limit", strconv.Itoa(p.Limit))
	q.Set("fields", strings.Join(searchFields, ","))
	return c.baseURL + "/search.json?" + q.Encode()
}

func (c *Client) Search(ctx context.Context, p SearchParams) (*SearchResponse, error) {
	var res SearchResponse
	if err := c.http.GetJSON(ctx, c.searchURL(p), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

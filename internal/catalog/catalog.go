package catalog

import (
	"errors"
	"fmt"
)

// Source selects which upstream catalog a search runs against.
type Source string

const (
	SourceGoogleBooks Source = "googleBooks"
	SourceOpenLibrary Source = "openLibrary"
)

// NotAvailable fills string fields the upstream left empty.
const NotAvailable = "N/A"

var (
	ErrInvalidSource = errors.New("invalid data source")
	ErrEmptyQuery    = errors.New("query must not be empty")
)

func ParseSource(s string) (Source, error) {
	switch Source(s) {
	case SourceGoogleBooks, SourceOpenLibrary:
		return Source(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSource, s)
}

func (s Source) String() string { return string(s) }

// NormalizedBook is one search hit. Every field is always populated.
type NormalizedBook struct {
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Description   string   `json:"description"`
	Rating        float64  `json:"rating"`
	PublishedDate string   `json:"publishedDate"`
	PageCount     int      `json:"pageCount"`
	Language      string   `json:"language"`
	LanguageName  string   `json:"languageName"`
}

// SearchResult is one page of hits. TotalItems is what the upstream
// reported, not len(Books).
type SearchResult struct {
	Books      []NormalizedBook `json:"books"`
	TotalItems int              `json:"totalItems"`
}

// UpstreamError covers transport failures and non-2xx upstream responses.
// StatusCode is zero for transport failures.
type UpstreamError struct {
	Source     Source
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: upstream status %d: %v", e.Source, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: upstream request failed: %v", e.Source, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// MalformedResponseError is returned when a 2xx body cannot be decoded or
// lacks the total count.
type MalformedResponseError struct {
	Source Source
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: malformed response: %s: %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: malformed response: %s", e.Source, e.Reason)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

package catalog

import (
	"errors"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"booknook/internal/platform/httpjson"
)

func clampRating(r *float64) float64 {
	if r == nil || math.IsNaN(*r) || *r < 0 {
		return 0
	}
	if *r > 5 {
		return 5
	}
	return *r
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotAvailable
	}
	return s
}

func nonNegative(n *int) int {
	if n == nil || *n < 0 {
		return 0
	}
	return *n
}

func authorsOrEmpty(a []string) []string {
	if a == nil {
		return []string{}
	}
	return a
}

// LanguageName resolves a language code (ISO 639-1 or 639-3) to its own
// name, e.g. "de" to "Deutsch". Unknown codes give "N/A".
func LanguageName(code string) string {
	if code == "" || code == NotAvailable {
		return NotAvailable
	}
	tag, err := language.Parse(code)
	if err != nil {
		return NotAvailable
	}
	name := display.Self.Name(tag)
	if name == "" {
		return NotAvailable
	}
	return name
}

// classify maps a transport error from httpjson onto the catalog error types.
func classify(src Source, err error) error {
	var statusErr *httpjson.StatusError
	if errors.As(err, &statusErr) {
		return &UpstreamError{Source: src, StatusCode: statusErr.StatusCode, Err: err}
	}
	var decodeErr *httpjson.DecodeError
	if errors.As(err, &decodeErr) {
		return &MalformedResponseError{Source: src, Reason: "undecodable body", Err: err}
	}
	return &UpstreamError{Source: src, Err: err}
}

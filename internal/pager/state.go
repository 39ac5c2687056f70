// Package pager holds the client-side browsing state for catalog search:
// the current query, source and page, and the set of in-flight adds.
package pager

import (
	"errors"
	"strings"

	"booknook/internal/catalog"
)

const DefaultPageSize = 9

var ErrAddInFlight = errors.New("add already in progress for this book")

// PageState changes only through its named transitions; the accessors
// are read-only.
type PageState struct {
	query      string
	source     catalog.Source
	page       int
	pageSize   int
	totalPages int

	inFlight map[string]struct{}
}

func NewPageState(source catalog.Source, pageSize int) PageState {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return PageState{
		source:     source,
		page:       1,
		pageSize:   pageSize,
		totalPages: 1,
		inFlight:   make(map[string]struct{}),
	}
}

func (s PageState) Query() string          { return s.query }
func (s PageState) Source() catalog.Source { return s.source }
func (s PageState) Page() int              { return max(s.page, 1) }
func (s PageState) PageSize() int          { return s.pageSize }
func (s PageState) TotalPages() int        { return max(s.totalPages, 1) }

// SetQuery replaces the query and returns to page 1. The page count of the
// previous query no longer applies.
func (s *PageState) SetQuery(q string) {
	s.query = strings.TrimSpace(q)
	s.page = 1
	s.totalPages = 1
}

// SetSource switches catalogs and returns to page 1.
func (s *PageState) SetSource(src catalog.Source) {
	s.source = src
	s.page = 1
	s.totalPages = 1
}

// SetPage moves to p, clamped to [1, TotalPages].
func (s *PageState) SetPage(p int) {
	s.page = min(max(p, 1), s.TotalPages())
}

func (s *PageState) setTotalPages(n int) {
	s.totalPages = max(n, 1)
}

func (s *PageState) resetPage() {
	s.page = 1
}

// BeginAdd marks key as in flight. It fails if key already is.
func (s *PageState) BeginAdd(key string) error {
	if s.inFlight == nil {
		s.inFlight = make(map[string]struct{})
	}
	if _, busy := s.inFlight[key]; busy {
		return ErrAddInFlight
	}
	s.inFlight[key] = struct{}{}
	return nil
}

func (s *PageState) EndAdd(key string) {
	delete(s.inFlight, key)
}

func (s *PageState) Adding(key string) bool {
	_, busy := s.inFlight[key]
	return busy
}

// snapshot copies the state without sharing the in-flight set.
func (s *PageState) snapshot() PageState {
	c := *s
	c.inFlight = nil
	return c
}

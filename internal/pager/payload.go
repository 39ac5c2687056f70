package pager

import (
	"strings"

	"booknook/internal/catalog"
)

// NewBook is the body sent to POST /v1/books when adding a search hit.
type NewBook struct {
	Title           string `json:"title"`
	Author          string `json:"author"`
	Rating          int    `json:"rating"`
	TotalPageCount  int    `json:"totalPageCount"`
	CurrentReadPage int    `json:"currentReadPage"`
}

func NewBookFrom(b catalog.NormalizedBook) NewBook {
	return NewBook{
		Title:           b.Title,
		Author:          strings.Join(b.Authors, ", "),
		Rating:          int(b.Rating),
		TotalPageCount:  b.PageCount,
		CurrentReadPage: 0,
	}
}

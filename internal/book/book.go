package book

import (
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned when a book does not exist or belongs to
// another user.
var ErrNotFound = errors.New("book not found")

var ErrInvalidStatus = errors.New("invalid reading status")

const (
	MaxTitleLen = 100
	MaxPages    = 99999
	MaxRating   = 5
)

// Status is derived from reading progress; it is never stored.
type Status string

const (
	StatusNotStarted Status = "NOT_STARTED"
	StatusReading    Status = "READING"
	StatusFinished   Status = "FINISHED"
)

func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusNotStarted:
		return StatusNotStarted, nil
	case StatusReading:
		return StatusReading, nil
	case StatusFinished:
		return StatusFinished, nil
	}
	return "", ErrInvalidStatus
}

func StatusFor(currentReadPage, totalPageCount int) Status {
	switch {
	case totalPageCount > 0 && currentReadPage >= totalPageCount:
		return StatusFinished
	case currentReadPage > 0:
		return StatusReading
	default:
		return StatusNotStarted
	}
}

// Book is one entry in a user's collection.
type Book struct {
	ID              string    `json:"id" db:"id"`
	UserID          string    `json:"userId" db:"user_id"`
	Title           string    `json:"title" db:"title"`
	Author          string    `json:"author" db:"author"`
	Rating          int       `json:"rating" db:"rating"`
	CurrentReadPage int       `json:"currentReadPage" db:"current_read_page"`
	TotalPageCount  int       `json:"totalPageCount" db:"total_page_count"`
	Status          Status    `json:"status" db:"-"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

func (b *Book) deriveStatus() {
	b.Status = StatusFor(b.CurrentReadPage, b.TotalPageCount)
}

// Input is the writable part of a Book, as accepted by create and update.
type Input struct {
	Title           string `json:"title" validate:"notblank,max=100"`
	Author          string `json:"author" validate:"max=100"`
	Rating          int    `json:"rating" validate:"gte=0,lte=5"`
	CurrentReadPage int    `json:"currentReadPage" validate:"gte=0,lte=99999"`
	TotalPageCount  int    `json:"totalPageCount" validate:"gte=0,lte=99999"`
}

func (in Input) normalized() Input {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	return in
}

type SortField string

const (
	SortCreatedAt SortField = "created_at"
	SortUpdatedAt SortField = "updated_at"
	SortTitle     SortField = "title"
	SortRating    SortField = "rating"
)

func ParseSort(s string) SortField {
	switch f := SortField(s); f {
	case SortUpdatedAt, SortTitle, SortRating:
		return f
	}
	return SortCreatedAt
}

// Query filters and paginates one user's books.
type Query struct {
	UserID string
	Status Status
	Sort   SortField
	Desc   bool
	Limit  int
	Offset int
}

package book

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Service provides collection business logic.
type Service struct {
	repo Repository
}

// NewService creates a new book service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, userID string, in Input) (Book, error) {
	in = in.normalized()
	b := Book{
		UserID:          userID,
		Title:           in.Title,
		Author:          in.Author,
		Rating:          in.Rating,
		CurrentReadPage: in.CurrentReadPage,
		TotalPageCount:  in.TotalPageCount,
	}
	if err := s.repo.Create(ctx, &b); err != nil {
		return Book{}, fmt.Errorf("create book: %w", err)
	}
	b.deriveStatus()
	return b, nil
}

// Get returns one of the user's books. Malformed ids are reported as
// ErrNotFound.
func (s *Service) Get(ctx context.Context, userID, id string) (Book, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Book{}, ErrNotFound
	}
	b, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return Book{}, err
	}
	b.deriveStatus()
	return b, nil
}

func (s *Service) List(ctx context.Context, q Query) ([]Book, int, error) {
	books, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}
	if books == nil {
		books = []Book{}
	}
	for i := range books {
		books[i].deriveStatus()
	}
	return books, total, nil
}

func (s *Service) Update(ctx context.Context, userID, id string, in Input) (Book, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Book{}, ErrNotFound
	}
	in = in.normalized()
	b := Book{
		ID:              id,
		UserID:          userID,
		Title:           in.Title,
		Author:          in.Author,
		Rating:          in.Rating,
		CurrentReadPage: in.CurrentReadPage,
		TotalPageCount:  in.TotalPageCount,
	}
	if err := s.repo.Update(ctx, &b); err != nil {
		return Book{}, err
	}
	b.deriveStatus()
	return b, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, userID, id)
}

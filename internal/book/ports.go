package book

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_ports_test.go -package=book

// Repository defines the contract for book data storage. Every call is
// scoped to a user; rows of other users behave as missing.
type Repository interface {
	Create(ctx context.Context, b *Book) error
	Get(ctx context.Context, userID, id string) (Book, error)
	List(ctx context.Context, q Query) ([]Book, int, error)
	Update(ctx context.Context, b *Book) error
	Delete(ctx context.Context, userID, id string) error
}

package account

import "context"

type Repository interface {
	GetByProvider(ctx context.Context, provider, providerAccountID string) (Account, error)
	ListByUserID(ctx context.Context, userID string) ([]Account, error)
	// Upsert inserts a, or refreshes the tokens of the existing row for the
	// same provider identity. a is updated with the stored row.
	Upsert(ctx context.Context, a *Account) error
}

// Package account stores OAuth identities linked to users.
package account

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("account not found")

const (
	ProviderGoogle = "google"
	TypeOAuth      = "oauth"
)

// Account is one provider identity. A user may have many, but a
// (Provider, ProviderAccountID) pair belongs to exactly one user.
type Account struct {
	ID                string     `db:"id" goqu:"skipinsert,skipupdate"`
	UserID            string     `db:"user_id"`
	Type              string     `db:"type"`
	Provider          string     `db:"provider"`
	ProviderAccountID string     `db:"provider_account_id"`
	AccessToken       string     `db:"access_token"`
	RefreshToken      string     `db:"refresh_token"`
	ExpiresAt         *time.Time `db:"expires_at"`
	TokenType         string     `db:"token_type"`
	Scope             string     `db:"scope"`
	IDToken           string     `db:"id_token"`
	CreatedAt         time.Time  `db:"created_at" goqu:"skipinsert,skipupdate"`
	UpdatedAt         time.Time  `db:"updated_at" goqu:"skipinsert,skipupdate"`
}

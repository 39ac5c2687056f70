package session

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("session not found")

// Session is one refresh token issued to a user. Only the sha256 of the
// token is stored.
type Session struct {
	ID               string    `db:"id" goqu:"skipinsert"`
	UserID           string    `db:"user_id"`
	RefreshTokenHash string    `db:"refresh_token_hash"`
	UserAgent        string    `db:"user_agent"`
	IPAddress        string    `db:"ip_address"`
	RememberMe       bool      `db:"remember_me"`
	ExpiresAt        time.Time `db:"expires_at"`
	CreatedAt        time.Time `db:"created_at" goqu:"skipinsert"`
	LastUsedAt       time.Time `db:"last_used_at" goqu:"skipinsert"`
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

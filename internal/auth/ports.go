package auth

import (
	"context"
	"time"

	"golang.org/x/oauth2"

	"booknook/internal/account"
	"booknook/internal/session"
	"booknook/internal/user"
)

//go:generate mockgen -source=ports.go -destination=mock_ports_test.go -package=auth

type Users interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	CreateOAuthUser(ctx context.Context, email, name, image string) (user.User, error)
	FillProfile(ctx context.Context, u user.User, name, image string) (user.User, error)
}

type Accounts interface {
	GetByProvider(ctx context.Context, provider, providerAccountID string) (account.Account, error)
	Upsert(ctx context.Context, a *account.Account) error
}

type Sessions interface {
	Create(ctx context.Context, s *session.Session) error
	GetByTokenHash(ctx context.Context, hash string) (session.Session, error)
	DeleteByTokenHash(ctx context.Context, hash string) error
	Delete(ctx context.Context, userID, sessionID string) error
	Revoke(ctx context.Context, jti, userID string, expiresAt time.Time) error
}

// OAuthProvider is the part of an OAuth2/OIDC provider the sign-in flow
// needs.
type OAuthProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	Profile(ctx context.Context, tok *oauth2.Token) (Profile, error)
}

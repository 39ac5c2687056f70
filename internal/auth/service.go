package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/oauth2"

	"booknook/internal/account"
	"booknook/internal/platform/crypto"
	"booknook/internal/session"
	"booknook/internal/user"
)

var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrOAuthState       = errors.New("oauth state mismatch")
	ErrOAuthFailed      = errors.New("oauth sign-in failed")
	ErrOAuthDisabled    = errors.New("oauth sign-in is not configured")
	ErrEmailNotVerified = errors.New("provider email is not verified")
)

const (
	DefaultAccessTTL   = 15 * time.Minute
	DefaultRefreshTTL  = 30 * 24 * time.Hour
	DefaultRememberTTL = 90 * 24 * time.Hour
)

// Tokens is what every successful sign-in or refresh returns.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// ClientInfo describes the device a session is opened from.
type ClientInfo struct {
	UserAgent string
	IPAddress string
}

type Options struct {
	Secret      string
	AccessTTL   time.Duration
	RefreshTTL  time.Duration
	RememberTTL time.Duration
}

type Service struct {
	opts     Options
	users    Users
	accounts Accounts
	sessions Sessions
	google   OAuthProvider
}

// NewService wires the sign-in flows. google may be nil, in which case
// GoogleSignIn returns ErrOAuthDisabled.
func NewService(opts Options, users Users, accounts Accounts, sessions Sessions, google OAuthProvider) *Service {
	if opts.AccessTTL <= 0 {
		opts.AccessTTL = DefaultAccessTTL
	}
	if opts.RefreshTTL <= 0 {
		opts.RefreshTTL = DefaultRefreshTTL
	}
	if opts.RememberTTL <= 0 {
		opts.RememberTTL = DefaultRememberTTL
	}
	return &Service{
		opts:     opts,
		users:    users,
		accounts: accounts,
		sessions: sessions,
		google:   google,
	}
}

func (s *Service) GoogleEnabled() bool {
	return s.google != nil
}

func (s *Service) refreshTTL(rememberMe bool) time.Duration {
	if rememberMe {
		return s.opts.RememberTTL
	}
	return s.opts.RefreshTTL
}

// issue opens a new refresh session for u and signs an access token bound
// to it.
func (s *Service) issue(ctx context.Context, u user.User, rememberMe bool, client ClientInfo) (Tokens, error) {
	refreshToken, err := crypto.NewOpaqueToken()
	if err != nil {
		return Tokens{}, err
	}

	sess := &session.Session{
		UserID:           u.ID,
		RefreshTokenHash: crypto.HashToken(refreshToken),
		UserAgent:        client.UserAgent,
		IPAddress:        client.IPAddress,
		RememberMe:       rememberMe,
		ExpiresAt:        time.Now().Add(s.refreshTTL(rememberMe)),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return Tokens{}, fmt.Errorf("create session: %w", err)
	}

	accessToken, _, err := crypto.GenerateSessionToken(s.opts.Secret, u.ID, u.Role, sess.ID, s.opts.AccessTTL)
	if err != nil {
		return Tokens{}, err
	}

	return Tokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.opts.AccessTTL.Seconds()),
	}, nil
}

// Login checks email and password. Unknown emails, OAuth-only users and
// wrong passwords all yield ErrUnauthorized.
func (s *Service) Login(ctx context.Context, email, password string, rememberMe bool, client ClientInfo) (Tokens, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Tokens{}, ErrUnauthorized
		}
		return Tokens{}, err
	}
	if !u.HasPassword() || !crypto.VerifyPassword(*u.PasswordHash, password) {
		return Tokens{}, ErrUnauthorized
	}
	return s.issue(ctx, u, rememberMe, client)
}

// Refresh rotates a refresh token: the presented one is consumed and a new
// pair is returned.
func (s *Service) Refresh(ctx context.Context, refreshToken string, client ClientInfo) (Tokens, error) {
	tokenHash := crypto.HashToken(refreshToken)
	sess, err := s.sessions.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return Tokens{}, ErrUnauthorized
		}
		return Tokens{}, err
	}

	u, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Tokens{}, ErrUnauthorized
		}
		return Tokens{}, err
	}

	// A concurrent refresh may have consumed the token since the lookup.
	if err := s.sessions.DeleteByTokenHash(ctx, tokenHash); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return Tokens{}, ErrUnauthorized
		}
		return Tokens{}, fmt.Errorf("consume refresh token: %w", err)
	}

	if client.UserAgent == "" {
		client.UserAgent = sess.UserAgent
	}
	return s.issue(ctx, u, sess.RememberMe, client)
}

// Logout revokes the access token and closes the session it was bound to.
func (s *Service) Logout(ctx context.Context, userID, jti string, expiresAt time.Time, sessionID string) error {
	if err := s.sessions.Revoke(ctx, jti, userID, expiresAt); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, userID, sessionID); err != nil && !errors.Is(err, session.ErrNotFound) {
		return fmt.Errorf("close session: %w", err)
	}
	return nil
}

// GoogleAuthURL is where the browser is sent to start Google sign-in.
func (s *Service) GoogleAuthURL(state string) (string, error) {
	if s.google == nil {
		return "", ErrOAuthDisabled
	}
	return s.google.AuthCodeURL(state), nil
}

// GoogleSignIn finishes the OAuth code flow and resolves the Google
// identity to a user:
//   - a linked account signs in its user;
//   - otherwise a user with the same email is linked, if Google has
//     verified that email;
//   - otherwise a new password-less user is created and linked.
func (s *Service) GoogleSignIn(ctx context.Context, code string, client ClientInfo) (Tokens, error) {
	if s.google == nil {
		return Tokens{}, ErrOAuthDisabled
	}

	tok, err := s.google.Exchange(ctx, code)
	if err != nil {
		return Tokens{}, fmt.Errorf("%w: exchange code: %v", ErrOAuthFailed, err)
	}
	prof, err := s.google.Profile(ctx, tok)
	if err != nil {
		return Tokens{}, fmt.Errorf("%w: %v", ErrOAuthFailed, err)
	}
	if prof.Subject == "" || prof.Email == "" {
		return Tokens{}, fmt.Errorf("%w: profile without subject or email", ErrOAuthFailed)
	}

	u, err := s.resolveGoogleUser(ctx, prof)
	if err != nil {
		return Tokens{}, err
	}

	linked := accountFromToken(u.ID, prof.Subject, tok)
	if err := s.accounts.Upsert(ctx, &linked); err != nil {
		return Tokens{}, fmt.Errorf("link account: %w", err)
	}

	u, err = s.users.FillProfile(ctx, u, prof.Name, prof.Picture)
	if err != nil {
		return Tokens{}, err
	}

	return s.issue(ctx, u, false, client)
}

func (s *Service) resolveGoogleUser(ctx context.Context, prof Profile) (user.User, error) {
	linked, err := s.accounts.GetByProvider(ctx, account.ProviderGoogle, prof.Subject)
	switch {
	case err == nil:
		return s.users.GetByID(ctx, linked.UserID)
	case !errors.Is(err, account.ErrNotFound):
		return user.User{}, fmt.Errorf("lookup account: %w", err)
	}

	existing, err := s.users.GetByEmail(ctx, prof.Email)
	switch {
	case err == nil:
		if !prof.EmailVerified {
			return user.User{}, ErrEmailNotVerified
		}
		slog.InfoContext(ctx, "linking google account to existing user", "user_id", existing.ID)
		return existing, nil
	case !errors.Is(err, user.ErrNotFound):
		return user.User{}, fmt.Errorf("lookup email: %w", err)
	}

	created, err := s.users.CreateOAuthUser(ctx, prof.Email, prof.Name, prof.Picture)
	if errors.Is(err, user.ErrAlreadyExists) {
		// Lost a race with a concurrent sign-up for the same email.
		if !prof.EmailVerified {
			return user.User{}, ErrEmailNotVerified
		}
		return s.users.GetByEmail(ctx, prof.Email)
	}
	return created, err
}

func accountFromToken(userID, subject string, tok *oauth2.Token) account.Account {
	a := account.Account{
		UserID:            userID,
		Type:              account.TypeOAuth,
		Provider:          account.ProviderGoogle,
		ProviderAccountID: subject,
		AccessToken:       tok.AccessToken,
		RefreshToken:      tok.RefreshToken,
		TokenType:         tok.TokenType,
	}
	if !tok.Expiry.IsZero() {
		exp := tok.Expiry
		a.ExpiresAt = &exp
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		a.Scope = scope
	}
	if idToken, ok := tok.Extra("id_token").(string); ok {
		a.IDToken = idToken
	}
	return a
}

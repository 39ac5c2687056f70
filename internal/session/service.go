package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

type Service struct {
	repo          Repository
	blacklistRepo BlacklistRepository
}

func NewService(repo Repository, blacklistRepo BlacklistRepository) *Service {
	return &Service{
		repo:          repo,
		blacklistRepo: blacklistRepo,
	}
}

func (s *Service) Create(ctx context.Context, session *Session) error {
	return s.repo.Create(ctx, session)
}

func (s *Service) GetByTokenHash(ctx context.Context, hash string) (Session, error) {
	return s.repo.GetByTokenHash(ctx, hash)
}

func (s *Service) ListByUserID(ctx context.Context, userID string) ([]Session, error) {
	sessions, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sessions == nil {
		sessions = []Session{}
	}
	return sessions, nil
}

// Delete removes a session owned by userID. Sessions of other users are
// reported as ErrNotFound.
func (s *Service) Delete(ctx context.Context, userID, sessionID string) error {
	return s.repo.DeleteForUser(ctx, userID, sessionID)
}

func (s *Service) DeleteByTokenHash(ctx context.Context, hash string) error {
	return s.repo.DeleteByTokenHash(ctx, hash)
}

func (s *Service) Touch(ctx context.Context, sessionID string) error {
	return s.repo.UpdateLastUsed(ctx, sessionID)
}

// Revoke blacklists an access token id until the token would have expired
// anyway.
func (s *Service) Revoke(ctx context.Context, jti, userID string, expiresAt time.Time) error {
	if jti == "" {
		return nil
	}
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(24 * time.Hour)
	}
	return s.blacklistRepo.AddToken(ctx, jti, userID, expiresAt)
}

func (s *Service) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	return s.blacklistRepo.IsBlacklisted(ctx, jti)
}

// CleanupExpired deletes expired sessions and blacklist entries.
func (s *Service) CleanupExpired(ctx context.Context) error {
	sessions, err := s.repo.CleanupExpired(ctx)
	if err != nil {
		return fmt.Errorf("cleanup sessions: %w", err)
	}
	tokens, err := s.blacklistRepo.CleanupExpired(ctx)
	if err != nil {
		return fmt.Errorf("cleanup blacklist: %w", err)
	}
	if sessions > 0 || tokens > 0 {
		slog.InfoContext(ctx, "expired auth state removed", "sessions", sessions, "blacklisted_tokens", tokens)
	}
	return nil
}

// RunCleanup calls CleanupExpired every interval until ctx is done.
func (s *Service) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.CleanupExpired(ctx); err != nil {
				slog.ErrorContext(ctx, "auth cleanup failed", "error", err)
			}
		}
	}
}

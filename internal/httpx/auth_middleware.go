package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"booknook/internal/platform/crypto"
)

// BlacklistChecker reports whether an access token id has been revoked.
type BlacklistChecker interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

var ErrMissingBearer = errors.New("missing bearer token")

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return "", ErrMissingBearer
	}
	return strings.TrimSpace(token), nil
}

func AuthMiddleware(secret string, blacklist BlacklistChecker) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := BearerToken(r)
			if err != nil {
				JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
				return
			}

			claims, err := crypto.ParseToken(secret, token)
			if err != nil {
				JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token", nil)
				return
			}

			if blacklist != nil {
				revoked, err := blacklist.IsBlacklisted(r.Context(), claims.ID)
				if err != nil {
					slog.ErrorContext(r.Context(), "blacklist lookup failed", "error", err)
					JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token", nil)
					return
				}
				if revoked {
					JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Token has been revoked", nil)
					return
				}
			}

			ctx := ContextWithUser(r.Context(), claims.Subject, claims.Role)
			var expiresAt time.Time
			if claims.ExpiresAt != nil {
				expiresAt = claims.ExpiresAt.Time
			}
			ctx = ContextWithToken(ctx, claims.ID, expiresAt, claims.SessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

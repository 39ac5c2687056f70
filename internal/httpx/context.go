package httpx

import (
	"context"
	"net/http"
	"time"
)

type contextKey string

const (
	userIDKey    contextKey = "userID"
	roleKey      contextKey = "role"
	tokenIDKey   contextKey = "tokenID"
	tokenExpKey  contextKey = "tokenExp"
	sessionKey   contextKey = "sessionID"
	requestIDKey contextKey = "requestID"
	holderKey    contextKey = "userHolder"
)

// userHolder lets outer middleware observe the user authenticated further in.
type userHolder struct {
	userID string
}

func contextWithUserHolder(ctx context.Context, h *userHolder) context.Context {
	return context.WithValue(ctx, holderKey, h)
}

// UserIDFrom retrieves the user ID from the request context.
func UserIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(userIDKey).(string); ok {
		return v
	}
	return ""
}

// RoleFrom retrieves the user role from the request context.
func RoleFrom(r *http.Request) string {
	if v, ok := r.Context().Value(roleKey).(string); ok {
		return v
	}
	return ""
}

// TokenIDFrom retrieves the access token jti from the request context.
func TokenIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(tokenIDKey).(string); ok {
		return v
	}
	return ""
}

// ContextWithUser returns a new context with the user ID and role.
func ContextWithUser(ctx context.Context, userID, role string) context.Context {
	if h, ok := ctx.Value(holderKey).(*userHolder); ok {
		h.userID = userID
	}
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, roleKey, role)
}

// TokenExpiryFrom retrieves the access token expiry from the request context.
func TokenExpiryFrom(r *http.Request) time.Time {
	if v, ok := r.Context().Value(tokenExpKey).(time.Time); ok {
		return v
	}
	return time.Time{}
}

// SessionIDFrom retrieves the refresh session the access token was minted for.
func SessionIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(sessionKey).(string); ok {
		return v
	}
	return ""
}

// ContextWithToken returns a new context carrying the access token jti,
// expiry and session id.
func ContextWithToken(ctx context.Context, jti string, expiresAt time.Time, sessionID string) context.Context {
	ctx = context.WithValue(ctx, tokenIDKey, jti)
	ctx = context.WithValue(ctx, tokenExpKey, expiresAt)
	return context.WithValue(ctx, sessionKey, sessionID)
}

// ContextWithRequestID returns a new context with the request ID.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext retrieves the request ID from a context.
func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// RequestIDFrom retrieves the request ID from the request context.
func RequestIDFrom(r *http.Request) string {
	return RequestIDFromContext(r.Context())
}

package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"booknook/internal/auth"
	"booknook/internal/book"
	"booknook/internal/catalog"
	"booknook/internal/httpx"
	"booknook/internal/session"
	"booknook/internal/user"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// server holds the handlers mounted by routes.
type server struct {
	logger    *slog.Logger
	db        pinger
	jwtSecret string
	blacklist httpx.BlacklistChecker

	allowedOrigins []string
	enableHSTS     bool
	maxBodyBytes   int64
	rateLimit      *httpx.RateLimitMiddleware

	catalog  *catalog.HTTPHandler
	books    *book.HTTPHandler
	users    *user.HTTPHandler
	auth     *auth.HTTPHandler
	sessions *session.HTTPHandler
}

func (s *server) routes() http.Handler {
	protected := func(h http.HandlerFunc) http.Handler {
		return httpx.AuthMiddleware(s.jwtSecret, s.blacklist)(h)
	}

	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := s.db.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	// The catalog handler answers other methods with an enveloped 405.
	router.HandleFunc("/v1/search-books", s.catalog.Search)

	router.Handle("GET /v1/books", protected(s.books.List))
	router.Handle("POST /v1/books", protected(s.books.Create))
	router.Handle("GET /v1/books/{id}", protected(s.books.Get))
	router.Handle("PUT /v1/books/{id}", protected(s.books.Update))
	router.Handle("DELETE /v1/books/{id}", protected(s.books.Delete))

	router.HandleFunc("POST /v1/users/register", s.users.RegisterUser)
	router.HandleFunc("POST /v1/users/login", s.auth.Login)

	router.HandleFunc("POST /v1/auth/refresh", s.auth.RefreshToken)
	router.Handle("POST /v1/auth/logout", protected(s.auth.Logout))
	router.HandleFunc("GET /v1/auth/google/login", s.auth.GoogleLogin)
	router.HandleFunc("GET /v1/auth/google/callback", s.auth.GoogleCallback)

	router.Handle("GET /v1/me", protected(s.users.GetCurrentUser))
	router.Handle("PATCH /v1/me", protected(s.users.UpdateCurrentUser))
	router.Handle("GET /v1/me/sessions", protected(s.sessions.ListSessions))
	router.Handle("DELETE /v1/me/sessions/{id}", protected(s.sessions.DeleteSession))

	mws := []httpx.Middleware{
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware(s.logger),
		httpx.RecoveryMiddleware(s.logger),
		httpx.SecurityHeadersMiddleware(s.enableHSTS),
		httpx.CORSMiddleware(s.allowedOrigins),
	}
	if s.rateLimit != nil {
		mws = append(mws, s.rateLimit.Middleware)
	}
	mws = append(mws, httpx.RequestSizeLimitMiddleware(s.maxBodyBytes))

	return httpx.Chain(router, mws...)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"booknook/internal/account"
	"booknook/internal/auth"
	"booknook/internal/book"
	"booknook/internal/catalog"
	"booknook/internal/config"
	"booknook/internal/httpx"
	"booknook/internal/logger"
	"booknook/internal/platform/googlebooks"
	"booknook/internal/platform/httpjson"
	"booknook/internal/platform/openlibrary"
	"booknook/internal/session"
	"booknook/internal/user"
)

const (
	shutdownTimeout = 10 * time.Second
	cleanupInterval = time.Hour
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	lvl, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	if err := logger.Setup(os.Stdout, lvl, cfg.LogFormat, httpx.RequestIDFromContext); err != nil {
		return err
	}
	log := slog.Default()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := openDB(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	srv, sessionService := newServer(cfg, dbPool, log)
	go srv.rateLimit.Run(ctx)
	go sessionService.RunCleanup(ctx, cleanupInterval)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.CatalogTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", cfg.Addr, "google_oauth", cfg.GoogleOAuthEnabled())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openDB(ctx context.Context, cfg config.Config, log *slog.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("parse DB_DSN: %w", err)
	}
	poolCfg.ConnConfig.Tracer = logger.NewPGXTracer(log)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create db pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database (%s): %w", config.RedactDSN(cfg.DBDSN), err)
	}
	log.Info("database connection OK")
	return pool, nil
}

func newServer(cfg config.Config, dbPool *pgxpool.Pool, log *slog.Logger) (*server, *session.Service) {
	userService := user.NewService(user.NewPostgresRepo(dbPool, cfg.DBTimeout))
	sessionService := session.NewService(
		session.NewPostgresRepo(dbPool, cfg.DBTimeout),
		session.NewBlacklistPostgresRepo(dbPool, cfg.DBTimeout),
	)
	bookService := book.NewService(book.NewPostgresRepo(dbPool, cfg.DBTimeout))

	var google auth.OAuthProvider
	if cfg.GoogleOAuthEnabled() {
		google = auth.NewGoogleProvider(auth.GoogleOptions{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
		})
	}
	authService := auth.NewService(
		auth.Options{Secret: cfg.JWTSecret},
		userService,
		account.NewPostgresRepo(dbPool, cfg.DBTimeout),
		sessionService,
		google,
	)

	srv := &server{
		logger:         log,
		db:             dbPool,
		jwtSecret:      cfg.JWTSecret,
		blacklist:      sessionService,
		allowedOrigins: cfg.AllowedOrigins,
		enableHSTS:     cfg.EnableHSTS,
		maxBodyBytes:   cfg.MaxBodyBytes,
		rateLimit:      httpx.NewRateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst),

		catalog:  catalog.NewHTTPHandler(newCatalogService(cfg, log), log),
		books:    book.NewHTTPHandler(bookService),
		users:    user.NewHTTPHandler(userService),
		auth:     auth.NewHTTPHandler(authService),
		sessions: session.NewHTTPHandler(sessionService),
	}
	return srv, sessionService
}

// newCatalogService gives each upstream its own rate limiter.
func newCatalogService(cfg config.Config, log *slog.Logger) *catalog.Service {
	upstream := func() *httpjson.Client {
		return httpjson.NewClient(httpjson.Options{
			Timeout:   cfg.CatalogTimeout,
			UserAgent: cfg.UserAgent,
			RPS:       float64(cfg.CatalogRPS),
		})
	}

	return catalog.NewService(map[catalog.Source]catalog.Adapter{
		catalog.SourceGoogleBooks: catalog.NewGoogleBooksAdapter(
			googlebooks.NewClient(upstream(), googlebooks.DefaultBaseURL, cfg.GoogleBooksAPIKey),
		),
		catalog.SourceOpenLibrary: catalog.NewOpenLibraryAdapter(
			openlibrary.NewClient(upstream(), openlibrary.DefaultBaseURL),
		),
	}, log)
}

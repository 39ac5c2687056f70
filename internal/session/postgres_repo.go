package session

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	sessionsTable  = "sessions"
	blacklistTable = "token_blacklist"
)

// Raised by Postgres when a path id is not a valid uuid.
const invalidTextRepresentation = "22P02"

var live = goqu.C("expires_at").Gt(goqu.L("now()"))

type toSQLer interface {
	ToSQL() (string, []any, error)
}

type store struct {
	db      *pgxpool.Pool
	g       goqu.DialectWrapper
	timeout time.Duration
}

func newStore(db *pgxpool.Pool, timeout time.Duration) store {
	return store{db: db, g: goqu.Dialect("postgres"), timeout: timeout}
}

func (r *store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *store) exec(ctx context.Context, q toSQLer) (int64, error) {
	sql, params, err := q.ToSQL()
	if err != nil {
		return 0, err
	}
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	result, err := r.db.Exec(timeoutCtx, sql, params...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

type PostgresRepo struct {
	store
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{store: newStore(db, timeout)}
}

func (r *PostgresRepo) Create(ctx context.Context, s *Session) error {
	sql, params, err := r.g.Insert(sessionsTable).
		Prepared(true).
		Rows(*s).
		Returning(goqu.Star()).
		ToSQL()
	if err != nil {
		return err
	}
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return pgxscan.Get(timeoutCtx, r.db, s, sql, params...)
}

// GetByTokenHash only returns sessions that have not expired.
func (r *PostgresRepo) GetByTokenHash(ctx context.Context, tokenHash string) (Session, error) {
	sql, params, err := r.g.From(sessionsTable).
		Prepared(true).
		Where(goqu.C("refresh_token_hash").Eq(tokenHash), live).
		Limit(1).
		ToSQL()
	if err != nil {
		return Session{}, err
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var s Session
	if err := pgxscan.Get(timeoutCtx, r.db, &s, sql, params...); err != nil {
		if pgxscan.NotFound(err) {
			return Session{}, ErrNotFound
		}
		return Session{}, err
	}
	return s, nil
}

func (r *PostgresRepo) ListByUserID(ctx context.Context, userID string) ([]Session, error) {
	sql, params, err := r.g.From(sessionsTable).
		Prepared(true).
		Where(goqu.C("user_id").Eq(userID), live).
		Order(goqu.C("created_at").Desc()).
		ToSQL()
	if err != nil {
		return nil, err
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var sessions []Session
	if err := pgxscan.Select(timeoutCtx, r.db, &sessions, sql, params...); err != nil {
		return nil, err
	}
	return sessions, nil
}

// DeleteForUser removes one of userID's sessions. A session owned by
// someone else, or an id that is not a uuid, is ErrNotFound.
func (r *PostgresRepo) DeleteForUser(ctx context.Context, userID, sessionID string) error {
	n, err := r.exec(ctx, r.g.Delete(sessionsTable).
		Prepared(true).
		Where(goqu.C("id").Eq(sessionID), goqu.C("user_id").Eq(userID)))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresentation {
			return ErrNotFound
		}
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByTokenHash consumes a refresh token. Only one caller can consume
// a given token; the rest get ErrNotFound.
func (r *PostgresRepo) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	n, err := r.exec(ctx, r.g.Delete(sessionsTable).
		Prepared(true).
		Where(goqu.C("refresh_token_hash").Eq(tokenHash)))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) UpdateLastUsed(ctx context.Context, sessionID string) error {
	_, err := r.exec(ctx, r.g.Update(sessionsTable).
		Prepared(true).
		Set(goqu.Record{"last_used_at": goqu.L("now()")}).
		Where(goqu.C("id").Eq(sessionID)))
	return err
}

func (r *PostgresRepo) CleanupExpired(ctx context.Context) (int64, error) {
	return r.exec(ctx, r.g.Delete(sessionsTable).
		Prepared(true).
		Where(goqu.C("expires_at").Lt(goqu.L("now()"))))
}

type BlacklistPostgresRepo struct {
	store
}

func NewBlacklistPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *BlacklistPostgresRepo {
	return &BlacklistPostgresRepo{store: newStore(db, timeout)}
}

// AddToken records jti as revoked until expiresAt. Adding the same jti
// twice is not an error.
func (r *BlacklistPostgresRepo) AddToken(ctx context.Context, jti, userID string, expiresAt time.Time) error {
	_, err := r.exec(ctx, r.g.Insert(blacklistTable).
		Prepared(true).
		Rows(goqu.Record{"jti": jti, "user_id": userID, "expires_at": expiresAt}).
		OnConflict(goqu.DoNothing()))
	return err
}

func (r *BlacklistPostgresRepo) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	sql, params, err := r.g.From(blacklistTable).
		Prepared(true).
		Select(goqu.COUNT(goqu.Star())).
		Where(goqu.C("jti").Eq(jti), live).
		ToSQL()
	if err != nil {
		return false, err
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var n int64
	if err := r.db.QueryRow(timeoutCtx, sql, params...).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *BlacklistPostgresRepo) CleanupExpired(ctx context.Context) (int64, error) {
	return r.exec(ctx, r.g.Delete(blacklistTable).
		Prepared(true).
		Where(goqu.C("expires_at").Lt(goqu.L("now()"))))
}

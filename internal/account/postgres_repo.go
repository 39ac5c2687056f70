package account

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const table = "accounts"

type PostgresRepo struct {
	db      *pgxpool.Pool
	g       goqu.DialectWrapper
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, g: goqu.Dialect("postgres"), timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) GetByProvider(ctx context.Context, provider, providerAccountID string) (Account, error) {
	sql, params, err := r.g.From(table).
		Prepared(true).
		Where(
			goqu.C("provider").Eq(provider),
			goqu.C("provider_account_id").Eq(providerAccountID),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return Account{}, err
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var a Account
	if err := pgxscan.Get(timeoutCtx, r.db, &a, sql, params...); err != nil {
		if pgxscan.NotFound(err) {
			return Account{}, ErrNotFound
		}
		return Account{}, err
	}
	return a, nil
}

func (r *PostgresRepo) ListByUserID(ctx context.Context, userID string) ([]Account, error) {
	sql, params, err := r.g.From(table).
		Prepared(true).
		Where(goqu.C("user_id").Eq(userID)).
		Order(goqu.C("created_at").Asc()).
		ToSQL()
	if err != nil {
		return nil, err
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var accounts []Account
	if err := pgxscan.Select(timeoutCtx, r.db, &accounts, sql, params...); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *PostgresRepo) Upsert(ctx context.Context, a *Account) error {
	if a.Type == "" {
		a.Type = TypeOAuth
	}

	sql, params, err := r.g.Insert(table).
		Prepared(true).
		Rows(*a).
		OnConflict(goqu.DoUpdate("provider, provider_account_id", goqu.Record{
			"access_token":  goqu.L("excluded.access_token"),
			"refresh_token": goqu.L("COALESCE(NULLIF(excluded.refresh_token, ''), accounts.refresh_token)"),
			"expires_at":    goqu.L("excluded.expires_at"),
			"token_type":    goqu.L("excluded.token_type"),
			"scope":         goqu.L("excluded.scope"),
			"id_token":      goqu.L("excluded.id_token"),
			"updated_at":    goqu.L("now()"),
		})).
		Returning(goqu.Star()).
		ToSQL()
	if err != nil {
		return err
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return pgxscan.Get(timeoutCtx, r.db, a, sql, params...)
}

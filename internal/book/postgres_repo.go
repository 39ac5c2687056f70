package book

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const table = "books"

var columns = []any{
	"id", "user_id", "title", "author", "rating",
	"current_read_page", "total_page_count", "created_at", "updated_at",
}

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

func (r *PostgresRepo) Create(ctx context.Context, b *Book) error {
	sql, args, err := r.g.Insert(table).Prepared(true).
		Rows(goqu.Record{
			"user_id":           b.UserID,
			"title":             b.Title,
			"author":            b.Author,
			"rating":            b.Rating,
			"current_read_page": b.CurrentReadPage,
			"total_page_count":  b.TotalPageCount,
		}).
		Returning("id", "created_at", "updated_at").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.db.QueryRow(timeoutCtx, sql, args...).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

func (r *PostgresRepo) Get(ctx context.Context, userID, id string) (Book, error) {
	sql, args, err := r.g.From(table).Prepared(true).
		Select(columns...).
		Where(goqu.C("id").Eq(id), goqu.C("user_id").Eq(userID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return Book{}, fmt.Errorf("build select: %w", err)
	}

	var b Book
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if err := pgxscan.Get(timeoutCtx, r.db, &b, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

// statusFilter mirrors StatusFor in SQL.
func statusFilter(s Status) exp.Expression {
	cur, total := goqu.C("current_read_page"), goqu.C("total_page_count")
	switch s {
	case StatusFinished:
		return goqu.And(total.Gt(0), cur.Gte(total))
	case StatusReading:
		return goqu.And(cur.Gt(0), goqu.Or(total.Eq(0), cur.Lt(total)))
	case StatusNotStarted:
		return cur.Eq(0)
	}
	return nil
}

func (r *PostgresRepo) List(ctx context.Context, q Query) ([]Book, int, error) {
	base := r.g.From(table).Prepared(true).Where(goqu.C("user_id").Eq(q.UserID))
	if f := statusFilter(q.Status); f != nil {
		base = base.Where(f)
	}

	countSQL, countArgs, err := base.Select(goqu.COUNT("*")).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}

	order := goqu.C(string(ParseSort(string(q.Sort)))).Asc()
	if q.Desc {
		order = goqu.C(string(ParseSort(string(q.Sort)))).Desc()
	}
	dataSQL, dataArgs, err := base.Select(columns...).
		Order(order, goqu.C("id").Asc()).
		Limit(uint(q.Limit)).
		Offset(uint(q.Offset)).
		ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build list: %w", err)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var total int
	if err := r.db.QueryRow(timeoutCtx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	var out []Book
	if err := pgxscan.Select(timeoutCtx, r.db, &out, dataSQL, dataArgs...); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *PostgresRepo) Update(ctx context.Context, b *Book) error {
	sql, args, err := r.g.Update(table).Prepared(true).
		Set(goqu.Record{
			"title":             b.Title,
			"author":            b.Author,
			"rating":            b.Rating,
			"current_read_page": b.CurrentReadPage,
			"total_page_count":  b.TotalPageCount,
			"updated_at":        goqu.L("now()"),
		}).
		Where(goqu.C("id").Eq(b.ID), goqu.C("user_id").Eq(b.UserID)).
		Returning(columns...).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if err := pgxscan.Get(timeoutCtx, r.db, b, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (r *PostgresRepo) Delete(ctx context.Context, userID, id string) error {
	sql, args, err := r.g.Delete(table).Prepared(true).
		Where(goqu.C("id").Eq(id), goqu.C("user_id").Eq(userID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

package postgres

import (
	"context"
	_ "embed"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/showtix/showtix/internal/observability"
)

//go:embed schema.sql
var schema string

// Repository persists shows, bookings and users in Postgres. All seat
// accounting runs through conditional single-row UPDATEs so the counter can
// never be observed negative, whatever the surrounding isolation level.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EnsureSchema creates the tables if they do not exist yet.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, schema)
	return errors.Wrap(err, "apply schema")
}

func (r *Repository) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	start := time.Now()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "commit tx")
	}
	observability.DBTxDuration.Observe(time.Since(start).Seconds())
	return nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/backoffice/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS collections (
	key        TEXT PRIMARY KEY,
	value      BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// maxUpdateAttempts bounds retries of a conflicting Update transaction.
const maxUpdateAttempts = 5

// KV is a PostgreSQL-backed domain.KV and domain.Updater. Each collection
// key is one row.
type KV struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, dsn string, maxConns int32) (*KV, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse config: %w", err)
	}

	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: migrate: %w", err)
	}

	return &KV{pool: pool}, nil
}

func (s *KV) Close() {
	s.pool.Close()
}

func (s *KV) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.pool.QueryRow(ctx, `SELECT value FROM collections WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("postgres.KV.Get: %q: %w", key, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres.KV.Get: %w", err)
	}
	return value, nil
}

func (s *KV) Set(ctx context.Context, key string, value []byte) error {
	if err := upsert(ctx, s.pool, key, value); err != nil {
		return fmt.Errorf("postgres.KV.Set: %w", err)
	}
	return nil
}

// Update locks the key's row for the duration of fn. A missing key is
// serialized on a transaction-scoped advisory lock instead, since there is no
// row to lock yet.
// Deadlocks and serialization failures are retried with backoff; fn may run
// more than once.
func (s *KV) Update(ctx context.Context, key string, fn domain.UpdateFunc) error {
	update := func() (struct{}, error) {
		err := s.update(ctx, key, fn)
		if err != nil && !retryable(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}

	_, err := backoff.Retry(ctx, update,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(maxUpdateAttempts),
	)
	return err
}

func (s *KV) update(ctx context.Context, key string, fn domain.UpdateFunc) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres.KV.Update: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		return fmt.Errorf("postgres.KV.Update: lock: %w", err)
	}

	var current []byte
	found := true
	err = tx.QueryRow(ctx, `SELECT value FROM collections WHERE key = $1 FOR UPDATE`, key).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		found = false
	} else if err != nil {
		return fmt.Errorf("postgres.KV.Update: select: %w", err)
	}

	next, err := fn(current, found)
	if err != nil {
		return fmt.Errorf("postgres.KV.Update: %w", err)
	}
	if next == nil {
		return nil
	}

	if err := upsert(ctx, tx, key, next); err != nil {
		return fmt.Errorf("postgres.KV.Update: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres.KV.Update: commit: %w", err)
	}
	return nil
}

// Keys lists the stored keys starting with prefix, sorted.
func (s *KV) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT key FROM collections WHERE left(key, length($1)) = $1 ORDER BY key`, prefix)
	if err != nil {
		return nil, fmt.Errorf("postgres.KV.Keys: %w", err)
	}

	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("postgres.KV.Keys: %w", err)
	}
	return keys, nil
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func upsert(ctx context.Context, db execer, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := db.Exec(ctx,
		`INSERT INTO collections (key, value, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value,
	)
	return err
}

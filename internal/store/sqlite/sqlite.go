/*
Package sqlite provides a file-backed domain.KV on SQLite.

This is the default backend: one table of key/value rows standing in for the
browser's persistent storage, one row per collection key.

CONCURRENCY:
  Update runs inside an IMMEDIATE transaction so the read and the write of a
  key cannot interleave with another writer, in this process or another one
  sharing the file.

USAGE:
  kv, err := sqlite.New("./backoffice.db")
  if err != nil {
      return err
  }
  defer kv.Close()
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/gosuda/backoffice/internal/domain"
)

// KV implements domain.KV, domain.Updater and domain.Lister.
type KV struct {
	db *sql.DB
}

// New opens (and migrates) the database at path. Use ":memory:" for a
// throwaway database.
func New(path string) (*KV, error) {
	dsn := "file:" + path + "?_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open: %w", err)
	}
	if path == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	kv := &KV{db: db}
	if err := kv.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite.New: migrate: %w", err)
	}
	return kv, nil
}

// Close closes the database.
func (s *KV) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("sqlite.KV.Close: %w", err)
	}
	return nil
}

func (s *KV) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
	)`)
	return err
}

func (s *KV) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sqlite.KV.Get: %q: %w", key, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite.KV.Get: %w", err)
	}
	return value, nil
}

func (s *KV) Set(ctx context.Context, key string, value []byte) error {
	if err := set(ctx, s.db, key, value); err != nil {
		return fmt.Errorf("sqlite.KV.Set: %w", err)
	}
	return nil
}

func (s *KV) Update(ctx context.Context, key string, fn domain.UpdateFunc) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite.KV.Update: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var current []byte
	found := true
	err = tx.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		found = false
	} else if err != nil {
		return fmt.Errorf("sqlite.KV.Update: select: %w", err)
	}

	next, err := fn(current, found)
	if err != nil {
		return fmt.Errorf("sqlite.KV.Update: %w", err)
	}
	if next == nil {
		return nil
	}

	if err := set(ctx, tx, key, next); err != nil {
		return fmt.Errorf("sqlite.KV.Update: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite.KV.Update: commit: %w", err)
	}
	return nil
}

// Keys lists the stored keys starting with prefix, sorted.
func (s *KV) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key FROM kv WHERE substr(key, 1, length(?1)) = ?1 ORDER BY key`, prefix)
	if err != nil {
		return nil, fmt.Errorf("sqlite.KV.Keys: %w", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("sqlite.KV.Keys: scan: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite.KV.Keys: %w", err)
	}
	return keys, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func set(ctx context.Context, db execer, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value,
		   updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')`,
		key, value,
	)
	return err
}

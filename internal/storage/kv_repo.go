package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SQLiteStore keeps every blob as one row of the kv table.
type SQLiteStore struct {
	db          *sql.DB
	completions *CompletionRepo
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, completions: NewCompletionRepo(db)}
}

// OpenSQLiteStore opens the database at path (see Open) and wraps it.
func OpenSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := Open(ctx, path)
	if err != nil {
		return nil, err
	}
	return NewSQLiteStore(db), nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key)
	var v string
	if err := row.Scan(&v); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("kv get %s: %w", key, err)
	}
	return []byte(v), true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, string(value), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("kv set %s: %w", key, err)
	}
	return nil
}

// Delete removes all keys in one transaction.
func (s *SQLiteStore) Delete(ctx context.Context, keys ...string) error {
	return execEach(ctx, s.db, "kv delete", `DELETE FROM kv WHERE key = ?`, keys)
}

// Keys lists stored keys in order.
func (s *SQLiteStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM kv ORDER BY key ASC`)
	if err != nil {
		return nil, fmt.Errorf("kv keys: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("kv keys scan: %w", err)
		}
		out = append(out, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("kv keys rows: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) RecordCompletion(ctx context.Context, c Completion) error {
	_, err := s.completions.Insert(ctx, c)
	return err
}

func (s *SQLiteStore) ListCompletions(ctx context.Context, limit int) ([]Completion, error) {
	return s.completions.ListRecent(ctx, limit)
}

// ClearJournal drops the completion history (used by a full game reset).
func (s *SQLiteStore) ClearJournal(ctx context.Context) error {
	return s.completions.DeleteAll(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spendlens/spark/internal/errs"
)

// Store implements kv.Store over a single kv_entries table. Every collection
// stays a whole JSON document per key, the same layout the file and memory
// backends use, so the layers above are backend-agnostic.
type Store struct{ db *DB }

// NewStore constructs a Postgres-backed kv store.
func NewStore(db *DB) *Store { return &Store{db: db} }

// Get selects the document stored at key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	const q = `SELECT value FROM kv_entries WHERE key=$1`
	var v []byte
	if err := s.db.Pool.QueryRow(ctx, q, key).Scan(&v); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

// Set upserts the document at key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	const q = `
INSERT INTO kv_entries (key, value) VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	_, err := s.db.Pool.Exec(ctx, q, key, value)
	return err
}

// Delete removes the document at key; absent keys are a no-op.
func (s *Store) Delete(ctx context.Context, key string) error {
	const q = `DELETE FROM kv_entries WHERE key=$1`
	_, err := s.db.Pool.Exec(ctx, q, key)
	return err
}

// Close closes the pool.
func (s *Store) Close() error {
	s.db.Close()
	return nil
}

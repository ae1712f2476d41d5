package counter

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const (
	incrementCounterSQL = `SELECT increment_counter($1, $2)`
	getCounterSQL       = `SELECT value FROM platform_counters WHERE key = $1`
)

// DB is the subset of pgxpool.Pool and pgx.Tx used by PostgresStore.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps counters in the platform_counters table.
type PostgresStore struct {
	db DB
}

// NewPostgresStore returns a Store backed by db.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Increment implements Store.
func (s *PostgresStore) Increment(ctx context.Context, key string, amount int64) (int64, error) {
	if key == "" {
		return 0, ErrEmptyKey
	}

	var value int64
	if err := s.db.QueryRow(ctx, incrementCounterSQL, key, amount).Scan(&value); err != nil {
		return 0, fmt.Errorf("%w: increment %q: %w", ErrStoreUnavailable, key, err)
	}
	return value, nil
}

// Get implements Store.
func (s *PostgresStore) Get(ctx context.Context, key string) (int64, error) {
	if key == "" {
		return 0, ErrEmptyKey
	}

	var value int64
	err := s.db.QueryRow(ctx, getCounterSQL, key).Scan(&value)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("%w: get %q: %w", ErrStoreUnavailable, key, err)
	}
	return value, nil
}

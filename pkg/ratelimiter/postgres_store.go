package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// DB is the subset of pgxpool.Pool, pgx.Conn and pgx.Tx the durable stores need.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// incrementRateLimitSQL calls the increment_rate_limit function installed by
// the migrations. The upsert runs server-side in one statement.
const incrementRateLimitSQL = `SELECT hits, reset_at FROM increment_rate_limit($1, $2, $3)`

// PostgresStore implements Store on top of an atomic PostgreSQL function,
// so every instance sharing the database sees the same counters.
type PostgresStore struct {
	db  DB
	now func() time.Time
}

// PostgresStoreOption configures a PostgresStore.
type PostgresStoreOption func(*PostgresStore)

// WithPostgresClock makes the store send its own clock instead of relying on
// the database server time.
func WithPostgresClock(now func() time.Time) PostgresStoreOption {
	return func(s *PostgresStore) {
		s.now = now
	}
}

// NewPostgresStore creates a durable store backed by db.
func NewPostgresStore(db DB, opts ...PostgresStoreOption) *PostgresStore {
	s := &PostgresStore{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Increment implements Store.
func (s *PostgresStore) Increment(ctx context.Context, key string, window time.Duration) (Result, error) {
	if err := validate(key, window); err != nil {
		return Result{}, err
	}

	var now *int64
	if s.now != nil {
		ts := s.now().Unix()
		now = &ts
	}

	var res Result
	err := s.db.QueryRow(ctx, incrementRateLimitSQL, key, int64(window/time.Second), now).
		Scan(&res.Count, &res.ResetAt)
	if err != nil {
		return Result{}, fmt.Errorf("rate limit increment failed: %w", err)
	}
	return res, nil
}

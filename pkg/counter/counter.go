package counter

import (
	"context"
	"errors"
)

var (
	ErrEmptyKey         = errors.New("counter: key must not be empty")
	ErrStoreUnavailable = errors.New("counter: store unavailable")
)

// Store keeps named monotonic counters such as "queries_served".
type Store interface {
	// Increment adds amount to key and returns the new value.
	Increment(ctx context.Context, key string, amount int64) (int64, error)
	// Get returns the current value, or 0 when key was never incremented.
	Get(ctx context.Context, key string) (int64, error)
}

// IncrementOne adds 1 to key.
func IncrementOne(ctx context.Context, s Store, key string) (int64, error) {
	return s.Increment(ctx, key, 1)
}

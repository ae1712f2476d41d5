package counter

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps counters as plain Redis integers under a prefix.
type RedisStore struct {
	client redis.Cmdable
	prefix string
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithRedisPrefix sets the key prefix (default "counter").
func WithRedisPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// NewRedisStore returns a Store backed by client.
func NewRedisStore(client redis.Cmdable, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{client: client, prefix: "counter"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Increment implements Store.
func (s *RedisStore) Increment(ctx context.Context, key string, amount int64) (int64, error) {
	if key == "" {
		return 0, ErrEmptyKey
	}

	value, err := s.client.IncrBy(ctx, s.key(key), amount).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: increment %q: %w", ErrStoreUnavailable, key, err)
	}
	return value, nil
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key string) (int64, error) {
	if key == "" {
		return 0, ErrEmptyKey
	}

	value, err := s.client.Get(ctx, s.key(key)).Int64()
	switch {
	case errors.Is(err, redis.Nil):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("%w: get %q: %w", ErrStoreUnavailable, key, err)
	}
	return value, nil
}

func (s *RedisStore) key(key string) string {
	return s.prefix + ":" + key
}

package ratelimiter

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrementScript bumps the counter and sets its TTL on the first hit of a
// window. Both happen atomically inside Redis.
var incrementScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
	redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return count
`)

// RedisStore implements Store with one Lua script call per increment.
type RedisStore struct {
	client redis.Scripter
	prefix string
	now    func() time.Time
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithRedisPrefix sets the key prefix (default "ratelimit").
func WithRedisPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithRedisClock overrides the time source used for window math.
func WithRedisClock(now func() time.Time) RedisStoreOption {
	return func(s *RedisStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewRedisStore creates a durable store backed by client.
func NewRedisStore(client redis.Scripter, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{
		client: client,
		prefix: "ratelimit",
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Increment implements Store.
func (s *RedisStore) Increment(ctx context.Context, key string, window time.Duration) (Result, error) {
	if err := validate(key, window); err != nil {
		return Result{}, err
	}

	now := s.now()
	w, err := WindowFor(now, window)
	if err != nil {
		return Result{}, err
	}

	redisKey := s.prefix + ":" + key + ":" + strconv.FormatInt(w.Seconds, 10) + ":" + strconv.FormatInt(w.Start, 10)
	ttl := max(1, w.ResetAt-now.Unix())

	count, err := incrementScript.Run(ctx, s.client, []string{redisKey}, ttl).Int64()
	if err != nil {
		return Result{}, fmt.Errorf("rate limit increment failed: %w", err)
	}

	return Result{Count: count, ResetAt: w.ResetAt}, nil
}

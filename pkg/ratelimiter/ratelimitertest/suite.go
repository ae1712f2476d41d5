// Package ratelimitertest provides the conformance suite shared by every
// ratelimiter.Store implementation.
package ratelimitertest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sharedcontext/pkg/ratelimiter"
)

// Factory builds a fresh store reading time from now.
type Factory func(t *testing.T, now func() time.Time) ratelimiter.Store

// Clock is a manually advanced time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a clock frozen at start.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// Now returns the current simulated time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set moves the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// base is aligned to an hour boundary.
var base = time.Unix(1_800_000_000, 0)

func uniqueKey(prefix string) string {
	return prefix + ":" + uuid.NewString()
}

// Run executes the conformance suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()
	ctx := context.Background()

	t.Run("counts increase within a window", func(t *testing.T) {
		clock := NewClock(base.Add(10 * time.Second))
		store := newStore(t, clock.Now)
		key := uniqueKey("agent:abc:query")

		var resetAt int64
		for i := int64(1); i <= 5; i++ {
			res, err := store.Increment(ctx, key, time.Hour)
			require.NoError(t, err)
			assert.Equal(t, i, res.Count)
			if i == 1 {
				resetAt = res.ResetAt
			}
			assert.Equal(t, resetAt, res.ResetAt)
			clock.Advance(time.Second)
		}
	})

	t.Run("new window resets the count", func(t *testing.T) {
		clock := NewClock(base.Add(42 * time.Second))
		store := newStore(t, clock.Now)
		key := uniqueKey("agent:abc:query")

		var first ratelimiter.Result
		for i := int64(1); i <= 3; i++ {
			res, err := store.Increment(ctx, key, 3600*time.Second)
			require.NoError(t, err)
			assert.Equal(t, i, res.Count)
			if i == 1 {
				first = res
			}
			assert.Equal(t, first.ResetAt, res.ResetAt)
		}
		assert.Equal(t, base.Unix()+3600, first.ResetAt)

		clock.Advance(3600 * time.Second)

		res, err := store.Increment(ctx, key, 3600*time.Second)
		require.NoError(t, err)
		assert.Equal(t, int64(1), res.Count)
		assert.Equal(t, first.ResetAt+3600, res.ResetAt)
	})

	t.Run("different window sizes never share a counter", func(t *testing.T) {
		clock := NewClock(base)
		store := newStore(t, clock.Now)
		key := uniqueKey("ip:10.0.0.1:register")

		for i := int64(1); i <= 3; i++ {
			res, err := store.Increment(ctx, key, time.Minute)
			require.NoError(t, err)
			assert.Equal(t, i, res.Count)
		}

		res, err := store.Increment(ctx, key, time.Hour)
		require.NoError(t, err)
		assert.Equal(t, int64(1), res.Count)
		assert.Equal(t, base.Unix()+3600, res.ResetAt)

		res, err = store.Increment(ctx, key, 24*time.Hour)
		require.NoError(t, err)
		assert.Equal(t, int64(1), res.Count)
	})

	t.Run("distinct keys are independent", func(t *testing.T) {
		clock := NewClock(base)
		store := newStore(t, clock.Now)
		a, b := uniqueKey("agent:a:query"), uniqueKey("agent:b:query")

		_, err := store.Increment(ctx, a, time.Hour)
		require.NoError(t, err)
		res, err := store.Increment(ctx, a, time.Hour)
		require.NoError(t, err)
		assert.Equal(t, int64(2), res.Count)

		res, err = store.Increment(ctx, b, time.Hour)
		require.NoError(t, err)
		assert.Equal(t, int64(1), res.Count)
	})

	t.Run("resetAt matches window arithmetic", func(t *testing.T) {
		clock := NewClock(base)
		store := newStore(t, clock.Now)

		instants := []int64{1_800_000_000, 1_800_000_001, 1_800_003_599, 1_799_999_999, 1_234_567_891}
		windows := []int64{1, 7, 60, 3600, 86400}

		for _, ts := range instants {
			for _, w := range windows {
				clock.Set(time.Unix(ts, 0))
				res, err := store.Increment(ctx, uniqueKey("math"), time.Duration(w)*time.Second)
				require.NoError(t, err)
				assert.Equal(t, ts-ts%w+w, res.ResetAt, "T=%d w=%d", ts, w)
				assert.Equal(t, int64(1), res.Count)
			}
		}
	})

	t.Run("concurrent increments are not lost", func(t *testing.T) {
		clock := NewClock(base.Add(5 * time.Second))
		store := newStore(t, clock.Now)
		key := uniqueKey("agent:race:query")

		const workers = 50
		counts := make([]int64, workers)
		var wg sync.WaitGroup
		for i := range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				res, err := store.Increment(ctx, key, time.Hour)
				assert.NoError(t, err)
				counts[i] = res.Count
			}()
		}
		wg.Wait()

		seen := make(map[int64]bool, workers)
		for _, c := range counts {
			seen[c] = true
		}
		assert.Len(t, seen, workers, "every caller must observe a distinct count")

		res, err := store.Increment(ctx, key, time.Hour)
		require.NoError(t, err)
		assert.Equal(t, int64(workers+1), res.Count)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		store := newStore(t, time.Now)

		_, err := store.Increment(ctx, uniqueKey("k"), 500*time.Millisecond)
		assert.ErrorIs(t, err, ratelimiter.ErrInvalidWindow)

		_, err = store.Increment(ctx, "", time.Minute)
		assert.ErrorIs(t, err, ratelimiter.ErrEmptyKey)
	})
}

// Package countertest provides the conformance suite for counter.Store.
package countertest

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sharedcontext/pkg/counter"
)

// Run executes the suite against a store created by newStore.
func Run(t *testing.T, newStore func(t *testing.T) counter.Store) {
	t.Helper()
	ctx := context.Background()

	key := func(name string) string { return name + ":" + uuid.NewString() }

	t.Run("unset counter reads zero", func(t *testing.T) {
		store := newStore(t)
		v, err := store.Get(ctx, key("queries_served"))
		require.NoError(t, err)
		assert.Zero(t, v)
	})

	t.Run("increments accumulate", func(t *testing.T) {
		store := newStore(t)
		k := key("queries_served")

		for i := int64(1); i <= 3; i++ {
			v, err := counter.IncrementOne(ctx, store, k)
			require.NoError(t, err)
			assert.Equal(t, i, v)
		}

		v, err := store.Get(ctx, k)
		require.NoError(t, err)
		assert.Equal(t, int64(3), v)
	})

	t.Run("custom amount", func(t *testing.T) {
		store := newStore(t)
		v, err := store.Increment(ctx, key("queries_served"), 5)
		require.NoError(t, err)
		assert.Equal(t, int64(5), v)
	})

	t.Run("keys are independent", func(t *testing.T) {
		store := newStore(t)
		a, b := key("queries_served"), key("contributions_created")

		_, err := store.Increment(ctx, a, 10)
		require.NoError(t, err)
		_, err = store.Increment(ctx, b, 3)
		require.NoError(t, err)

		va, err := store.Get(ctx, a)
		require.NoError(t, err)
		vb, err := store.Get(ctx, b)
		require.NoError(t, err)
		assert.Equal(t, int64(10), va)
		assert.Equal(t, int64(3), vb)
	})

	t.Run("concurrent increments are not lost", func(t *testing.T) {
		store := newStore(t)
		k := key("race")

		var wg sync.WaitGroup
		for range 40 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := store.Increment(ctx, k, 2)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		v, err := store.Get(ctx, k)
		require.NoError(t, err)
		assert.Equal(t, int64(80), v)
	})

	t.Run("empty key", func(t *testing.T) {
		store := newStore(t)
		_, err := store.Increment(ctx, "", 1)
		assert.ErrorIs(t, err, counter.ErrEmptyKey)
		_, err = store.Get(ctx, "")
		assert.ErrorIs(t, err, counter.ErrEmptyKey)
	})
}

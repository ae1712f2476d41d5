package counter_test

import (
	"testing"

	"github.com/dmitrymomot/sharedcontext/internal/testutil"
	"github.com/dmitrymomot/sharedcontext/pkg/counter"
	"github.com/dmitrymomot/sharedcontext/pkg/counter/countertest"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	countertest.Run(t, func(*testing.T) counter.Store {
		return counter.NewMemoryStore()
	})
}

func TestPostgresStore(t *testing.T) {
	t.Parallel()

	pool := testutil.Postgres(t)
	countertest.Run(t, func(*testing.T) counter.Store {
		return counter.NewPostgresStore(pool)
	})
}

func TestRedisStore(t *testing.T) {
	t.Parallel()

	client := testutil.Redis(t)
	countertest.Run(t, func(*testing.T) counter.Store {
		return counter.NewRedisStore(client, counter.WithRedisPrefix("test_counter"))
	})
}

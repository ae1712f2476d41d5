package ratelimiter_test

import (
	"testing"
	"time"

	"github.com/dmitrymomot/sharedcontext/internal/testutil"
	"github.com/dmitrymomot/sharedcontext/pkg/ratelimiter"
	"github.com/dmitrymomot/sharedcontext/pkg/ratelimiter/ratelimitertest"
)

func TestPostgresStore_Conformance(t *testing.T) {
	t.Parallel()

	pool := testutil.Postgres(t)

	ratelimitertest.Run(t, func(t *testing.T, now func() time.Time) ratelimiter.Store {
		return ratelimiter.NewPostgresStore(pool, ratelimiter.WithPostgresClock(now))
	})
}

// Package ratelimiter counts requests per key in fixed, clock-aligned windows.
//
// A window of width w containing unix second T starts at T - T%w and resets at
// that start plus w. Each (key, window size, window start) triple has its own
// counter, and the first hit of a new window starts again at 1.
//
// Three interchangeable stores implement Store:
//
//   - MemoryStore keeps counters in a mutex-guarded map. It serves a single
//     instance and loses state on restart.
//   - PostgresStore calls the increment_rate_limit SQL function, a single
//     atomic upsert.
//   - RedisStore runs a Lua script doing INCR and EXPIRE atomically.
//
// The ratelimitertest package holds the conformance suite every store passes.
//
//	store := ratelimiter.NewMemoryStore()
//	res, err := store.Increment(ctx, "agent:abc:query", time.Hour)
//	if res.Count > 100 {
//		retryAfter := res.RetryAfter(time.Now())
//	}
package ratelimiter

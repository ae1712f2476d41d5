// Package counter provides named platform counters with atomic increments.
//
// Three interchangeable stores implement Store: MemoryStore for tests and a
// single process, PostgresStore backed by the increment_counter SQL function,
// and RedisStore backed by INCRBY. A missing counter reads as zero.
//
//	store := counter.NewMemoryStore()
//	n, err := counter.IncrementOne(ctx, store, "queries_served")
package counter

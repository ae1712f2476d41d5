// Package redis opens a go-redis client from a URL, retrying until the
// server answers PING, and exposes a readiness probe.
//
//	client, err := redis.Connect(ctx, redis.Config{ConnectionURL: "redis://localhost:6379/0"})
//	if err != nil {
//		return err
//	}
//	defer client.Close()
package redis

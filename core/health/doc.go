// Package health provides liveness and readiness handlers.
//
//	r.Get("/health/live", health.Liveness[*platform.Context])
//	r.Get("/health/ready", health.Readiness[*platform.Context](log,
//		health.Check{Name: "postgres", Fn: pg.Healthcheck(pool)},
//		health.Check{Name: "redis", Fn: redis.Healthcheck(client)},
//	))
package health

package health

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/sharedcontext/core/handler"
	"github.com/dmitrymomot/sharedcontext/core/logger"
	"github.com/dmitrymomot/sharedcontext/core/response"
)

// Check is a named dependency probe such as pg.Healthcheck(pool).
type Check struct {
	Name string
	Fn   func(context.Context) error
}

// DefaultCheckTimeout bounds each probe.
const DefaultCheckTimeout = 3 * time.Second

// Readiness runs every check and answers 200 when all pass. Otherwise it
// returns 503 SERVICE_UNAVAILABLE listing the failed dependencies.
func Readiness[C handler.Context](log *slog.Logger, checks ...Check) handler.HandlerFunc[C] {
	if log == nil {
		log = logger.Nop()
	}
	return func(ctx C) handler.Response {
		results := make(map[string]string, len(checks))
		failed := make([]string, 0)

		for _, c := range checks {
			checkCtx, cancel := context.WithTimeout(ctx, DefaultCheckTimeout)
			err := c.Fn(checkCtx)
			cancel()

			if err != nil {
				log.ErrorContext(ctx, "readiness check failed",
					logger.Component("health"),
					slog.String("check", c.Name),
					logger.Error(err))
				results[c.Name] = "unavailable"
				failed = append(failed, c.Name)
				continue
			}
			results[c.Name] = "ok"
		}

		if len(failed) > 0 {
			return response.Error(response.ErrServiceUnavailable.WithDetails(map[string]any{
				"failed": failed,
			}))
		}
		return response.JSON(map[string]any{"status": "ready", "checks": results})
	}
}

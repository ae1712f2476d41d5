package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/sharedcontext/core/handler"
	"github.com/dmitrymomot/sharedcontext/core/response"
)

// RequestObserver records served requests. *metrics.Metrics implements it.
type RequestObserver interface {
	ObserveRequest(method, route string, status int, size int64, d time.Duration)
}

// Metrics reports every request to obs, labelled by the matched route
// pattern rather than the raw path to keep label cardinality bounded.
func Metrics[C handler.Context](obs RequestObserver) handler.Middleware[C] {
	if obs == nil {
		panic("metrics middleware: observer is required")
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			start := time.Now()
			req := ctx.Request()
			size := max(req.ContentLength, 0)

			resp := next(ctx)
			if resp == nil {
				return nil
			}

			return func(w http.ResponseWriter, r *http.Request) error {
				rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
				err := resp(rec, r)

				status := rec.status
				if err != nil && !rec.wroteHeader {
					httpErr, _ := response.Convert(err)
					status = httpErr.Status
				}
				obs.ObserveRequest(req.Method, routePattern(r), status, size, time.Since(start))
				return err
			}
		}
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

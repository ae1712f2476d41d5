package middleware

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/sharedcontext/core/handler"
	"github.com/dmitrymomot/sharedcontext/core/logger"
	"github.com/dmitrymomot/sharedcontext/core/response"
)

// ErrorMappingConfig configures the error translator.
type ErrorMappingConfig struct {
	// Logger receives unknown and 5xx errors (default: no-op)
	Logger *slog.Logger

	// OnError is called with every mapped error before it is rendered.
	OnError func(ctx handler.Context, err error, mapped response.HTTPError)
}

// ErrorMapping creates the error translator with a no-op logger.
func ErrorMapping[C handler.Context]() handler.Middleware[C] {
	return ErrorMappingWithConfig[C](ErrorMappingConfig{})
}

// ErrorMappingWithLogger creates the error translator logging to log.
func ErrorMappingWithLogger[C handler.Context](log *slog.Logger) handler.Middleware[C] {
	return ErrorMappingWithConfig[C](ErrorMappingConfig{Logger: log})
}

// ErrorMappingWithConfig creates the single place where errors become the
// JSON error envelope {"error":{"code","message","details"?}}.
//
// Typed errors keep their status, code, message and details. Anything else is
// logged and rendered as a generic 500 INTERNAL_ERROR so store failures never
// leak to clients. If the inner response already wrote headers the error is
// only logged.
func ErrorMappingWithConfig[C handler.Context](cfg ErrorMappingConfig) handler.Middleware[C] {
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			resp := next(ctx)
			if resp == nil {
				return nil
			}

			return func(w http.ResponseWriter, r *http.Request) error {
				err := resp(w, r)
				if err == nil {
					return nil
				}

				mapped, known := response.Convert(err)
				attrs := []slog.Attr{
					logger.Component("errors"),
					logger.Method(r.Method),
					logger.Path(r.URL.Path),
					logger.StatusCode(mapped.Status),
					logger.Code(mapped.Code),
					logger.Error(err),
				}
				switch {
				case !known:
					cfg.Logger.LogAttrs(r.Context(), slog.LevelError, "unhandled error", attrs...)
				case mapped.Status >= http.StatusInternalServerError:
					cfg.Logger.LogAttrs(r.Context(), slog.LevelWarn, "upstream error", attrs...)
				}

				if cfg.OnError != nil {
					cfg.OnError(ctx, err, mapped)
				}

				if ww, ok := w.(interface{ Written() bool }); ok && ww.Written() {
					cfg.Logger.LogAttrs(r.Context(), slog.LevelWarn, "error after response was written", attrs...)
					return nil
				}

				return response.JSONWithStatus(response.Envelope{Error: mapped}, mapped.Status)(w, r)
			}
		}
	}
}

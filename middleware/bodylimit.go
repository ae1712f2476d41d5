package middleware

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/dmitrymomot/sharedcontext/core/handler"
)

// DefaultBodyLimit is the request body cap used when none is configured.
const DefaultBodyLimit int64 = 50 * 1024

// BodyLimitConfig configures the request body size guard.
type BodyLimitConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx handler.Context) bool

	// MaxSize is the maximum allowed size in bytes (default: 50KB)
	MaxSize int64

	// OnReject is called for every rejected request, e.g. to bump a metric.
	OnReject func(ctx handler.Context, size int64)
}

// BodyLimit creates a body size guard with the default 50KB limit.
func BodyLimit[C handler.Context]() handler.Middleware[C] {
	return BodyLimitWithConfig[C](BodyLimitConfig{})
}

// BodyLimitWithSize creates a body size guard with the given limit.
func BodyLimitWithSize[C handler.Context](maxSize int64) handler.Middleware[C] {
	return BodyLimitWithConfig[C](BodyLimitConfig{MaxSize: maxSize})
}

// BodyLimitWithConfig creates a body size guard.
//
// GET, HEAD and OPTIONS requests pass untouched. A declared Content-Length
// above the limit is rejected without reading the body; otherwise at most
// MaxSize+1 bytes are read and the request body is replaced with a re-readable
// copy. A body of exactly MaxSize bytes is accepted.
//
// Rejections are written directly as a 413 error envelope, so the guard can
// sit outside the error-mapping middleware.
func BodyLimitWithConfig[C handler.Context](cfg BodyLimitConfig) handler.Middleware[C] {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultBodyLimit
	}
	tooLarge := tooLargeBody(cfg.MaxSize)

	reject := func(ctx C, size int64) handler.Response {
		if cfg.OnReject != nil {
			cfg.OnReject(ctx, size)
		}
		return writeEnvelope(http.StatusRequestEntityTooLarge, tooLarge)
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			req := ctx.Request()
			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(ctx)
			}

			if size := declaredLength(req); size > cfg.MaxSize {
				return reject(ctx, size)
			}

			if req.Body == nil || req.Body == http.NoBody {
				return next(ctx)
			}

			body, err := io.ReadAll(io.LimitReader(req.Body, cfg.MaxSize+1))
			_ = req.Body.Close()
			if int64(len(body)) > cfg.MaxSize {
				return reject(ctx, int64(len(body)))
			}
			if err != nil {
				// Disconnects and reset streams are not size violations.
				return writeEnvelope(http.StatusBadRequest, unreadableBody)
			}

			req.Body = io.NopCloser(bytes.NewReader(body))
			req.ContentLength = int64(len(body))
			req.GetBody = func() (io.ReadCloser, error) {
				return io.NopCloser(bytes.NewReader(body)), nil
			}

			return next(ctx)
		}
	}
}

// declaredLength prefers the raw header and falls back to r.ContentLength.
// It returns -1 when the size is unknown.
func declaredLength(r *http.Request) int64 {
	if v := r.Header.Get("Content-Length"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	if r.ContentLength > 0 {
		return r.ContentLength
	}
	return -1
}

var unreadableBody = []byte(`{"error":{"code":"INVALID_REQUEST","message":"Failed to read request body"}}`)

func writeEnvelope(status int, body []byte) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, err := w.Write(body)
		return err
	}
}

func tooLargeBody(maxSize int64) []byte {
	kb := int64(math.Round(float64(maxSize) / 1024))
	return fmt.Appendf(nil, `{"error":{"code":"INVALID_REQUEST","message":"Request body too large (max %dKB)"}}`, kb)
}

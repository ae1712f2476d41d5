package middleware_test

import (
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sharedcontext/core/handler"
	"github.com/dmitrymomot/sharedcontext/core/response"
	"github.com/dmitrymomot/sharedcontext/core/router"
	"github.com/dmitrymomot/sharedcontext/middleware"
)

func TestLogging_CompletedEntry(t *testing.T) {
	t.Parallel()

	logs := &captureHandler{}
	r := newRouter()
	r.Use(
		middleware.RequestIDWithConfig[*router.Context](middleware.RequestIDConfig{Generator: func() string { return "req-1" }}),
		middleware.LoggingWithLogger[*router.Context](slog.New(logs)),
	)
	r.Get("/stats", func(ctx *router.Context) handler.Response {
		return response.String("test response")
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats?x=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	entries := logs.all()
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "HTTP request completed", e["msg"])
	assert.Equal(t, "INFO", e["level"])
	assert.Equal(t, "GET", e["method"])
	assert.Equal(t, "/stats", e["path"])
	assert.EqualValues(t, 200, e["status_code"])
	assert.EqualValues(t, 13, e["bytes_out"])
	assert.Equal(t, "req-1", e["request_id"])
	assert.NotNil(t, e["duration"])
}

func TestLogging_LevelsFollowStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		err   error
		level string
		code  int
	}{
		{name: "client error", err: response.ErrNotFound, level: "WARN", code: http.StatusNotFound},
		{name: "server error", err: errors.New("db down"), level: "ERROR", code: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			logs := &captureHandler{}
			r := newRouter()
			r.Use(
				middleware.LoggingWithLogger[*router.Context](slog.New(logs)),
				middleware.ErrorMapping[*router.Context](),
			)
			r.Get("/x", fail(tt.err))

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
			require.Equal(t, tt.code, rec.Code)

			entries := logs.all()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.level, entries[0]["level"])
			assert.EqualValues(t, tt.code, entries[0]["status_code"])
		})
	}
}

func TestLogging_StatusOfUnrenderedError(t *testing.T) {
	t.Parallel()

	logs := &captureHandler{}
	r := newRouter()
	r.Use(middleware.LoggingWithLogger[*router.Context](slog.New(logs)))
	r.Get("/x", fail(response.ErrForbidden))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	require.Len(t, logs.all(), 1)
	assert.EqualValues(t, http.StatusForbidden, logs.all()[0]["status_code"])
}

func TestLogging_RequestEntryRedactsAndKeepsBody(t *testing.T) {
	t.Parallel()

	logs := &captureHandler{}
	r := newRouter()
	r.Use(middleware.LoggingWithConfig[*router.Context](middleware.LoggingConfig{
		Logger:         slog.New(logs),
		LogRequest:     true,
		LogRequestBody: true,
		LogHeaders:     true,
		MaxBodyLogSize: 4,
	}))
	r.Post("/echo", func(ctx *router.Context) handler.Response {
		var sb strings.Builder
		buf := make([]byte, 64)
		for {
			n, err := ctx.Request().Body.Read(buf)
			sb.Write(buf[:n])
			if err != nil {
				break
			}
		}
		return response.String(sb.String())
	})

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("payload"))
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "payload", rec.Body.String())

	entries := logs.all()
	require.Len(t, entries, 2)
	started := entries[0]
	assert.Equal(t, "HTTP request started", started["msg"])
	assert.Equal(t, "payl", started["request_body"])
	assert.Equal(t, true, started["request_body_truncated"])
	headers, isMap := started["request_headers"].(map[string]any)
	require.True(t, isMap)
	assert.Equal(t, "[REDACTED]", headers["Authorization"])
}

func TestLogging_Skip(t *testing.T) {
	t.Parallel()

	logs := &captureHandler{}
	r := newRouter()
	r.Use(middleware.LoggingWithConfig[*router.Context](middleware.LoggingConfig{
		Logger: slog.New(logs),
		Skip: func(ctx handler.Context) bool {
			return strings.HasPrefix(ctx.Request().URL.Path, "/health")
		},
	}))
	r.Get("/health/live", okHandler)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Empty(t, logs.all())
}

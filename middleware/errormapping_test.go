package middleware_test

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sharedcontext/core/handler"
	"github.com/dmitrymomot/sharedcontext/core/response"
	"github.com/dmitrymomot/sharedcontext/core/router"
	"github.com/dmitrymomot/sharedcontext/middleware"
	"github.com/dmitrymomot/sharedcontext/pkg/vectorizer"
)

func TestErrorMapping_Envelope(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{
			name:   "validation",
			err:    response.InvalidRequest("claim is required"),
			status: http.StatusBadRequest,
			body:   `{"error":{"code":"INVALID_REQUEST","message":"claim is required"}}`,
		},
		{
			name:   "unauthorized",
			err:    response.ErrUnauthorized,
			status: http.StatusUnauthorized,
			body:   `{"error":{"code":"UNAUTHORIZED","message":"Invalid or missing API key"}}`,
		},
		{
			name:   "wrapped not found",
			err:    fmt.Errorf("load: %w", response.NotFound(`Agent "x" not found`)),
			status: http.StatusNotFound,
			body:   `{"error":{"code":"NOT_FOUND","message":"Agent \"x\" not found"}}`,
		},
		{
			name:   "duplicate with details",
			err:    response.Conflict(response.CodeDuplicateContribution, "near duplicate", map[string]any{"existingId": "c1"}),
			status: http.StatusConflict,
			body:   `{"error":{"code":"DUPLICATE_CONTRIBUTION","message":"near duplicate","details":{"existingId":"c1"}}}`,
		},
		{
			name:   "rate limited",
			err:    response.RateLimited(42),
			status: http.StatusTooManyRequests,
			body:   `{"error":{"code":"RATE_LIMITED","message":"Rate limit exceeded","details":{"retryAfter":42}}}`,
		},
		{
			name:   "embedding failure",
			err:    &vectorizer.Error{Provider: "voyage", Status: 503, Detail: "overloaded", Attempts: 3, Retryable: true, Type: vectorizer.TypeHTTP},
			status: http.StatusBadGateway,
			body:   `{"error":{"code":"EMBEDDING_ERROR","message":"voyage API error (503): overloaded","details":{"provider":"voyage","status":503,"detail":"overloaded","attempts":3,"retryable":true}}}`,
		},
		{
			name:   "unknown error is hidden",
			err:    errors.New("pq: connection reset"),
			status: http.StatusInternalServerError,
			body:   `{"error":{"code":"INTERNAL_ERROR","message":"Internal server error"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := newRouter()
			r.Use(middleware.ErrorMapping[*router.Context]())
			r.Get("/x", fail(tt.err))

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.body, rec.Body.String())
		})
	}
}

func TestErrorMapping_LogsUnknownErrors(t *testing.T) {
	t.Parallel()

	logs := &captureHandler{}
	var mapped response.HTTPError
	r := newRouter()
	r.Use(middleware.ErrorMappingWithConfig[*router.Context](middleware.ErrorMappingConfig{
		Logger: slog.New(logs),
		OnError: func(_ handler.Context, _ error, m response.HTTPError) {
			mapped = m
		},
	}))
	r.Get("/x", fail(errors.New("redis: i/o timeout")))
	r.Get("/y", fail(response.ErrNotFound))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))
	entries := logs.all()
	require.Len(t, entries, 1)
	assert.Equal(t, "unhandled error", entries[0]["msg"])
	assert.Equal(t, "ERROR", entries[0]["level"])
	assert.Equal(t, response.CodeInternal, mapped.Code)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/y", nil))
	assert.Len(t, logs.all(), 1, "typed 4xx errors are not logged")
	assert.Equal(t, response.CodeNotFound, mapped.Code)
}

func TestErrorMapping_PassesSuccess(t *testing.T) {
	t.Parallel()

	r := newRouter()
	r.Use(middleware.ErrorMapping[*router.Context]())
	r.Get("/x", okHandler)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestErrorMapping_AfterWriteOnlyLogs(t *testing.T) {
	t.Parallel()

	logs := &captureHandler{}
	r := newRouter()
	r.Use(middleware.ErrorMappingWithLogger[*router.Context](slog.New(logs)))
	r.Get("/x", func(*router.Context) handler.Response {
		return func(w http.ResponseWriter, _ *http.Request) error {
			w.WriteHeader(http.StatusAccepted)
			_, _ = w.Write([]byte("partial"))
			return errors.New("stream broke")
		}
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "partial", rec.Body.String())
	msgs := []string{}
	for _, e := range logs.all() {
		msgs = append(msgs, e["msg"].(string))
	}
	assert.Contains(t, msgs, "error after response was written")
}

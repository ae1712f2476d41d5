package health_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/sharedcontext/core/health"
	"github.com/dmitrymomot/sharedcontext/core/response"
	"github.com/dmitrymomot/sharedcontext/core/router"
)

type ctx = *router.Context

func newRouter(checks ...health.Check) router.Router[ctx] {
	r := router.New[ctx](router.WithErrorHandler(response.JSONErrorHandler[ctx]))
	r.Get("/live", health.Liveness[ctx])
	r.Get("/ready", health.Readiness[ctx](nil, checks...))
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestLiveness(t *testing.T) {
	t.Parallel()

	rec := get(newRouter(), "/live")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"alive"}`, rec.Body.String())
}

func TestReadiness(t *testing.T) {
	t.Parallel()

	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	t.Run("all healthy", func(t *testing.T) {
		t.Parallel()

		rec := get(newRouter(health.Check{Name: "postgres", Fn: ok}, health.Check{Name: "redis", Fn: ok}), "/ready")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ready","checks":{"postgres":"ok","redis":"ok"}}`, rec.Body.String())
	})

	t.Run("no checks", func(t *testing.T) {
		t.Parallel()

		rec := get(newRouter(), "/ready")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("failed dependency", func(t *testing.T) {
		t.Parallel()

		rec := get(newRouter(health.Check{Name: "postgres", Fn: ok}, health.Check{Name: "redis", Fn: down}), "/ready")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), `"code":"SERVICE_UNAVAILABLE"`)
		assert.Contains(t, rec.Body.String(), `"failed":["redis"]`)
		assert.NotContains(t, rec.Body.String(), "connection refused")
	})
}

package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sharedcontext/core/response"
	"github.com/dmitrymomot/sharedcontext/core/router"
	"github.com/dmitrymomot/sharedcontext/middleware"
)

type observation struct {
	method string
	route  string
	status int
	size   int64
}

type recordingObserver struct {
	mu  sync.Mutex
	obs []observation
}

func (o *recordingObserver) ObserveRequest(method, route string, status int, size int64, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.obs = append(o.obs, observation{method, route, status, size})
}

func TestMetrics_ObservesRoutePattern(t *testing.T) {
	t.Parallel()

	obs := &recordingObserver{}
	r := newRouter()
	r.Use(
		middleware.Metrics[*router.Context](obs),
		middleware.ErrorMapping[*router.Context](),
	)
	r.Get("/contributions/{id}", okHandler)
	r.Delete("/contributions/{id}", fail(response.ErrForbidden))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/contributions/abc", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/contributions/xyz", nil))

	require.Len(t, obs.obs, 2)
	assert.Equal(t, observation{http.MethodGet, "/contributions/{id}", http.StatusOK, 0}, obs.obs[0])
	assert.Equal(t, observation{http.MethodDelete, "/contributions/{id}", http.StatusForbidden, 0}, obs.obs[1])
}

func TestMetrics_NilObserverPanics(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { middleware.Metrics[*router.Context](nil) })
}

package metrics_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sharedcontext/core/metrics"
	"github.com/dmitrymomot/sharedcontext/pkg/vectorizer"
)

func TestMetrics_ObserveRequest(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	m.ObserveRequest(http.MethodPost, "/api/v1/query", 200, 120, 10*time.Millisecond)
	m.ObserveRequest(http.MethodPost, "/api/v1/query", 429, 0, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("POST", "/api/v1/query", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("POST", "/api/v1/query", "429")))
}

func TestMetrics_ObserveEmbedding(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	var observe vectorizer.ObserveFunc = m.ObserveEmbedding

	observe("voyage", 1, time.Millisecond, nil)
	observe("voyage", 3, time.Second, &vectorizer.Error{Provider: "voyage", Status: 503, Retryable: true})
	observe("voyage", 1, time.Millisecond, &vectorizer.Error{Provider: "voyage", Status: 400})
	observe("voyage", 0, 0, errors.New("marshal failed"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.EmbeddingCalls.WithLabelValues("voyage", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EmbeddingCalls.WithLabelValues("voyage", "unavailable")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.EmbeddingCalls.WithLabelValues("voyage", "error")))
}

func TestMetrics_Handler(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	m.RateLimitRejected.WithLabelValues("query").Inc()
	m.PayloadRejected.Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `sharedcontext_rate_limit_rejected_total{preset="query"} 1`)
	assert.Contains(t, body, "sharedcontext_payload_rejected_total 1")
	assert.Contains(t, body, "go_goroutines")
}

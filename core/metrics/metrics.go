package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sharedcontext"

// Metrics holds the application collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal     *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	RequestSize       *prometheus.HistogramVec
	RateLimitRejected *prometheus.CounterVec
	PayloadRejected   prometheus.Counter
	EmbeddingCalls    *prometheus.CounterVec
	EmbeddingAttempts *prometheus.HistogramVec
	EmbeddingDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them together with the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"method", "route"}),
		RequestSize: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_size_bytes",
			Help:      "HTTP request body size in bytes",
			Buckets:   []float64{100, 1000, 10000, 51200, 100000, 1000000},
		}, []string{"method", "route"}),
		RateLimitRejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_rejected_total",
			Help:      "Requests rejected by a rate limit preset",
		}, []string{"preset"}),
		PayloadRejected: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payload_rejected_total",
			Help:      "Requests rejected for exceeding the body size limit",
		}),
		EmbeddingCalls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_calls_total",
			Help:      "Embedding provider calls by outcome",
		}, []string{"provider", "outcome"}),
		EmbeddingAttempts: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "embedding_attempts",
			Help:      "HTTP attempts per embedding call",
			Buckets:   []float64{1, 2, 3, 4, 5},
		}, []string{"provider"}),
		EmbeddingDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "embedding_duration_seconds",
			Help:      "Embedding call duration including retries",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"provider"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, size int64, d time.Duration) {
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
	if size > 0 {
		m.RequestSize.WithLabelValues(method, route).Observe(float64(size))
	}
}

// ObserveEmbedding has the vectorizer.ObserveFunc signature.
func (m *Metrics) ObserveEmbedding(provider string, attempts int, elapsed time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
		var retryable interface{ IsRetryable() bool }
		if errors.As(err, &retryable) && retryable.IsRetryable() {
			outcome = "unavailable"
		}
	}
	m.EmbeddingCalls.WithLabelValues(provider, outcome).Inc()
	if attempts > 0 {
		m.EmbeddingAttempts.WithLabelValues(provider).Observe(float64(attempts))
	}
	m.EmbeddingDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// Package metrics exposes Prometheus collectors for HTTP traffic, admission
// control rejections and embedding provider calls.
//
//	m := metrics.New()
//	r.Mount("/metrics", m.Handler())
//	v, err := vectorizer.New(ctx, cfg, log, m.ObserveEmbedding)
package metrics

package server

import "time"

const (
	DefaultAddr              = ":8080"
	DefaultReadHeaderTimeout = 5 * time.Second
	DefaultReadTimeout       = 15 * time.Second
	DefaultIdleTimeout       = 60 * time.Second
	DefaultShutdownTimeout   = 30 * time.Second

	// DefaultWriteTimeout fits a full embedding retry sequence with the
	// default provider settings (3 attempts of 30s plus 2s and 4s backoff).
	DefaultWriteTimeout = 2 * time.Minute

	// DefaultMaxHeaderBytes leaves room for an Authorization or X-API-Key
	// header and little else; API clients send no cookies.
	DefaultMaxHeaderBytes = 64 << 10

	// WriteTimeoutMargin is added on top of an upstream worst case by
	// Config.CoverUpstream.
	WriteTimeoutMargin = 10 * time.Second
)

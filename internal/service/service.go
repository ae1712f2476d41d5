// Package service implements the platform's use cases on top of the
// repositories, the embedding client and the counter store.
//
// Services return response.HTTPError values for every failure the caller
// caused (validation, ownership, missing records); anything else is an
// infrastructure error and maps to 500 or, for embedding failures, 502.
package service

import (
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/dmitrymomot/sharedcontext/core/logger"
	"github.com/dmitrymomot/sharedcontext/core/response"
)

// Option configures a service.
type Option func(*options)

type options struct {
	log *slog.Logger
	now func() time.Time
}

func newOptions(opts []Option) options {
	o := options{log: logger.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func invalid(field, message string) error {
	return response.InvalidRequest(message).WithDetails(map[string]any{"field": field})
}

func tooLong(field, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return invalid(field, fmt.Sprintf("%s must be %d characters or less", field, max))
	}
	return nil
}

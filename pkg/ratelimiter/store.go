package ratelimiter

import (
	"context"
	"time"
)

// Store counts requests per key inside fixed, clock-aligned windows.
// Increment is atomic: concurrent callers never lose an update.
type Store interface {
	// Increment adds one hit to key in the window containing now and returns
	// the count after the increment together with the window end.
	Increment(ctx context.Context, key string, window time.Duration) (Result, error)
}

// Result is the outcome of a single increment.
type Result struct {
	// Count is the number of hits in the current window, including this one.
	Count int64 `json:"count"`
	// ResetAt is the unix second at which the current window ends.
	ResetAt int64 `json:"resetAt"`
}

// RetryAfter returns the whole seconds until the window resets, never less than 1.
func (r Result) RetryAfter(now time.Time) int64 {
	return max(1, r.ResetAt-now.Unix())
}

// Window describes the fixed window containing a moment in time.
type Window struct {
	Seconds int64
	Start   int64
	ResetAt int64
}

// WindowFor computes the window of the given width that contains now:
// start = now - now%w and resetAt = start + w, in unix seconds.
func WindowFor(now time.Time, window time.Duration) (Window, error) {
	seconds := int64(window / time.Second)
	if seconds < 1 {
		return Window{}, ErrInvalidWindow
	}
	ts := now.Unix()
	start := ts - ts%seconds
	return Window{
		Seconds: seconds,
		Start:   start,
		ResetAt: start + seconds,
	}, nil
}

func validate(key string, window time.Duration) error {
	if key == "" {
		return ErrEmptyKey
	}
	if window < time.Second {
		return ErrInvalidWindow
	}
	return nil
}

package ratelimiter

import "errors"

var (
	ErrInvalidWindow    = errors.New("rate limit window must be at least one second")
	ErrEmptyKey         = errors.New("rate limit key must not be empty")
	ErrStoreUnavailable = errors.New("rate limit store unavailable")
	ErrAlreadyStarted   = errors.New("memory store already started")
	ErrNotStarted       = errors.New("memory store not started")
	ErrPruneDisabled    = errors.New("prune interval must be > 0 (use WithPruneInterval)")
)

package ratelimiter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/sharedcontext/core/logger"
)

// bucket holds the hit count of one (key, window size, window start) triple.
type bucket struct {
	count   int64
	resetAt int64
}

// MemoryStore implements Store in process memory.
// It is correct for a single instance only and loses state on restart.
//
// Buckets from past windows are superseded, never removed, unless a prune
// interval is configured and Start (or Run) is called. Without pruning the
// bucket map grows for the lifetime of the process.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket

	now             func() time.Time
	pruneInterval   time.Duration
	shutdownTimeout time.Duration
	logger          *slog.Logger

	cancel  context.CancelFunc
	running atomic.Bool
	wg      sync.WaitGroup

	bucketsCreated atomic.Int64
	bucketsRemoved atomic.Int64
}

// MemoryStoreStats provides observability metrics for monitoring and debugging.
type MemoryStoreStats struct {
	BucketsCreated int64
	BucketsRemoved int64
	ActiveBuckets  int
	IsRunning      bool
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithClock overrides the time source. Used to simulate window boundaries.
func WithClock(now func() time.Time) MemoryStoreOption {
	return func(ms *MemoryStore) {
		if now != nil {
			ms.now = now
		}
	}
}

// WithPruneInterval enables periodic removal of expired buckets once Start runs.
// Zero (the default) keeps every bucket.
func WithPruneInterval(interval time.Duration) MemoryStoreOption {
	return func(ms *MemoryStore) {
		ms.pruneInterval = interval
	}
}

// WithMemoryStoreShutdownTimeout sets the graceful shutdown timeout.
func WithMemoryStoreShutdownTimeout(timeout time.Duration) MemoryStoreOption {
	return func(ms *MemoryStore) {
		if timeout > 0 {
			ms.shutdownTimeout = timeout
		}
	}
}

// WithMemoryStoreLogger sets the logger for internal operations.
func WithMemoryStoreLogger(l *slog.Logger) MemoryStoreOption {
	return func(ms *MemoryStore) {
		if l != nil {
			ms.logger = l
		}
	}
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	ms := &MemoryStore{
		buckets:         make(map[string]*bucket),
		now:             time.Now,
		shutdownTimeout: 30 * time.Second,
		logger:          logger.Nop(),
	}

	for _, opt := range opts {
		opt(ms)
	}

	return ms
}

// Increment implements Store.
func (ms *MemoryStore) Increment(ctx context.Context, key string, window time.Duration) (Result, error) {
	if err := validate(key, window); err != nil {
		return Result{}, err
	}

	w, err := WindowFor(ms.now(), window)
	if err != nil {
		return Result{}, err
	}

	// Window size is part of the bucket key so presets sharing a key prefix
	// with different widths never share a counter.
	bucketKey := key + ":" + strconv.FormatInt(w.Seconds, 10) + ":" + strconv.FormatInt(w.Start, 10)

	ms.mu.Lock()
	defer ms.mu.Unlock()

	b, ok := ms.buckets[bucketKey]
	if !ok || b.resetAt != w.ResetAt {
		b = &bucket{resetAt: w.ResetAt}
		ms.buckets[bucketKey] = b
		ms.bucketsCreated.Add(1)
	}
	b.count++

	return Result{Count: b.count, ResetAt: b.resetAt}, nil
}

// Start runs the prune loop until ctx is cancelled or Stop is called.
// It blocks; use Run for the errgroup pattern.
func (ms *MemoryStore) Start(ctx context.Context) error {
	if ms.pruneInterval <= 0 {
		return ErrPruneDisabled
	}

	ms.mu.Lock()
	if ms.cancel != nil {
		ms.mu.Unlock()
		return ErrAlreadyStarted
	}
	ctx, ms.cancel = context.WithCancel(ctx)
	ms.mu.Unlock()

	ms.running.Store(true)
	defer ms.running.Store(false)

	ms.logger.InfoContext(ctx, "rate limit memory store prune started",
		logger.Component("ratelimiter"),
		slog.Duration("prune_interval", ms.pruneInterval))

	ticker := time.NewTicker(ms.pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			ms.logger.InfoContext(context.Background(), "rate limit memory store prune stopping",
				logger.Component("ratelimiter"))
			return ctx.Err()
		case <-ticker.C:
			ms.wg.Add(1)
			ms.Prune()
			ms.wg.Done()
		}
	}
}

// Stop cancels the prune loop and waits for an in-flight prune to finish.
func (ms *MemoryStore) Stop() error {
	ms.mu.Lock()
	if ms.cancel == nil {
		ms.mu.Unlock()
		return ErrNotStarted
	}
	cancel := ms.cancel
	ms.cancel = nil
	ms.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		ms.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(ms.shutdownTimeout):
		ms.logger.Warn("rate limit memory store shutdown timeout exceeded",
			logger.Component("ratelimiter"),
			slog.Duration("timeout", ms.shutdownTimeout))
		return fmt.Errorf("shutdown timeout exceeded after %s", ms.shutdownTimeout)
	}
}

// Run provides errgroup compatibility for coordinated lifecycle management.
func (ms *MemoryStore) Run(ctx context.Context) func() error {
	return func() error {
		errCh := make(chan error, 1)
		go func() {
			errCh <- ms.Start(ctx)
		}()

		select {
		case <-ctx.Done():
			_ = ms.Stop()
			<-errCh
			return nil
		case err := <-errCh:
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
	}
}

// Prune removes buckets whose window has ended and returns how many were removed.
func (ms *MemoryStore) Prune() int {
	now := ms.now().Unix()

	ms.mu.Lock()
	defer ms.mu.Unlock()

	removed := 0
	for key, b := range ms.buckets {
		if b.resetAt <= now {
			delete(ms.buckets, key)
			removed++
		}
	}

	if removed > 0 {
		ms.bucketsRemoved.Add(int64(removed))
	}
	return removed
}

// Stats returns current memory store statistics.
func (ms *MemoryStore) Stats() MemoryStoreStats {
	ms.mu.Lock()
	active := len(ms.buckets)
	ms.mu.Unlock()

	return MemoryStoreStats{
		BucketsCreated: ms.bucketsCreated.Load(),
		BucketsRemoved: ms.bucketsRemoved.Load(),
		ActiveBuckets:  active,
		IsRunning:      ms.running.Load(),
	}
}

// Healthcheck reports an error when pruning is configured but not running.
func (ms *MemoryStore) Healthcheck(ctx context.Context) error {
	if ms.pruneInterval > 0 && !ms.running.Load() {
		return fmt.Errorf("%w: prune is configured but not running", ErrStoreUnavailable)
	}
	return nil
}

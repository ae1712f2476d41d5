package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/sharedcontext/core/health"
	"github.com/dmitrymomot/sharedcontext/core/logger"
	"github.com/dmitrymomot/sharedcontext/core/metrics"
	"github.com/dmitrymomot/sharedcontext/core/router"
	"github.com/dmitrymomot/sharedcontext/core/server"
	"github.com/dmitrymomot/sharedcontext/integration/database/pg"
	"github.com/dmitrymomot/sharedcontext/integration/database/redis"
	"github.com/dmitrymomot/sharedcontext/internal/migrations"
	"github.com/dmitrymomot/sharedcontext/internal/repository"
	"github.com/dmitrymomot/sharedcontext/internal/repository/memstore"
	"github.com/dmitrymomot/sharedcontext/internal/repository/pgstore"
	"github.com/dmitrymomot/sharedcontext/internal/service"
	"github.com/dmitrymomot/sharedcontext/pkg/counter"
	"github.com/dmitrymomot/sharedcontext/pkg/ratelimiter"
	"github.com/dmitrymomot/sharedcontext/pkg/vectorizer"
)

// ErrUnknownBackend is returned for an unsupported STORE_BACKEND value.
var ErrUnknownBackend = errors.New("platform: unknown store backend")

// App owns every long-lived dependency of the API: storage, the embedding
// client, the services and the router.
type App struct {
	cfg     Config
	log     *slog.Logger
	now     func() time.Time
	metrics *metrics.Metrics

	pool       *pgxpool.Pool
	redis      *goredis.Client
	limiter    ratelimiter.Store
	memLimiter *ratelimiter.MemoryStore
	counters   counter.Store
	vec        vectorizer.Vectorizer
	checks     []health.Check

	agents        repository.AgentRepository
	contributions repository.ContributionRepository
	feedback      repository.FeedbackRepository

	agentService        *service.AgentService
	contributionService *service.ContributionService
	queryService        *service.QueryService
	feedbackService     *service.FeedbackService
	statsService        *service.StatsService

	router router.Router[*Context]
}

// Option customizes an App before its dependencies are built.
type Option func(*App) error

// WithLogger sets the application logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) error {
		if l == nil {
			return errors.New("logger cannot be nil")
		}
		a.log = l
		return nil
	}
}

// WithVectorizer injects the embedding client instead of building one from
// Config.Embedding.
func WithVectorizer(v vectorizer.Vectorizer) Option {
	return func(a *App) error {
		if v == nil {
			return errors.New("vectorizer cannot be nil")
		}
		a.vec = v
		return nil
	}
}

// WithClock overrides the clock used by rate limiting and record timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *App) error {
		if now == nil {
			return errors.New("clock cannot be nil")
		}
		a.now = now
		return nil
	}
}

// New connects the configured backends, runs migrations when enabled and
// assembles the router. Close releases what New acquired.
func New(ctx context.Context, cfg Config, opts ...Option) (*App, error) {
	a := &App{
		cfg: cfg,
		log: logger.Nop(),
		now: time.Now,
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}

	if cfg.MetricsEnabled {
		a.metrics = metrics.New()
	}

	if err := a.initStores(ctx); err != nil {
		a.Close()
		return nil, err
	}

	if a.vec == nil {
		var observe vectorizer.ObserveFunc
		if a.metrics != nil {
			observe = a.metrics.ObserveEmbedding
		}
		vec, err := vectorizer.New(ctx, cfg.Embedding, a.log.With(logger.Component("vectorizer")), observe)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("embedding client: %w", err)
		}
		a.vec = vec
	}

	svcOpts := []service.Option{service.WithLogger(a.log), service.WithClock(a.now)}
	a.agentService = service.NewAgentService(a.agents, a.contributions, svcOpts...)
	a.contributionService = service.NewContributionService(a.agents, a.contributions, a.vec, svcOpts...)
	a.statsService = service.NewStatsService(a.agents, a.contributions, a.counters)
	a.queryService = service.NewQueryService(a.contributions, a.vec, a.statsService, svcOpts...)
	a.feedbackService = service.NewFeedbackService(a.feedback, svcOpts...)

	a.router = a.routes()
	return a, nil
}

func (a *App) initStores(ctx context.Context) error {
	switch a.cfg.StoreBackend {
	case BackendMemory:
		a.agents = memstore.NewAgents()
		a.contributions = memstore.NewContributions()
		a.feedback = memstore.NewFeedback()
		a.memLimiter = ratelimiter.NewMemoryStore(
			ratelimiter.WithClock(a.now),
			ratelimiter.WithPruneInterval(a.cfg.MemoryPruneInterval),
			ratelimiter.WithMemoryStoreLogger(a.log),
		)
		a.limiter = a.memLimiter
		a.counters = counter.NewMemoryStore()
		a.checks = append(a.checks, health.Check{Name: "ratelimiter", Fn: a.memLimiter.Healthcheck})
		return nil
	case BackendPostgres, BackendRedis:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, a.cfg.StoreBackend)
	}

	pool, err := pg.Connect(ctx, a.cfg.DB)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	a.pool = pool
	a.checks = append(a.checks, health.Check{Name: "postgres", Fn: pg.Healthcheck(pool)})

	if a.cfg.MigrateOnStart {
		if err := pg.Migrate(ctx, pool, a.cfg.DB, migrations.FS, ".", a.log.With(logger.Component("migrations"))); err != nil {
			return err
		}
	}

	a.agents = pgstore.NewAgents(pool)
	a.contributions = pgstore.NewContributions(pool)
	a.feedback = pgstore.NewFeedback(pool)

	if a.cfg.StoreBackend == BackendPostgres {
		a.limiter = ratelimiter.NewPostgresStore(pool, ratelimiter.WithPostgresClock(a.now))
		a.counters = counter.NewPostgresStore(pool)
		return nil
	}

	client, err := redis.Connect(ctx, a.cfg.Redis)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	a.redis = client
	a.checks = append(a.checks, health.Check{Name: "redis", Fn: redis.Healthcheck(client)})
	a.limiter = ratelimiter.NewRedisStore(client,
		ratelimiter.WithRedisPrefix(a.cfg.RedisKeyPrefix+":ratelimit"),
		ratelimiter.WithRedisClock(a.now))
	a.counters = counter.NewRedisStore(client, counter.WithRedisPrefix(a.cfg.RedisKeyPrefix+":counter"))
	return nil
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.router
}

// Run serves HTTP until ctx is cancelled. The memory rate limit store's
// prune loop runs alongside when RATE_LIMIT_MEMORY_PRUNE_INTERVAL is set.
func (a *App) Run(ctx context.Context) error {
	srv, err := server.NewFromConfig(a.cfg.Server.CoverUpstream(a.cfg.Embedding.WorstCase()), server.WithLogger(a.log))
	if err != nil {
		return err
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(srv.Run(ctx, a.Handler()))
	if a.memLimiter != nil && a.cfg.MemoryPruneInterval > 0 {
		eg.Go(a.memLimiter.Run(ctx))
	}
	return eg.Wait()
}

// Close releases database connections.
func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn("failed to close redis client", logger.Component("redis"), logger.Error(err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}

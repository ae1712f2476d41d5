package platform

import (
	"time"

	"github.com/dmitrymomot/sharedcontext/core/server"
	"github.com/dmitrymomot/sharedcontext/integration/database/pg"
	"github.com/dmitrymomot/sharedcontext/integration/database/redis"
	"github.com/dmitrymomot/sharedcontext/pkg/vectorizer"
)

// Storage backends selectable with STORE_BACKEND.
const (
	// BackendMemory keeps everything in process. Single instance only.
	BackendMemory = "memory"
	// BackendPostgres keeps records, rate limits and counters in Postgres.
	BackendPostgres = "postgres"
	// BackendRedis keeps records in Postgres and rate limits and counters in Redis.
	BackendRedis = "redis"
)

// Config is the full service configuration, read from the environment.
type Config struct {
	AppName string `env:"APP_NAME" envDefault:"sharedcontext"`
	Env     string `env:"APP_ENV" envDefault:"development"`

	LogLevel            string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat           string        `env:"LOG_FORMAT" envDefault:"json"`
	LogRequests         bool          `env:"LOG_REQUESTS" envDefault:"false"`
	LogRequestBody      bool          `env:"LOG_REQUEST_BODY" envDefault:"false"`
	LogSlowRequest      time.Duration `env:"LOG_SLOW_REQUEST_THRESHOLD" envDefault:"5s"`
	StoreBackend        string        `env:"STORE_BACKEND" envDefault:"memory"`
	BodyLimitBytes      int64         `env:"BODY_LIMIT_BYTES" envDefault:"51200"`
	MetricsEnabled      bool          `env:"METRICS_ENABLED" envDefault:"true"`
	MemoryPruneInterval time.Duration `env:"RATE_LIMIT_MEMORY_PRUNE_INTERVAL" envDefault:"0"`
	RedisKeyPrefix      string        `env:"REDIS_KEY_PREFIX" envDefault:"sharedcontext"`
	MigrateOnStart      bool          `env:"PG_MIGRATE_ON_START" envDefault:"true"`

	RateLimits RateLimits
	Embedding  vectorizer.Config
	DB         pg.Config
	Redis      redis.Config
	Server     server.Config
}

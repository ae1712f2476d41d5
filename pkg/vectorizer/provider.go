package vectorizer

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Config selects and tunes the embedding provider.
type Config struct {
	Provider   string        `env:"EMBEDDING_PROVIDER" envDefault:"voyage"`
	APIKey     string        `env:"EMBEDDING_API_KEY"`
	Model      string        `env:"EMBEDDING_MODEL"`
	Dimensions int           `env:"EMBEDDING_DIMENSIONS"`
	Endpoint   string        `env:"EMBEDDING_ENDPOINT"`
	MaxRetries int           `env:"EMBEDDING_MAX_RETRIES" envDefault:"2"`
	RetryDelay time.Duration `env:"EMBEDDING_RETRY_DELAY" envDefault:"2s"`
	Timeout    time.Duration `env:"EMBEDDING_TIMEOUT" envDefault:"30s"`
	RateLimit  float64       `env:"EMBEDDING_RATE_LIMIT" envDefault:"0"`
}

// WorstCase is the longest one embedding call can take: every attempt running
// into its timeout, plus the linear backoff between attempts.
func (c Config) WorstCase() time.Duration {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultVoyageTimeout
	}
	retries := max(c.MaxRetries, 0)
	attempts := time.Duration(retries + 1)
	backoff := max(c.RetryDelay, 0) * time.Duration(retries*(retries+1)/2)
	return attempts*timeout + backoff
}

// New builds the provider named by cfg.Provider: voyage, openai or google.
func New(ctx context.Context, cfg Config, log *slog.Logger, observe ObserveFunc) (Vectorizer, error) {
	switch cfg.Provider {
	case "", providerVoyage:
		v, err := NewVoyage(cfg.APIKey,
			WithVoyageModel(cfg.Model),
			WithVoyageDimensions(cfg.Dimensions),
			WithVoyageEndpoint(cfg.Endpoint),
			WithVoyageMaxRetries(cfg.MaxRetries),
			WithVoyageRetryDelay(cfg.RetryDelay),
			WithVoyageTimeout(cfg.Timeout),
			WithVoyageRateLimit(cfg.RateLimit),
			WithVoyageLogger(log),
			WithVoyageObserver(observe),
		)
		if err != nil {
			return nil, err
		}
		return v, nil
	case providerOpenAI:
		opts := []OpenAIOption{
			WithOpenAIBaseURL(cfg.Endpoint),
			WithOpenAIMaxRetries(cfg.MaxRetries),
			WithOpenAIObserver(observe),
		}
		if cfg.Model != "" {
			opts = append(opts, WithOpenAIModel(cfg.Model))
		}
		if cfg.Dimensions > 0 {
			opts = append(opts, WithOpenAIDimensions(cfg.Dimensions))
		}
		v, err := NewOpenAI(cfg.APIKey, opts...)
		if err != nil {
			return nil, err
		}
		return v, nil
	case providerGoogle:
		opts := []GoogleOption{WithGoogleObserver(observe)}
		if cfg.Model != "" {
			opts = append(opts, WithGoogleModel(cfg.Model))
		}
		if cfg.Dimensions > 0 {
			opts = append(opts, WithGoogleDimensions(cfg.Dimensions))
		}
		v, err := NewGoogle(ctx, cfg.APIKey, opts...)
		if err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

package platform

import (
	"log/slog"

	"github.com/dmitrymomot/sharedcontext/core/handler"
	"github.com/dmitrymomot/sharedcontext/core/health"
	"github.com/dmitrymomot/sharedcontext/core/logger"
	"github.com/dmitrymomot/sharedcontext/core/response"
	"github.com/dmitrymomot/sharedcontext/core/router"
	"github.com/dmitrymomot/sharedcontext/middleware"
	"github.com/dmitrymomot/sharedcontext/pkg/ratelimiter"
)

// routes mounts the API under /api/v1. Every endpoint runs the same
// pipeline: body guard, access log, error mapping, then (where applicable)
// authentication, rate limits and body validation before the handler.
func (a *App) routes() router.Router[*Context] {
	global := []handler.Middleware[*Context]{
		middleware.RequestID[*Context](),
		middleware.ClientIP[*Context](),
	}
	if a.metrics != nil {
		global = append(global, middleware.Metrics[*Context](a.metrics))
	}

	r := router.New[*Context](
		router.WithContextFactory(newContext),
		router.WithErrorHandler(response.JSONErrorHandler[*Context]),
		router.WithLogger[*Context](a.log),
		router.WithMiddleware(global...),
	)

	r.Get("/health/live", health.Liveness[*Context])
	r.Get("/health/ready", health.Readiness[*Context](a.log, a.checks...))
	if a.metrics != nil {
		r.Mount("/metrics", a.metrics.Handler())
	}

	rules := a.cfg.RateLimits.Rules()
	limit := func(preset string) handler.Middleware[*Context] {
		return a.rateLimit(rules[preset])
	}
	validate := middleware.ValidateBody[*Context]
	authenticate := middleware.Authenticate[*Context](a.agentService)

	r.Route("/api/v1", func(api router.Router[*Context]) {
		api.Use(
			middleware.BodyLimitWithConfig[*Context](middleware.BodyLimitConfig{
				MaxSize:  a.cfg.BodyLimitBytes,
				OnReject: a.onPayloadRejected,
			}),
			middleware.LoggingWithConfig[*Context](a.loggingConfig()),
			middleware.ErrorMappingWithLogger[*Context](a.log),
		)

		api.Get("/stats", a.stats)
		api.Get("/agents/{id}", a.getAgent)
		api.Get("/agents/{id}/contributions", a.listAgentContributions)
		api.Get("/contributions/{id}", a.getContribution)

		api.With(limit(PresetRegister), validate(registerSchema)).
			Post("/agents", a.registerAgent)

		api.Group(func(authed router.Router[*Context]) {
			authed.Use(authenticate)

			authed.Get("/agents/me", a.currentAgent)

			authed.With(limit(PresetCreateContribution), limit(PresetEmbeddingBudget), validate(createContributionSchema)).
				Post("/contributions", a.createContribution)
			authed.With(limit(PresetUpdateContribution), limit(PresetEmbeddingBudget), validate(updateContributionSchema)).
				Patch("/contributions/{id}", a.updateContribution)
			authed.With(limit(PresetDeleteContribution)).
				Delete("/contributions/{id}", a.deleteContribution)
			authed.With(limit(PresetQuery), limit(PresetEmbeddingBudget), validate(querySchema)).
				Post("/query", a.query)
			authed.With(limit(PresetFeedback), validate(feedbackSchema)).
				Post("/feedback", a.submitFeedback)
		})
	})

	return r
}

// loggingConfig maps the LOG_* settings onto the access logger. The body is
// only logged on the request entry, so LOG_REQUEST_BODY needs LOG_REQUESTS.
func (a *App) loggingConfig() middleware.LoggingConfig {
	return middleware.LoggingConfig{
		Logger:               a.log,
		LogRequest:           a.cfg.LogRequests,
		LogRequestBody:       a.cfg.LogRequests && a.cfg.LogRequestBody,
		SlowRequestThreshold: a.cfg.LogSlowRequest,
	}
}

func (a *App) rateLimit(rule middleware.RateLimitRule) handler.Middleware[*Context] {
	return middleware.RateLimit[*Context](middleware.RateLimitConfig{
		Store: a.limiter,
		Rule:  rule,
		Now:   a.now,
		OnReject: func(ctx handler.Context, hit middleware.RateLimitRule, result ratelimiter.Result) {
			if a.metrics != nil {
				a.metrics.RateLimitRejected.WithLabelValues(hit.Name).Inc()
			}
			a.log.WarnContext(ctx, "rate limit exceeded",
				logger.Component("ratelimit"),
				logger.RateKey(hit.Name),
				slog.Int64("count", result.Count),
				slog.Int64("limit", hit.Max))
		},
	})
}

func (a *App) onPayloadRejected(ctx handler.Context, size int64) {
	if a.metrics != nil {
		a.metrics.PayloadRejected.Inc()
	}
	a.log.WarnContext(ctx, "request body too large",
		logger.Component("bodylimit"),
		slog.Int64("size", size),
		slog.Int64("limit", a.cfg.BodyLimitBytes))
}

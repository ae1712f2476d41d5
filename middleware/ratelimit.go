package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrymomot/sharedcontext/core/handler"
	"github.com/dmitrymomot/sharedcontext/core/response"
	"github.com/dmitrymomot/sharedcontext/pkg/ratelimiter"
)

// Scope selects what a rate limit is keyed on.
type Scope string

const (
	ScopeIP    Scope = "ip"
	ScopeAgent Scope = "agent"
)

// RateLimitRule is one preset: at most Max requests per Window for each
// identity in Scope.
type RateLimitRule struct {
	Name   string
	Scope  Scope
	Window time.Duration
	Max    int64
}

// Key builds the store key for identity, e.g. "agent:abc:query".
func (r RateLimitRule) Key(identity string) string {
	return string(r.Scope) + ":" + identity + ":" + r.Name
}

// RateLimitConfig configures the rate limiting middleware.
type RateLimitConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx handler.Context) bool
	// Store counts hits per fixed window
	Store ratelimiter.Store
	// Rule is the preset enforced by this middleware instance
	Rule RateLimitRule
	// Identify returns the identity to count against. By default agent-scoped
	// rules use the authenticated agent and ip-scoped rules the client IP.
	Identify func(ctx handler.Context) string
	// DisableHeaders suppresses the X-RateLimit-* response headers
	DisableHeaders bool
	// OnReject is called for every rejected request
	OnReject func(ctx handler.Context, rule RateLimitRule, result ratelimiter.Result)
	// Now is the clock used for Retry-After (default: time.Now)
	Now func() time.Time
}

// RateLimit creates a fixed-window rate limiting middleware.
//
// Every request increments the counter for its key; once the count exceeds
// Rule.Max the request short-circuits with 429 RATE_LIMITED and
// details.retryAfter set to the seconds until the window resets.
// Store failures surface as internal errors. Panics on an invalid rule.
func RateLimit[C handler.Context](cfg RateLimitConfig) handler.Middleware[C] {
	if cfg.Store == nil {
		panic("ratelimit middleware: store is required")
	}
	if cfg.Rule.Name == "" || cfg.Rule.Max < 1 || cfg.Rule.Window < time.Second {
		panic(fmt.Sprintf("ratelimit middleware: invalid rule %+v", cfg.Rule))
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Identify == nil {
		cfg.Identify = defaultIdentity(cfg.Rule.Scope)
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			key := cfg.Rule.Key(cfg.Identify(ctx))
			result, err := cfg.Store.Increment(ctx, key, cfg.Rule.Window)
			if err != nil {
				return response.Error(fmt.Errorf("rate limit %s: %w", cfg.Rule.Name, err))
			}

			if result.Count > cfg.Rule.Max {
				if cfg.OnReject != nil {
					cfg.OnReject(ctx, cfg.Rule, result)
				}
				retryAfter := result.RetryAfter(cfg.Now())
				resp := response.Error(response.RateLimited(retryAfter))
				return cfg.withHeaders(resp, result, &retryAfter)
			}

			resp := next(ctx)
			if resp == nil {
				return nil
			}
			return cfg.withHeaders(resp, result, nil)
		}
	}
}

func (cfg RateLimitConfig) withHeaders(resp handler.Response, result ratelimiter.Result, retryAfter *int64) handler.Response {
	if cfg.DisableHeaders {
		return resp
	}
	return func(w http.ResponseWriter, r *http.Request) error {
		h := w.Header()
		h.Set("X-RateLimit-Limit", strconv.FormatInt(cfg.Rule.Max, 10))
		h.Set("X-RateLimit-Remaining", strconv.FormatInt(max(0, cfg.Rule.Max-result.Count), 10))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt, 10))
		if retryAfter != nil {
			h.Set("Retry-After", strconv.FormatInt(*retryAfter, 10))
		}
		return resp(w, r)
	}
}

func defaultIdentity(scope Scope) func(ctx handler.Context) string {
	return func(ctx handler.Context) string {
		if scope == ScopeAgent {
			if id, ok := GetAgentID(ctx); ok {
				return id
			}
		}
		if ip, ok := GetClientIP(ctx); ok && ip != "" {
			return ip
		}
		return ctx.Request().RemoteAddr
	}
}

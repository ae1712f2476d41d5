package platform

import (
	"time"

	"github.com/dmitrymomot/sharedcontext/middleware"
)

// Preset names. They appear in store keys ("agent:<id>:query") and in the
// rate_limit_rejected_total metric.
const (
	PresetRegister           = "register"
	PresetCreateContribution = "createContribution"
	PresetUpdateContribution = "updateContribution"
	PresetDeleteContribution = "deleteContribution"
	PresetQuery              = "query"
	PresetFeedback           = "feedback"
	PresetEmbeddingBudget    = "embeddingBudget"
)

// RateLimits holds the per-endpoint presets. Every window and ceiling can be
// overridden from the environment.
type RateLimits struct {
	RegisterWindow           time.Duration `env:"RATE_LIMIT_REGISTER_WINDOW" envDefault:"1h"`
	RegisterMax              int64         `env:"RATE_LIMIT_REGISTER_MAX" envDefault:"5"`
	CreateContributionWindow time.Duration `env:"RATE_LIMIT_CREATE_CONTRIBUTION_WINDOW" envDefault:"1h"`
	CreateContributionMax    int64         `env:"RATE_LIMIT_CREATE_CONTRIBUTION_MAX" envDefault:"30"`
	UpdateContributionWindow time.Duration `env:"RATE_LIMIT_UPDATE_CONTRIBUTION_WINDOW" envDefault:"1h"`
	UpdateContributionMax    int64         `env:"RATE_LIMIT_UPDATE_CONTRIBUTION_MAX" envDefault:"60"`
	DeleteContributionWindow time.Duration `env:"RATE_LIMIT_DELETE_CONTRIBUTION_WINDOW" envDefault:"1h"`
	DeleteContributionMax    int64         `env:"RATE_LIMIT_DELETE_CONTRIBUTION_MAX" envDefault:"30"`
	QueryWindow              time.Duration `env:"RATE_LIMIT_QUERY_WINDOW" envDefault:"1h"`
	QueryMax                 int64         `env:"RATE_LIMIT_QUERY_MAX" envDefault:"100"`
	FeedbackWindow           time.Duration `env:"RATE_LIMIT_FEEDBACK_WINDOW" envDefault:"1h"`
	FeedbackMax              int64         `env:"RATE_LIMIT_FEEDBACK_MAX" envDefault:"20"`
	EmbeddingBudgetWindow    time.Duration `env:"RATE_LIMIT_EMBEDDING_BUDGET_WINDOW" envDefault:"24h"`
	EmbeddingBudgetMax       int64         `env:"RATE_LIMIT_EMBEDDING_BUDGET_MAX" envDefault:"500"`
}

// DefaultRateLimits returns the presets used when nothing is overridden.
func DefaultRateLimits() RateLimits {
	return RateLimits{
		RegisterWindow:           time.Hour,
		RegisterMax:              5,
		CreateContributionWindow: time.Hour,
		CreateContributionMax:    30,
		UpdateContributionWindow: time.Hour,
		UpdateContributionMax:    60,
		DeleteContributionWindow: time.Hour,
		DeleteContributionMax:    30,
		QueryWindow:              time.Hour,
		QueryMax:                 100,
		FeedbackWindow:           time.Hour,
		FeedbackMax:              20,
		EmbeddingBudgetWindow:    24 * time.Hour,
		EmbeddingBudgetMax:       500,
	}
}

// Rules expands the presets into middleware rules keyed by preset name.
// Registration is limited per client IP, everything else per agent.
func (l RateLimits) Rules() map[string]middleware.RateLimitRule {
	agent := func(name string, window time.Duration, limit int64) middleware.RateLimitRule {
		return middleware.RateLimitRule{Name: name, Scope: middleware.ScopeAgent, Window: window, Max: limit}
	}
	return map[string]middleware.RateLimitRule{
		PresetRegister: {
			Name:   PresetRegister,
			Scope:  middleware.ScopeIP,
			Window: l.RegisterWindow,
			Max:    l.RegisterMax,
		},
		PresetCreateContribution: agent(PresetCreateContribution, l.CreateContributionWindow, l.CreateContributionMax),
		PresetUpdateContribution: agent(PresetUpdateContribution, l.UpdateContributionWindow, l.UpdateContributionMax),
		PresetDeleteContribution: agent(PresetDeleteContribution, l.DeleteContributionWindow, l.DeleteContributionMax),
		PresetQuery:              agent(PresetQuery, l.QueryWindow, l.QueryMax),
		PresetFeedback:           agent(PresetFeedback, l.FeedbackWindow, l.FeedbackMax),
		PresetEmbeddingBudget:    agent(PresetEmbeddingBudget, l.EmbeddingBudgetWindow, l.EmbeddingBudgetMax),
	}
}

// Package repository defines the persistence contracts of the platform.
// memstore implements them in process memory, pgstore on Postgres with
// pgvector.
package repository

import (
	"context"
	"errors"

	"github.com/dmitrymomot/sharedcontext/internal/model"
)

var (
	ErrNotFound = errors.New("repository: record not found")
	ErrConflict = errors.New("repository: record already exists")
)

// Page selects a slice of an ordered listing.
type Page struct {
	Limit  int
	Offset int
}

// SearchOptions filters a vector search. Zero values disable a filter.
type SearchOptions struct {
	MaxResults    int
	MinConfidence float64
	// DomainTags keeps contributions sharing at least one tag.
	DomainTags []string
}

type AgentRepository interface {
	Insert(ctx context.Context, agent *model.Agent) error
	FindByID(ctx context.Context, id string) (*model.Agent, error)
	FindByAPIKeyHash(ctx context.Context, hash string) (*model.Agent, error)
	Count(ctx context.Context) (int64, error)
}

type ContributionRepository interface {
	Insert(ctx context.Context, c *model.Contribution) error
	FindByID(ctx context.Context, id string) (*model.Contribution, error)
	// FindByAgent lists newest first.
	FindByAgent(ctx context.Context, agentID string, page Page) ([]model.Contribution, error)
	CountByAgent(ctx context.Context, agentID string) (int64, error)
	// Update persists the mutable fields; a nil Embedding keeps the stored one.
	Update(ctx context.Context, c *model.Contribution) error
	Delete(ctx context.Context, id string) error
	// VectorSearch ranks by cosine similarity, best first.
	VectorSearch(ctx context.Context, embedding []float32, opts SearchOptions) ([]model.ScoredContribution, error)
	// FindSimilar returns contributions with similarity >= threshold, best first.
	FindSimilar(ctx context.Context, embedding []float32, threshold float64, limit int) ([]model.ScoredContribution, error)
	Count(ctx context.Context) (int64, error)
	// CountDomains counts distinct domain tags across all contributions.
	CountDomains(ctx context.Context) (int64, error)
}

type FeedbackRepository interface {
	Create(ctx context.Context, f *model.Feedback) error
}

package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/dmitrymomot/sharedcontext/core/logger"
	"github.com/dmitrymomot/sharedcontext/internal/model"
	"github.com/dmitrymomot/sharedcontext/internal/repository"
	"github.com/dmitrymomot/sharedcontext/pkg/vectorizer"
)

const (
	MaxQueryLength    = 2000
	DefaultMaxResults = 10
	MaxResultsLimit   = 50
)

// QueryInput is the payload of POST /query.
type QueryInput struct {
	Query         string   `json:"query"`
	MaxResults    int      `json:"maxResults"`
	MinConfidence float64  `json:"minConfidence"`
	DomainTags    []string `json:"domainTags"`
}

// QueryResult is the answer to a semantic query.
type QueryResult struct {
	Query   string                     `json:"query"`
	Results []model.ScoredContribution `json:"results"`
	Count   int                        `json:"count"`
}

// QueryService answers semantic queries against the contribution corpus.
type QueryService struct {
	contributions repository.ContributionRepository
	vec           vectorizer.Vectorizer
	stats         *StatsService
	opts          options
}

func NewQueryService(contributions repository.ContributionRepository, vec vectorizer.Vectorizer, stats *StatsService, opts ...Option) *QueryService {
	return &QueryService{contributions: contributions, vec: vec, stats: stats, opts: newOptions(opts)}
}

// Query embeds the question as a search query and ranks contributions by
// cosine similarity. A failure to bump the served counter is logged only.
func (s *QueryService) Query(ctx context.Context, in QueryInput) (*QueryResult, error) {
	q := strings.TrimSpace(in.Query)
	if q == "" {
		return nil, invalid("query", "query is required")
	}
	if err := tooLong("query", q, MaxQueryLength); err != nil {
		return nil, err
	}

	limit := in.MaxResults
	switch {
	case limit == 0:
		limit = DefaultMaxResults
	case limit < 1 || limit > MaxResultsLimit:
		return nil, invalid("maxResults", fmt.Sprintf("maxResults must be between 1 and %d", MaxResultsLimit))
	}
	if math.IsNaN(in.MinConfidence) || in.MinConfidence < 0 || in.MinConfidence > 1 {
		return nil, invalid("minConfidence", "minConfidence must be between 0 and 1")
	}

	embedding, err := vectorizer.EmbedQuery(ctx, s.vec, q)
	if err != nil {
		return nil, err
	}

	hits, err := s.contributions.VectorSearch(ctx, embedding, repository.SearchOptions{
		MaxResults:    limit,
		MinConfidence: in.MinConfidence,
		DomainTags:    normalizeTags(in.DomainTags),
	})
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	if hits == nil {
		hits = []model.ScoredContribution{}
	}

	if s.stats != nil {
		if err := s.stats.RecordQuery(ctx); err != nil {
			s.opts.log.WarnContext(ctx, "failed to record query",
				logger.Component("query"), logger.Error(err))
		}
	}

	return &QueryResult{Query: q, Results: hits, Count: len(hits)}, nil
}

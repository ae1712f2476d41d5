package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrymomot/sharedcontext/core/logger"
	"github.com/dmitrymomot/sharedcontext/core/response"
	"github.com/dmitrymomot/sharedcontext/internal/model"
	"github.com/dmitrymomot/sharedcontext/internal/repository"
	"github.com/dmitrymomot/sharedcontext/pkg/vectorizer"
)

const (
	MaxClaimLength     = 2000
	MaxTextLength      = 5000
	MaxDomainTags      = 10
	MaxDomainTagLength = 50
	DuplicateThreshold = 0.95
	DefaultPageSize    = 20
	MaxPageSize        = 100
	ownershipMessage   = "You can only modify your own contributions"
)

// ContributionInput is the payload of POST /contributions.
type ContributionInput struct {
	Claim         string   `json:"claim"`
	Reasoning     string   `json:"reasoning"`
	Applicability string   `json:"applicability"`
	Limitations   string   `json:"limitations"`
	Confidence    float64  `json:"confidence"`
	DomainTags    []string `json:"domainTags"`
}

// ContributionPatch is the payload of PATCH /contributions/{id}. Nil fields
// are left unchanged.
type ContributionPatch struct {
	Claim         *string   `json:"claim"`
	Reasoning     *string   `json:"reasoning"`
	Applicability *string   `json:"applicability"`
	Limitations   *string   `json:"limitations"`
	Confidence    *float64  `json:"confidence"`
	DomainTags    *[]string `json:"domainTags"`
}

// ContributionService manages contributions and their embeddings.
type ContributionService struct {
	agents        repository.AgentRepository
	contributions repository.ContributionRepository
	vec           vectorizer.Vectorizer
	opts          options
}

func NewContributionService(
	agents repository.AgentRepository,
	contributions repository.ContributionRepository,
	vec vectorizer.Vectorizer,
	opts ...Option,
) *ContributionService {
	return &ContributionService{
		agents:        agents,
		contributions: contributions,
		vec:           vec,
		opts:          newOptions(opts),
	}
}

// Create validates, embeds and stores a contribution. A stored contribution
// whose embedding is at least DuplicateThreshold similar is a conflict.
func (s *ContributionService) Create(ctx context.Context, agentID string, in ContributionInput) (*model.Contribution, error) {
	now := s.opts.now().UTC()
	c := &model.Contribution{
		ID:            uuid.NewString(),
		AgentID:       agentID,
		Claim:         strings.TrimSpace(in.Claim),
		Reasoning:     strings.TrimSpace(in.Reasoning),
		Applicability: strings.TrimSpace(in.Applicability),
		Limitations:   strings.TrimSpace(in.Limitations),
		Confidence:    in.Confidence,
		DomainTags:    normalizeTags(in.DomainTags),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := validateContribution(c, in.DomainTags); err != nil {
		return nil, err
	}

	embedding, err := s.vec.Embed(ctx, c.EmbeddingText())
	if err != nil {
		return nil, err
	}
	if err := s.rejectDuplicate(ctx, embedding, ""); err != nil {
		return nil, err
	}
	c.Embedding = embedding

	if err := s.contributions.Insert(ctx, c); err != nil {
		return nil, fmt.Errorf("create contribution: %w", err)
	}

	s.opts.log.InfoContext(ctx, "contribution created",
		logger.Component("contributions"),
		logger.Event("contribution.created"),
		logger.AgentID(agentID),
		logger.Key("contribution_id", c.ID))
	return c, nil
}

// Get returns a contribution by id.
func (s *ContributionService) Get(ctx context.Context, id string) (*model.Contribution, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, contributionNotFound(id)
	}
	c, err := s.contributions.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, contributionNotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("get contribution: %w", err)
	}
	return c, nil
}

// ListByAgent lists an agent's contributions, newest first.
func (s *ContributionService) ListByAgent(ctx context.Context, agentID string, page repository.Page) ([]model.Contribution, error) {
	if _, err := s.agents.FindByID(ctx, agentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, response.NotFound(fmt.Sprintf("Agent %q not found", agentID))
		}
		return nil, fmt.Errorf("list contributions: %w", err)
	}

	page = ClampPage(page)
	list, err := s.contributions.FindByAgent(ctx, agentID, page)
	if err != nil {
		return nil, fmt.Errorf("list contributions: %w", err)
	}
	if list == nil {
		list = []model.Contribution{}
	}
	return list, nil
}

// Update applies patch to a contribution owned by agentID. The embedding is
// recomputed only when the claim or the reasoning changed.
func (s *ContributionService) Update(ctx context.Context, agentID, id string, patch ContributionPatch) (*model.Contribution, error) {
	c, err := s.owned(ctx, agentID, id)
	if err != nil {
		return nil, err
	}
	before := c.EmbeddingText()

	if patch.Claim != nil {
		c.Claim = strings.TrimSpace(*patch.Claim)
	}
	if patch.Reasoning != nil {
		c.Reasoning = strings.TrimSpace(*patch.Reasoning)
	}
	if patch.Applicability != nil {
		c.Applicability = strings.TrimSpace(*patch.Applicability)
	}
	if patch.Limitations != nil {
		c.Limitations = strings.TrimSpace(*patch.Limitations)
	}
	if patch.Confidence != nil {
		c.Confidence = *patch.Confidence
	}
	rawTags := c.DomainTags
	if patch.DomainTags != nil {
		rawTags = *patch.DomainTags
		c.DomainTags = normalizeTags(rawTags)
	}
	if err := validateContribution(c, rawTags); err != nil {
		return nil, err
	}

	c.Embedding = nil
	if text := c.EmbeddingText(); text != before {
		embedding, err := s.vec.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		if err := s.rejectDuplicate(ctx, embedding, c.ID); err != nil {
			return nil, err
		}
		c.Embedding = embedding
	}
	c.UpdatedAt = s.opts.now().UTC()

	if err := s.contributions.Update(ctx, c); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, contributionNotFound(id)
		}
		return nil, fmt.Errorf("update contribution: %w", err)
	}
	return c, nil
}

// Delete removes a contribution owned by agentID.
func (s *ContributionService) Delete(ctx context.Context, agentID, id string) error {
	if _, err := s.owned(ctx, agentID, id); err != nil {
		return err
	}
	err := s.contributions.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return contributionNotFound(id)
	}
	if err != nil {
		return fmt.Errorf("delete contribution: %w", err)
	}

	s.opts.log.InfoContext(ctx, "contribution deleted",
		logger.Component("contributions"),
		logger.Event("contribution.deleted"),
		logger.AgentID(agentID),
		logger.Key("contribution_id", id))
	return nil
}

func (s *ContributionService) owned(ctx context.Context, agentID, id string) (*model.Contribution, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.AgentID != agentID {
		return nil, response.Forbidden(ownershipMessage)
	}
	return c, nil
}

func (s *ContributionService) rejectDuplicate(ctx context.Context, embedding []float32, self string) error {
	hits, err := s.contributions.FindSimilar(ctx, embedding, DuplicateThreshold, 2)
	if err != nil {
		return fmt.Errorf("duplicate check: %w", err)
	}
	for _, hit := range hits {
		if hit.ID == self {
			continue
		}
		return response.ErrDuplicateContribution.WithDetails(map[string]any{
			"existingId": hit.ID,
			"similarity": math.Round(hit.Similarity*1000) / 1000,
		})
	}
	return nil
}

func validateContribution(c *model.Contribution, rawTags []string) error {
	if c.Claim == "" {
		return invalid("claim", "claim is required")
	}
	if err := tooLong("claim", c.Claim, MaxClaimLength); err != nil {
		return err
	}
	if err := tooLong("reasoning", c.Reasoning, MaxTextLength); err != nil {
		return err
	}
	if err := tooLong("applicability", c.Applicability, MaxTextLength); err != nil {
		return err
	}
	if err := tooLong("limitations", c.Limitations, MaxTextLength); err != nil {
		return err
	}
	if math.IsNaN(c.Confidence) || c.Confidence < 0 || c.Confidence > 1 {
		return invalid("confidence", "confidence must be between 0 and 1")
	}
	if len(rawTags) > MaxDomainTags {
		return invalid("domainTags", fmt.Sprintf("domainTags must have at most %d items", MaxDomainTags))
	}
	for _, tag := range c.DomainTags {
		if tooLong("domainTags", tag, MaxDomainTagLength) != nil {
			return invalid("domainTags", fmt.Sprintf("each domain tag must be %d characters or less", MaxDomainTagLength))
		}
	}
	return nil
}

// normalizeTags trims and lowercases tags, dropping blanks and duplicates
// while keeping the first-seen order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// ClampPage applies the default and maximum page size.
func ClampPage(p repository.Page) repository.Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

func contributionNotFound(id string) error {
	return response.NotFound(fmt.Sprintf("Contribution %q not found", id))
}

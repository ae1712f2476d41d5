package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrymomot/sharedcontext/core/logger"
	"github.com/dmitrymomot/sharedcontext/core/response"
	"github.com/dmitrymomot/sharedcontext/internal/model"
	"github.com/dmitrymomot/sharedcontext/internal/repository"
	"github.com/dmitrymomot/sharedcontext/pkg/slug"
)

const (
	APIKeyPrefix         = "sc_key_"
	MaxDisplayNameLength = 100
	MaxDescriptionLength = 500
	DefaultTrustScore    = 0.5
	agentIDSuffixLength  = 8
	agentSlugMaxLength   = 48
	apiKeyEntropyBytes   = 32
	maxRegistrationTries = 3
)

// RegisterInput is the payload of POST /agents.
type RegisterInput struct {
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
}

// AgentService registers and authenticates agents.
type AgentService struct {
	agents        repository.AgentRepository
	contributions repository.ContributionRepository
	opts          options
}

func NewAgentService(agents repository.AgentRepository, contributions repository.ContributionRepository, opts ...Option) *AgentService {
	return &AgentService{agents: agents, contributions: contributions, opts: newOptions(opts)}
}

// Register creates an agent and returns its plaintext API key. The key is
// never stored; only its SHA-256 hash is.
func (s *AgentService) Register(ctx context.Context, in RegisterInput) (*model.RegisteredAgent, error) {
	name := strings.TrimSpace(in.DisplayName)
	if name == "" {
		return nil, invalid("displayName", "displayName is required")
	}
	if err := tooLong("displayName", in.DisplayName, MaxDisplayNameLength); err != nil {
		return nil, err
	}
	description := strings.TrimSpace(in.Description)
	if err := tooLong("description", description, MaxDescriptionLength); err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		key, err := NewAPIKey()
		if err != nil {
			return nil, err
		}
		agent := &model.Agent{
			ID:          slug.Make(name, slug.MaxLength(agentSlugMaxLength), slug.WithSuffix(agentIDSuffixLength)),
			APIKeyHash:  HashAPIKey(key),
			DisplayName: name,
			Description: description,
			TrustScore:  DefaultTrustScore,
			CreatedAt:   s.opts.now().UTC(),
		}

		err = s.agents.Insert(ctx, agent)
		if errors.Is(err, repository.ErrConflict) && attempt < maxRegistrationTries {
			s.opts.log.WarnContext(ctx, "agent id collision, retrying",
				logger.Component("agents"), logger.AgentID(agent.ID), logger.Attempt(attempt))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("register agent: %w", err)
		}

		s.opts.log.InfoContext(ctx, "agent registered",
			logger.Component("agents"), logger.Event("agent.registered"), logger.AgentID(agent.ID))

		return &model.RegisteredAgent{
			ID:          agent.ID,
			DisplayName: agent.DisplayName,
			Description: agent.Description,
			APIKey:      key,
		}, nil
	}
}

// Authenticate resolves an API key. Missing and unknown keys both yield
// response.ErrUnauthorized.
func (s *AgentService) Authenticate(ctx context.Context, apiKey string) (*model.Agent, error) {
	if apiKey == "" {
		return nil, response.ErrUnauthorized
	}
	agent, err := s.agents.FindByAPIKeyHash(ctx, HashAPIKey(apiKey))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, response.ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	return agent, nil
}

// Get returns the public profile of an agent.
func (s *AgentService) Get(ctx context.Context, id string) (*model.AgentProfile, error) {
	agent, err := s.agents.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, response.NotFound(fmt.Sprintf("Agent %q not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("get agent: %w", err)
	}

	count, err := s.contributions.CountByAgent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count contributions: %w", err)
	}

	return &model.AgentProfile{
		ID:                agent.ID,
		DisplayName:       agent.DisplayName,
		Description:       agent.Description,
		TrustScore:        agent.TrustScore,
		ContributionCount: count,
		JoinedAt:          agent.CreatedAt,
	}, nil
}

// NewAPIKey returns a fresh key: the prefix followed by 32 random bytes in
// unpadded base64url.
func NewAPIKey() (string, error) {
	b := make([]byte, apiKeyEntropyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}
	return APIKeyPrefix + base64.RawURLEncoding.EncodeToString(b), nil
}

// HashAPIKey returns the hex SHA-256 of key, the form keys are looked up by.
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

package pgstore

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/sharedcontext/integration/database/pg"
	"github.com/dmitrymomot/sharedcontext/internal/model"
	"github.com/dmitrymomot/sharedcontext/internal/repository"
)

const (
	insertAgentSQL = `
		INSERT INTO agents (id, api_key_hash, display_name, description, trust_score, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)`
	selectAgentSQL = `
		SELECT id, api_key_hash, display_name, coalesce(description, ''), trust_score, created_at
		FROM agents`
	countAgentsSQL = `SELECT count(*) FROM agents`
)

// Agents is a Postgres AgentRepository.
type Agents struct {
	db pg.Querier
}

func NewAgents(db pg.Querier) *Agents {
	return &Agents{db: db}
}

func (s *Agents) Insert(ctx context.Context, a *model.Agent) error {
	_, err := pg.Conn(ctx, s.db).Exec(ctx, insertAgentSQL,
		a.ID, a.APIKeyHash, a.DisplayName, a.Description, a.TrustScore, a.CreatedAt)
	if pg.IsDuplicateKeyError(err) {
		return repository.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert agent: %w", err)
	}
	return nil
}

func (s *Agents) FindByID(ctx context.Context, id string) (*model.Agent, error) {
	return s.findOne(ctx, selectAgentSQL+` WHERE id = $1`, id)
}

func (s *Agents) FindByAPIKeyHash(ctx context.Context, hash string) (*model.Agent, error) {
	return s.findOne(ctx, selectAgentSQL+` WHERE api_key_hash = $1`, hash)
}

func (s *Agents) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := pg.Conn(ctx, s.db).QueryRow(ctx, countAgentsSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("count agents: %w", err)
	}
	return n, nil
}

func (s *Agents) findOne(ctx context.Context, query string, arg string) (*model.Agent, error) {
	var a model.Agent
	err := pg.Conn(ctx, s.db).QueryRow(ctx, query, arg).
		Scan(&a.ID, &a.APIKeyHash, &a.DisplayName, &a.Description, &a.TrustScore, &a.CreatedAt)
	if pg.IsNotFoundError(err) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find agent: %w", err)
	}
	return &a, nil
}

package pgstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/sharedcontext/integration/database/pg"
	"github.com/dmitrymomot/sharedcontext/internal/model"
	"github.com/dmitrymomot/sharedcontext/internal/repository"
)

const contributionColumns = `
	id::text, agent_id, claim, coalesce(reasoning, ''), coalesce(applicability, ''),
	coalesce(limitations, ''), confidence, domain_tags, created_at, updated_at`

const (
	insertContributionSQL = `
		INSERT INTO contributions
			(id, agent_id, claim, reasoning, applicability, limitations,
			 confidence, domain_tags, embedding, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''),
			$7, $8, $9::vector, $10, $11)`
	selectContributionSQL = `SELECT ` + contributionColumns + `, embedding::text FROM contributions WHERE id = $1`
	listByAgentSQL        = `
		SELECT ` + contributionColumns + `
		FROM contributions
		WHERE agent_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	countByAgentSQL       = `SELECT count(*) FROM contributions WHERE agent_id = $1`
	updateContributionSQL = `
		UPDATE contributions SET
			claim = $2,
			reasoning = NULLIF($3, ''),
			applicability = NULLIF($4, ''),
			limitations = NULLIF($5, ''),
			confidence = $6,
			domain_tags = $7,
			embedding = coalesce($8::vector, embedding),
			updated_at = $9
		WHERE id = $1`
	deleteContributionSQL = `DELETE FROM contributions WHERE id = $1`
	vectorSearchSQL       = `
		SELECT ` + contributionColumns + `, 1 - (embedding <=> $1::vector) AS similarity
		FROM contributions
		WHERE confidence >= $2
		  AND (cardinality($3::text[]) = 0 OR domain_tags && $3::text[])
		ORDER BY embedding <=> $1::vector, id
		LIMIT $4`
	findSimilarSQL = `
		SELECT ` + contributionColumns + `, 1 - (embedding <=> $1::vector) AS similarity
		FROM contributions
		WHERE 1 - (embedding <=> $1::vector) >= $2
		ORDER BY embedding <=> $1::vector, id
		LIMIT $3`
	countContributionsSQL = `SELECT count(*) FROM contributions`
	countDomainsSQL       = `SELECT count(DISTINCT tag) FROM contributions, unnest(domain_tags) AS tag`
)

// Contributions is a Postgres ContributionRepository.
type Contributions struct {
	db pg.Querier
}

func NewContributions(db pg.Querier) *Contributions {
	return &Contributions{db: db}
}

func (s *Contributions) Insert(ctx context.Context, c *model.Contribution) error {
	_, err := pg.Conn(ctx, s.db).Exec(ctx, insertContributionSQL,
		c.ID, c.AgentID, c.Claim, c.Reasoning, c.Applicability, c.Limitations,
		c.Confidence, tags(c.DomainTags), vectorLiteral(c.Embedding), c.CreatedAt, c.UpdatedAt)
	if pg.IsDuplicateKeyError(err) {
		return repository.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert contribution: %w", err)
	}
	return nil
}

func (s *Contributions) FindByID(ctx context.Context, id string) (*model.Contribution, error) {
	var (
		c   model.Contribution
		vec string
	)
	dest := append(scanTargets(&c), &vec)
	err := pg.Conn(ctx, s.db).QueryRow(ctx, selectContributionSQL, id).Scan(dest...)
	if pg.IsNotFoundError(err) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find contribution: %w", err)
	}
	if c.Embedding, err = parseVector(vec); err != nil {
		return nil, fmt.Errorf("parse embedding of %s: %w", id, err)
	}
	return &c, nil
}

func (s *Contributions) FindByAgent(ctx context.Context, agentID string, page repository.Page) ([]model.Contribution, error) {
	var limit any
	if page.Limit > 0 {
		limit = page.Limit
	}
	rows, err := pg.Conn(ctx, s.db).Query(ctx, listByAgentSQL, agentID, limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("list contributions: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Contribution, error) {
		var c model.Contribution
		err := row.Scan(scanTargets(&c)...)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("list contributions: %w", err)
	}
	return out, nil
}

func (s *Contributions) CountByAgent(ctx context.Context, agentID string) (int64, error) {
	return s.count(ctx, countByAgentSQL, agentID)
}

func (s *Contributions) Update(ctx context.Context, c *model.Contribution) error {
	var vec *string
	if c.Embedding != nil {
		lit := vectorLiteral(c.Embedding)
		vec = &lit
	}
	tag, err := pg.Conn(ctx, s.db).Exec(ctx, updateContributionSQL,
		c.ID, c.Claim, c.Reasoning, c.Applicability, c.Limitations,
		c.Confidence, tags(c.DomainTags), vec, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update contribution: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Contributions) Delete(ctx context.Context, id string) error {
	tag, err := pg.Conn(ctx, s.db).Exec(ctx, deleteContributionSQL, id)
	if err != nil {
		return fmt.Errorf("delete contribution: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Contributions) VectorSearch(ctx context.Context, embedding []float32, opts repository.SearchOptions) ([]model.ScoredContribution, error) {
	var limit any
	if opts.MaxResults > 0 {
		limit = opts.MaxResults
	}
	return s.scored(ctx, vectorSearchSQL,
		vectorLiteral(embedding), opts.MinConfidence, tags(opts.DomainTags), limit)
}

func (s *Contributions) FindSimilar(ctx context.Context, embedding []float32, threshold float64, limit int) ([]model.ScoredContribution, error) {
	var lim any
	if limit > 0 {
		lim = limit
	}
	return s.scored(ctx, findSimilarSQL, vectorLiteral(embedding), threshold, lim)
}

func (s *Contributions) Count(ctx context.Context) (int64, error) {
	return s.count(ctx, countContributionsSQL)
}

func (s *Contributions) CountDomains(ctx context.Context) (int64, error) {
	return s.count(ctx, countDomainsSQL)
}

func (s *Contributions) scored(ctx context.Context, query string, args ...any) ([]model.ScoredContribution, error) {
	rows, err := pg.Conn(ctx, s.db).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search contributions: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.ScoredContribution, error) {
		var sc model.ScoredContribution
		err := row.Scan(append(scanTargets(&sc.Contribution), &sc.Similarity)...)
		return sc, err
	})
	if err != nil {
		return nil, fmt.Errorf("search contributions: %w", err)
	}
	return out, nil
}

func (s *Contributions) count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	if err := pg.Conn(ctx, s.db).QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count contributions: %w", err)
	}
	return n, nil
}

func scanTargets(c *model.Contribution) []any {
	return []any{
		&c.ID, &c.AgentID, &c.Claim, &c.Reasoning, &c.Applicability,
		&c.Limitations, &c.Confidence, &c.DomainTags, &c.CreatedAt, &c.UpdatedAt,
	}
}

// tags never returns nil so the column default and array operators see '{}'.
func tags(t []string) []string {
	if t == nil {
		return []string{}
	}
	return t
}

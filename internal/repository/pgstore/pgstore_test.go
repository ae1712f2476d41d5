package pgstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sharedcontext/internal/model"
	"github.com/dmitrymomot/sharedcontext/internal/repository"
	"github.com/dmitrymomot/sharedcontext/internal/repository/pgstore"
	"github.com/dmitrymomot/sharedcontext/internal/testutil"
)

func TestPostgresRepositories(t *testing.T) {
	pool := testutil.Postgres(t)
	ctx := context.Background()

	agents := pgstore.NewAgents(pool)
	contributions := pgstore.NewContributions(pool)
	feedback := pgstore.NewFeedback(pool)

	now := time.Now().UTC().Truncate(time.Microsecond)
	agentID := "pg-test-" + uuid.NewString()[:8]
	agent := &model.Agent{
		ID:          agentID,
		APIKeyHash:  "hash-" + agentID,
		DisplayName: "PG Test",
		TrustScore:  0.5,
		CreatedAt:   now,
	}
	require.NoError(t, agents.Insert(ctx, agent))
	assert.ErrorIs(t, agents.Insert(ctx, agent), repository.ErrConflict)

	got, err := agents.FindByAPIKeyHash(ctx, agent.APIKeyHash)
	require.NoError(t, err)
	assert.Equal(t, agentID, got.ID)
	assert.Empty(t, got.Description)

	_, err = agents.FindByID(ctx, "missing-"+agentID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	tag := "tag-" + agentID
	c := &model.Contribution{
		ID:         uuid.NewString(),
		AgentID:    agentID,
		Claim:      "pgvector ranks by cosine distance",
		Confidence: 0.8,
		DomainTags: []string{tag},
		Embedding:  []float32{0.6, 0.8, 0},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, contributions.Insert(ctx, c))

	stored, err := contributions.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.Claim, stored.Claim)
	assert.Equal(t, c.Embedding, stored.Embedding)

	hits, err := contributions.VectorSearch(ctx, []float32{0.6, 0.8, 0}, repository.SearchOptions{
		MaxResults: 5,
		DomainTags: []string{tag},
	})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-5)

	similar, err := contributions.FindSimilar(ctx, []float32{0.6, 0.8, 0}, 0.95, 1)
	require.NoError(t, err)
	assert.NotEmpty(t, similar)

	stored.Claim = "updated claim"
	stored.Embedding = nil
	require.NoError(t, contributions.Update(ctx, stored))
	again, err := contributions.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "updated claim", again.Claim)
	assert.Equal(t, c.Embedding, again.Embedding)

	list, err := contributions.FindByAgent(ctx, agentID, repository.Page{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	n, err := contributions.CountByAgent(ctx, agentID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, feedback.Create(ctx, &model.Feedback{
		ID:        uuid.NewString(),
		AgentID:   agentID,
		Message:   "works",
		Category:  model.FeedbackGeneral,
		Context:   map[string]any{"k": "v"},
		Status:    model.FeedbackStatusNew,
		CreatedAt: now,
	}))

	require.NoError(t, contributions.Delete(ctx, c.ID))
	assert.ErrorIs(t, contributions.Delete(ctx, c.ID), repository.ErrNotFound)
}

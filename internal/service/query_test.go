package service_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sharedcontext/core/response"
	"github.com/dmitrymomot/sharedcontext/internal/service"
)

func TestQueryService_Query(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newEnv(t)
	agent := e.register(t, "Asker")

	for _, claim := range []string{"alpha", "beta", "gamma"} {
		_, err := e.Contributions.Create(ctx, agent, service.ContributionInput{
			Claim:      claim,
			Confidence: 0.7,
			DomainTags: []string{claim},
		})
		require.NoError(t, err)
	}

	// "alpha" embeds to the same vector as the stored contribution.
	res, err := e.Query.Query(ctx, service.QueryInput{Query: " alpha "})
	require.NoError(t, err)
	assert.Equal(t, "alpha", res.Query)
	require.Equal(t, 3, res.Count)
	assert.Equal(t, "alpha", res.Results[0].Claim)
	assert.InDelta(t, 1.0, res.Results[0].Similarity, 1e-9)
	assert.Equal(t, []string{"alpha"}, e.vec.queries, "queries use the query embedding")

	res, err = e.Query.Query(ctx, service.QueryInput{Query: "alpha", MaxResults: 1, DomainTags: []string{"BETA"}})
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "beta", res.Results[0].Claim)

	res, err = e.Query.Query(ctx, service.QueryInput{Query: "alpha", MinConfidence: 0.9})
	require.NoError(t, err)
	assert.NotNil(t, res.Results)
	assert.Empty(t, res.Results)

	served, err := e.counters.Get(ctx, service.QueriesServedKey)
	require.NoError(t, err)
	assert.Equal(t, int64(3), served)
}

func TestQueryService_Validation(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	tests := []struct {
		name  string
		input service.QueryInput
		field string
	}{
		{"empty", service.QueryInput{}, "query"},
		{"blank", service.QueryInput{Query: "  "}, "query"},
		{"too long", service.QueryInput{Query: strings.Repeat("q", 2001)}, "query"},
		{"max results too big", service.QueryInput{Query: "q", MaxResults: 51}, "maxResults"},
		{"max results negative", service.QueryInput{Query: "q", MaxResults: -1}, "maxResults"},
		{"confidence", service.QueryInput{Query: "q", MinConfidence: 1.5}, "minConfidence"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Query.Query(context.Background(), tt.input)
			he := requireHTTPError(t, err, http.StatusBadRequest, response.CodeInvalidRequest)
			assert.Equal(t, tt.field, he.Details["field"])
		})
	}

	served, err := e.counters.Get(context.Background(), service.QueriesServedKey)
	require.NoError(t, err)
	assert.Zero(t, served)
}

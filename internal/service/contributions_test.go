package service_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sharedcontext/core/response"
	"github.com/dmitrymomot/sharedcontext/internal/repository"
	"github.com/dmitrymomot/sharedcontext/internal/service"
	"github.com/dmitrymomot/sharedcontext/pkg/vectorizer"
)

func ptr[T any](v T) *T { return &v }

func TestContributionService_Create(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newEnv(t)
	agent := e.register(t, "Writer")

	c, err := e.Contributions.Create(ctx, agent, service.ContributionInput{
		Claim:      " Indexes speed up reads ",
		Reasoning:  "B-trees",
		Confidence: 0.8,
		DomainTags: []string{"DB", " db ", "perf", ""},
	})
	require.NoError(t, err)
	assert.Equal(t, "Indexes speed up reads", c.Claim)
	assert.Equal(t, []string{"db", "perf"}, c.DomainTags)
	assert.Equal(t, agent, c.AgentID)
	assert.Equal(t, []string{"Indexes speed up reads\n\nB-trees"}, e.vec.embeds)

	got, err := e.Contributions.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, got.Embedding, dims)
}

func TestContributionService_CreateDuplicate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newEnv(t)
	agent := e.register(t, "Dup")

	in := service.ContributionInput{Claim: "same claim", Confidence: 0.5}
	first, err := e.Contributions.Create(ctx, agent, in)
	require.NoError(t, err)

	_, err = e.Contributions.Create(ctx, agent, in)
	he := requireHTTPError(t, err, http.StatusConflict, response.CodeDuplicateContribution)
	assert.Equal(t, first.ID, he.Details["existingId"])

	n, err := e.contributions.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestContributionService_CreateValidation(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	agent := e.register(t, "Validator")

	tooManyTags := make([]string, 11)
	for i := range tooManyTags {
		tooManyTags[i] = strings.Repeat("t", i+1)
	}

	tests := []struct {
		name  string
		input service.ContributionInput
		field string
	}{
		{"missing claim", service.ContributionInput{Confidence: 0.5}, "claim"},
		{"long claim", service.ContributionInput{Claim: strings.Repeat("c", 2001), Confidence: 0.5}, "claim"},
		{"long reasoning", service.ContributionInput{Claim: "x", Reasoning: strings.Repeat("r", 5001)}, "reasoning"},
		{"long limitations", service.ContributionInput{Claim: "x", Limitations: strings.Repeat("l", 5001)}, "limitations"},
		{"confidence above", service.ContributionInput{Claim: "x", Confidence: 1.01}, "confidence"},
		{"confidence below", service.ContributionInput{Claim: "x", Confidence: -0.1}, "confidence"},
		{"too many tags", service.ContributionInput{Claim: "x", DomainTags: tooManyTags}, "domainTags"},
		{"long tag", service.ContributionInput{Claim: "x", DomainTags: []string{strings.Repeat("t", 51)}}, "domainTags"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Contributions.Create(context.Background(), agent, tt.input)
			he := requireHTTPError(t, err, http.StatusBadRequest, response.CodeInvalidRequest)
			assert.Equal(t, tt.field, he.Details["field"])
		})
	}
	assert.Zero(t, e.vec.embedCalls(), "validation runs before embedding")
}

func TestContributionService_EmbeddingFailure(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	agent := e.register(t, "Unlucky")
	e.vec.err = &vectorizer.Error{Provider: "voyage", Status: 503, Detail: "down", Attempts: 3, Retryable: true, Type: vectorizer.TypeHTTP}

	_, err := e.Contributions.Create(context.Background(), agent, service.ContributionInput{Claim: "x", Confidence: 0.5})
	var verr *vectorizer.Error
	require.ErrorAs(t, err, &verr)

	he, ok := response.Convert(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, he.Status)
	assert.Equal(t, response.CodeEmbedding, he.Code)
}

func TestContributionService_Update(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newEnv(t)
	owner := e.register(t, "Owner")
	other := e.register(t, "Other")

	c, err := e.Contributions.Create(ctx, owner, service.ContributionInput{Claim: "original", Confidence: 0.5})
	require.NoError(t, err)
	calls := e.vec.embedCalls()

	_, err = e.Contributions.Update(ctx, other, c.ID, service.ContributionPatch{Confidence: ptr(0.9)})
	he := requireHTTPError(t, err, http.StatusForbidden, response.CodeForbidden)
	assert.Equal(t, "You can only modify your own contributions", he.Message)

	updated, err := e.Contributions.Update(ctx, owner, c.ID, service.ContributionPatch{
		Confidence: ptr(0.9),
		DomainTags: ptr([]string{"go"}),
	})
	require.NoError(t, err)
	assert.Equal(t, 0.9, updated.Confidence)
	assert.Equal(t, calls, e.vec.embedCalls(), "metadata change keeps the embedding")

	stored, err := e.Contributions.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Embedding, dims)
	before := stored.Embedding

	_, err = e.Contributions.Update(ctx, owner, c.ID, service.ContributionPatch{Claim: ptr("rewritten")})
	require.NoError(t, err)
	assert.Equal(t, calls+1, e.vec.embedCalls())

	stored, err = e.Contributions.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.NotEqual(t, before, stored.Embedding)

	_, err = e.Contributions.Update(ctx, owner, c.ID, service.ContributionPatch{Confidence: ptr(2.0)})
	requireHTTPError(t, err, http.StatusBadRequest, response.CodeInvalidRequest)
}

func TestContributionService_Delete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newEnv(t)
	owner := e.register(t, "Owner")
	other := e.register(t, "Other")

	c, err := e.Contributions.Create(ctx, owner, service.ContributionInput{Claim: "short lived", Confidence: 0.5})
	require.NoError(t, err)

	err = e.Contributions.Delete(ctx, other, c.ID)
	requireHTTPError(t, err, http.StatusForbidden, response.CodeForbidden)

	require.NoError(t, e.Contributions.Delete(ctx, owner, c.ID))

	_, err = e.Contributions.Get(ctx, c.ID)
	requireHTTPError(t, err, http.StatusNotFound, response.CodeNotFound)

	err = e.Contributions.Delete(ctx, owner, c.ID)
	requireHTTPError(t, err, http.StatusNotFound, response.CodeNotFound)
}

func TestContributionService_GetMalformedID(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	_, err := e.Contributions.Get(context.Background(), "not-a-uuid")
	requireHTTPError(t, err, http.StatusNotFound, response.CodeNotFound)
}

func TestContributionService_ListByAgent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newEnv(t)
	agent := e.register(t, "Lister")

	for _, claim := range []string{"a", "b", "c"} {
		_, err := e.Contributions.Create(ctx, agent, service.ContributionInput{Claim: claim, Confidence: 0.5})
		require.NoError(t, err)
	}

	list, err := e.Contributions.ListByAgent(ctx, agent, repository.Page{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = e.Contributions.ListByAgent(ctx, agent, repository.Page{Offset: 10})
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	_, err = e.Contributions.ListByAgent(ctx, "ghost", repository.Page{})
	requireHTTPError(t, err, http.StatusNotFound, response.CodeNotFound)
}

func TestClampPage(t *testing.T) {
	t.Parallel()
	assert.Equal(t, repository.Page{Limit: service.DefaultPageSize}, service.ClampPage(repository.Page{}))
	assert.Equal(t, repository.Page{Limit: service.MaxPageSize, Offset: 0}, service.ClampPage(repository.Page{Limit: 1000, Offset: -5}))
}

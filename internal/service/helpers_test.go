package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sharedcontext/core/response"
	"github.com/dmitrymomot/sharedcontext/internal/repository/memstore"
	"github.com/dmitrymomot/sharedcontext/internal/service"
	"github.com/dmitrymomot/sharedcontext/pkg/counter"
)

const dims = 64

// fakeVectorizer gives every distinct text its own one-hot vector, so equal
// texts are identical (similarity 1) and different texts are orthogonal.
type fakeVectorizer struct {
	mu      sync.Mutex
	vectors map[string][]float32
	embeds  []string
	queries []string
	err     error
}

func newFakeVectorizer() *fakeVectorizer {
	return &fakeVectorizer{vectors: make(map[string][]float32)}
}

func (f *fakeVectorizer) vector(text string) []float32 {
	if v, ok := f.vectors[text]; ok {
		return v
	}
	v := make([]float32, dims)
	v[len(f.vectors)%dims] = 1
	f.vectors[text] = v
	return v
}

func (f *fakeVectorizer) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.embeds = append(f.embeds, text)
	if f.err != nil {
		return nil, f.err
	}
	return f.vector(text), nil
}

func (f *fakeVectorizer) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, text)
	if f.err != nil {
		return nil, f.err
	}
	return f.vector(text), nil
}

func (f *fakeVectorizer) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := f.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (f *fakeVectorizer) Dimensions() int { return dims }

func (f *fakeVectorizer) embedCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.embeds)
}

type env struct {
	agents        *memstore.Agents
	contributions *memstore.Contributions
	feedback      *memstore.Feedback
	counters      *counter.MemoryStore
	vec           *fakeVectorizer

	Agents        *service.AgentService
	Contributions *service.ContributionService
	Query         *service.QueryService
	Feedback      *service.FeedbackService
	Stats         *service.StatsService
}

var fixedNow = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		agents:        memstore.NewAgents(),
		contributions: memstore.NewContributions(),
		feedback:      memstore.NewFeedback(),
		counters:      counter.NewMemoryStore(),
		vec:           newFakeVectorizer(),
	}
	clock := service.WithClock(func() time.Time { return fixedNow })
	e.Agents = service.NewAgentService(e.agents, e.contributions, clock)
	e.Contributions = service.NewContributionService(e.agents, e.contributions, e.vec, clock)
	e.Stats = service.NewStatsService(e.agents, e.contributions, e.counters)
	e.Query = service.NewQueryService(e.contributions, e.vec, e.Stats)
	e.Feedback = service.NewFeedbackService(e.feedback, clock)
	return e
}

func (e *env) register(t *testing.T, name string) string {
	t.Helper()
	reg, err := e.Agents.Register(context.Background(), service.RegisterInput{DisplayName: name})
	require.NoError(t, err)
	return reg.ID
}

func requireHTTPError(t *testing.T, err error, status int, code string) response.HTTPError {
	t.Helper()
	require.Error(t, err)
	var he response.HTTPError
	require.True(t, errors.As(err, &he), "expected HTTPError, got %T: %v", err, err)
	require.Equal(t, status, he.Status)
	require.Equal(t, code, he.Code)
	return he
}

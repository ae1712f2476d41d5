// Package memstore implements the repositories in process memory.
// It backs STORE_BACKEND=memory and the service tests.
package memstore

import (
	"context"
	"math"
	"slices"
	"sort"
	"sync"

	"github.com/dmitrymomot/sharedcontext/internal/model"
	"github.com/dmitrymomot/sharedcontext/internal/repository"
)

// Agents is an in-memory AgentRepository.
type Agents struct {
	mu     sync.RWMutex
	byID   map[string]*model.Agent
	byHash map[string]string
}

func NewAgents() *Agents {
	return &Agents{
		byID:   make(map[string]*model.Agent),
		byHash: make(map[string]string),
	}
}

func (s *Agents) Insert(_ context.Context, a *model.Agent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[a.ID]; exists {
		return repository.ErrConflict
	}
	if _, exists := s.byHash[a.APIKeyHash]; exists {
		return repository.ErrConflict
	}
	cp := *a
	s.byID[a.ID] = &cp
	s.byHash[a.APIKeyHash] = a.ID
	return nil
}

func (s *Agents) FindByID(_ context.Context, id string) (*model.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *Agents) FindByAPIKeyHash(ctx context.Context, hash string) (*model.Agent, error) {
	s.mu.RLock()
	id, ok := s.byHash[hash]
	s.mu.RUnlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s.FindByID(ctx, id)
}

func (s *Agents) Count(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.byID)), nil
}

// Contributions is an in-memory ContributionRepository. Searches are a
// linear cosine scan.
type Contributions struct {
	mu   sync.RWMutex
	byID map[string]*model.Contribution
}

func NewContributions() *Contributions {
	return &Contributions{byID: make(map[string]*model.Contribution)}
}

func (s *Contributions) Insert(_ context.Context, c *model.Contribution) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[c.ID]; exists {
		return repository.ErrConflict
	}
	s.byID[c.ID] = clone(c)
	return nil
}

func (s *Contributions) FindByID(_ context.Context, id string) (*model.Contribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(c), nil
}

func (s *Contributions) FindByAgent(_ context.Context, agentID string, page repository.Page) ([]model.Contribution, error) {
	s.mu.RLock()
	var out []model.Contribution
	for _, c := range s.byID {
		if c.AgentID == agentID {
			out = append(out, *clone(c))
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if page.Offset >= len(out) {
		return []model.Contribution{}, nil
	}
	out = out[page.Offset:]
	if page.Limit > 0 && len(out) > page.Limit {
		out = out[:page.Limit]
	}
	return out, nil
}

func (s *Contributions) CountByAgent(_ context.Context, agentID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, c := range s.byID {
		if c.AgentID == agentID {
			n++
		}
	}
	return n, nil
}

func (s *Contributions) Update(_ context.Context, c *model.Contribution) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.byID[c.ID]
	if !ok {
		return repository.ErrNotFound
	}
	next := clone(c)
	if next.Embedding == nil {
		next.Embedding = cur.Embedding
	}
	s.byID[c.ID] = next
	return nil
}

func (s *Contributions) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *Contributions) VectorSearch(_ context.Context, embedding []float32, opts repository.SearchOptions) ([]model.ScoredContribution, error) {
	return s.scan(embedding, opts.MaxResults, func(c *model.Contribution, _ float64) bool {
		if c.Confidence < opts.MinConfidence {
			return false
		}
		if len(opts.DomainTags) == 0 {
			return true
		}
		return slices.ContainsFunc(c.DomainTags, func(tag string) bool {
			return slices.Contains(opts.DomainTags, tag)
		})
	}), nil
}

func (s *Contributions) FindSimilar(_ context.Context, embedding []float32, threshold float64, limit int) ([]model.ScoredContribution, error) {
	return s.scan(embedding, limit, func(_ *model.Contribution, sim float64) bool {
		return sim >= threshold
	}), nil
}

func (s *Contributions) Count(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.byID)), nil
}

func (s *Contributions) CountDomains(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, c := range s.byID {
		for _, tag := range c.DomainTags {
			seen[tag] = struct{}{}
		}
	}
	return int64(len(seen)), nil
}

func (s *Contributions) scan(embedding []float32, limit int, keep func(*model.Contribution, float64) bool) []model.ScoredContribution {
	s.mu.RLock()
	out := make([]model.ScoredContribution, 0)
	for _, c := range s.byID {
		sim := Cosine(embedding, c.Embedding)
		if keep(c, sim) {
			out = append(out, model.ScoredContribution{Contribution: *clone(c), Similarity: sim})
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Similarity == out[j].Similarity {
			return out[i].ID < out[j].ID
		}
		return out[i].Similarity > out[j].Similarity
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Cosine returns the cosine similarity of a and b, or 0 when the vectors
// differ in length or either is zero.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func clone(c *model.Contribution) *model.Contribution {
	cp := *c
	cp.DomainTags = slices.Clone(c.DomainTags)
	cp.Embedding = slices.Clone(c.Embedding)
	return &cp
}

// Feedback is an in-memory FeedbackRepository.
type Feedback struct {
	mu    sync.Mutex
	items []model.Feedback
}

func NewFeedback() *Feedback {
	return &Feedback{}
}

func (s *Feedback) Create(_ context.Context, f *model.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, *f)
	return nil
}

// All returns a copy of the stored feedback in submission order.
func (s *Feedback) All() []model.Feedback {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

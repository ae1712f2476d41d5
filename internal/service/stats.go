package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/sharedcontext/internal/model"
	"github.com/dmitrymomot/sharedcontext/internal/repository"
	"github.com/dmitrymomot/sharedcontext/pkg/counter"
)

// QueriesServedKey is the counter incremented once per answered query.
const QueriesServedKey = "queries_served"

// StatsService aggregates the public platform counters.
type StatsService struct {
	agents        repository.AgentRepository
	contributions repository.ContributionRepository
	counters      counter.Store
}

func NewStatsService(agents repository.AgentRepository, contributions repository.ContributionRepository, counters counter.Store) *StatsService {
	return &StatsService{agents: agents, contributions: contributions, counters: counters}
}

// Stats reads all counters concurrently.
func (s *StatsService) Stats(ctx context.Context) (*model.PlatformStats, error) {
	var st model.PlatformStats
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		st.Molters, err = s.agents.Count(ctx)
		return err
	})
	eg.Go(func() (err error) {
		st.Insights, err = s.contributions.Count(ctx)
		return err
	})
	eg.Go(func() (err error) {
		st.Domains, err = s.contributions.CountDomains(ctx)
		return err
	})
	eg.Go(func() (err error) {
		st.QueriesServed, err = s.counters.Get(ctx, QueriesServedKey)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("platform stats: %w", err)
	}
	return &st, nil
}

// RecordQuery increments the queries-served counter.
func (s *StatsService) RecordQuery(ctx context.Context) error {
	if _, err := counter.IncrementOne(ctx, s.counters, QueriesServedKey); err != nil {
		return fmt.Errorf("record query: %w", err)
	}
	return nil
}

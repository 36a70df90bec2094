package infra

import (
	"context"
	"sync"

	"dbsession-middleware/middleware/dbsession/domain"
)

type Counters struct {
	Commits      int64
	CommitErrors int64
	Rollbacks    int64
	Releases     int64
	Rejects      int64
}

func (c *Counters) bump(outcome domain.Outcome) {
	switch outcome {
	case domain.OutcomeCommit:
		c.Commits++
	case domain.OutcomeCommitError:
		c.CommitErrors++
	case domain.OutcomeRollback:
		c.Rollbacks++
	case domain.OutcomeRelease:
		c.Releases++
	case domain.OutcomeReject:
		c.Rejects++
	}
}

// MemoryStatsStore é uma implementação simples em memória.
// Útil para testes e desenvolvimento.
//
// Não faz expiração e não é indicada para produção.
type MemoryStatsStore struct {
	mu      sync.Mutex
	total   Counters
	byRoute map[string]Counters

	trackRoutes bool
}

type MemoryStatsOption func(*MemoryStatsStore)

// WithTrackRoutes habilita contadores por rota (method + path).
func WithTrackRoutes(track bool) MemoryStatsOption {
	return func(s *MemoryStatsStore) { s.trackRoutes = track }
}

func NewMemoryStatsStore(opts ...MemoryStatsOption) *MemoryStatsStore {
	s := &MemoryStatsStore{
		byRoute: make(map[string]Counters),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	route := ev.Method + " " + ev.Path

	s.mu.Lock()
	defer s.mu.Unlock()

	s.total.bump(ev.Outcome)
	if s.trackRoutes {
		c := s.byRoute[route]
		c.bump(ev.Outcome)
		s.byRoute[route] = c
	}
	return nil
}

func (s *MemoryStatsStore) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *MemoryStatsStore) ByRoute() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Counters, len(s.byRoute))
	for k, v := range s.byRoute {
		out[k] = v
	}
	return out
}

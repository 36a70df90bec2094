package infra

import (
	"context"
	"testing"

	"dbsession-middleware/middleware/dbsession/domain"
)

func TestMemoryStatsStore_CountsByOutcome(t *testing.T) {
	s := NewMemoryStatsStore()

	events := []domain.StatsEvent{
		{Method: "GET", Path: "/notes", Outcome: domain.OutcomeRelease},
		{Method: "POST", Path: "/notes", Transacting: true, Outcome: domain.OutcomeCommit},
		{Method: "POST", Path: "/notes", Transacting: true, Outcome: domain.OutcomeRollback},
		{Method: "POST", Path: "/notes", Transacting: true, Outcome: domain.OutcomeCommitError},
		{Method: "PUT", Path: "/notes/1", Transacting: true, Outcome: domain.OutcomeReject},
	}
	for _, ev := range events {
		if err := s.Record(context.Background(), ev); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	total := s.Total()
	if total.Releases != 1 || total.Commits != 1 || total.Rollbacks != 1 || total.CommitErrors != 1 || total.Rejects != 1 {
		t.Fatalf("unexpected totals: %+v", total)
	}
}

func TestMemoryStatsStore_RouteTrackingIsOptIn(t *testing.T) {
	off := NewMemoryStatsStore()
	_ = off.Record(context.Background(), domain.StatsEvent{Method: "GET", Path: "/x", Outcome: domain.OutcomeRelease})
	if len(off.ByRoute()) != 0 {
		t.Fatalf("expected no route tracking by default")
	}

	on := NewMemoryStatsStore(WithTrackRoutes(true))
	_ = on.Record(context.Background(), domain.StatsEvent{Method: "GET", Path: "/x", Outcome: domain.OutcomeRelease})
	if c := on.ByRoute()["GET /x"]; c.Releases != 1 {
		t.Fatalf("expected route counter, got %+v", on.ByRoute())
	}
}

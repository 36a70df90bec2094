package infra

import (
	"context"
	"testing"
	"time"
)

func TestTxThrottle_FirstWaitIsImmediate(t *testing.T) {
	th := NewTxThrottle(0.02, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := th.Wait(ctx); err != nil {
		t.Fatalf("expected first wait to pass within burst, got %v", err)
	}
}

func TestTxThrottle_SecondWaitHonorsContext(t *testing.T) {
	th := NewTxThrottle(0.02, 1)

	if err := th.Wait(context.Background()); err != nil {
		t.Fatalf("unexpected error on first wait: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := th.Wait(ctx); err == nil {
		t.Fatalf("expected second wait to fail under tiny deadline (burst=1, rps very low)")
	}
}

func TestTxThrottle_ExposesConfig(t *testing.T) {
	th := NewTxThrottle(2.5, 7)
	if th.RPS() != 2.5 {
		t.Fatalf("expected rps 2.5, got %v", th.RPS())
	}
	if th.Burst() != 7 {
		t.Fatalf("expected burst 7, got %d", th.Burst())
	}
}

package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryAllowsBurstThenRejects(t *testing.T) {
	l := NewMemory(1, 3)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "10.0.0.1")
		if err != nil {
			t.Fatalf("Allow: %v", err)
		}
		if !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	ok, _ := l.Allow(ctx, "10.0.0.1")
	if ok {
		t.Fatal("expected 4th request in the same instant to be rejected")
	}

	ok, _ = l.Allow(ctx, "10.0.0.2")
	if !ok {
		t.Fatal("expected a different key to have its own budget")
	}

	now = now.Add(time.Second)
	ok, _ = l.Allow(ctx, "10.0.0.1")
	if !ok {
		t.Fatal("expected a token to be refilled after one second")
	}
}

func TestMemoryDropsIdleLimiters(t *testing.T) {
	l := NewMemory(1, 1)
	now := time.Now()
	l.now = func() time.Time { return now }
	l.lastSweep = now
	ctx := context.Background()

	l.Allow(ctx, "a")
	l.Allow(ctx, "b")
	if got := l.size(); got != 2 {
		t.Fatalf("expected 2 limiters, got %d", got)
	}

	now = now.Add(memoryIdleTTL + time.Minute)
	l.Allow(ctx, "c")
	if got := l.size(); got != 1 {
		t.Fatalf("expected idle limiters to be dropped, got %d left", got)
	}
}

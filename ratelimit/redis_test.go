package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func setupTestRedis(t *testing.T, perSecond float64, burst int) (*Redis, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	l, err := NewRedis("redis://"+s.Addr(), perSecond, burst)
	if err != nil {
		t.Fatalf("NewRedis failed: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l, s
}

func TestRedisAllowsUpToBurstPerWindow(t *testing.T) {
	l, s := setupTestRedis(t, 1, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "10.0.0.1")
		if err != nil {
			t.Fatalf("Allow: %v", err)
		}
		if !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	ok, err := l.Allow(ctx, "10.0.0.1")
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if ok {
		t.Fatal("expected 3rd request in the window to be rejected")
	}

	if ttl := s.TTL("ratelimit:10.0.0.1"); ttl != 2*time.Second {
		t.Fatalf("expected window of 2s, got %v", ttl)
	}

	s.FastForward(3 * time.Second)
	ok, _ = l.Allow(ctx, "10.0.0.1")
	if !ok {
		t.Fatal("expected a new window to start after expiry")
	}
}

func TestRedisReportsConnectionErrors(t *testing.T) {
	l, s := setupTestRedis(t, 1, 1)
	s.SetError("ERR injected failure")

	if _, err := l.Allow(context.Background(), "k"); err == nil {
		t.Fatal("expected an error once redis is gone")
	}
}

func TestNewRedisRejectsBadURL(t *testing.T) {
	if _, err := NewRedis("not a url", 1, 1); err == nil {
		t.Fatal("expected an error for an invalid URL")
	}
}

func TestRedisKeyAlwaysExpires(t *testing.T) {
	l, s := setupTestRedis(t, 1, 2)
	ctx := context.Background()

	// a counter left without a TTL, e.g. by an older instance that crashed
	// between counting and setting the expiry
	s.Set("ratelimit:10.0.0.7", "41")

	ok, err := l.Allow(ctx, "10.0.0.7")
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if ok {
		t.Fatal("expected the over-limit counter to reject")
	}
	if ttl := s.TTL("ratelimit:10.0.0.7"); ttl <= 0 {
		t.Fatalf("expected the key to get a TTL, got %v", ttl)
	}

	s.FastForward(3 * time.Second)
	ok, err = l.Allow(ctx, "10.0.0.7")
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if !ok {
		t.Fatal("expected the client to be let in once the window expired")
	}
	if ttl := s.TTL("ratelimit:10.0.0.7"); ttl != 2*time.Second {
		t.Fatalf("expected a fresh 2s window, got %v", ttl)
	}
}

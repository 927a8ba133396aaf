package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// limiters idle for longer than this are dropped
const memoryIdleTTL = 2 * time.Hour

type memoryEntry struct {
	limiter    *rate.Limiter
	lastActive time.Time
}

// Memory keeps one token bucket per key.
type Memory struct {
	mu        sync.Mutex
	limiters  map[string]*memoryEntry
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

func NewMemory(perSecond float64, burst int) *Memory {
	return &Memory{
		limiters:  make(map[string]*memoryEntry),
		limit:     rate.Limit(perSecond),
		burst:     burst,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (m *Memory) Allow(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if now.Sub(m.lastSweep) > memoryIdleTTL {
		for k, e := range m.limiters {
			if now.Sub(e.lastActive) > memoryIdleTTL {
				delete(m.limiters, k)
			}
		}
		m.lastSweep = now
	}

	e, ok := m.limiters[key]
	if !ok {
		e = &memoryEntry{limiter: rate.NewLimiter(m.limit, m.burst)}
		m.limiters[key] = e
	}
	e.lastActive = now

	return e.limiter.AllowN(now, 1), nil
}

func (m *Memory) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.limiters)
}

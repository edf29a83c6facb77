package ratelimit

import (
	"context"
	"sync"
	"time"
)

const sweepInterval = time.Minute

type window struct {
	count   int64
	expires time.Time
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu        sync.Mutex
	windows   map[string]*window
	now       func() time.Time
	lastSweep time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

func (s *MemoryStore) Hit(_ context.Context, key string, period time.Duration) (int64, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)

	w, ok := s.windows[key]
	if !ok || !now.Before(w.expires) {
		w = &window{expires: now.Add(period)}
		s.windows[key] = w
	}
	w.count++
	return w.count, w.expires.Sub(now), nil
}

// sweep drops expired windows; callers hold mu.
func (s *MemoryStore) sweep(now time.Time) {
	if now.Sub(s.lastSweep) < sweepInterval {
		return
	}
	s.lastSweep = now
	for k, w := range s.windows {
		if !now.Before(w.expires) {
			delete(s.windows, k)
		}
	}
}

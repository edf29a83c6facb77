// Package ratelimit implements fixed-window request quotas keyed by client.
package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Store keeps per-key counters. Hit must increment and read the counter
// atomically and report how long until the current window resets.
type Store interface {
	Hit(ctx context.Context, key string, window time.Duration) (count int64, resetIn time.Duration, err error)
}

// Result describes the outcome of a single hit.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetIn    time.Duration
	RetryAfter time.Duration
}

type Limiter struct {
	store Store
}

func New(store Store) *Limiter {
	return &Limiter{store: store}
}

// Allow counts one request for key against q.
func (l *Limiter) Allow(ctx context.Context, key string, q Quota) (Result, error) {
	count, resetIn, err := l.store.Hit(ctx, key, q.Window)
	if err != nil {
		return Result{}, fmt.Errorf("rate limit store: %w", err)
	}
	if resetIn <= 0 {
		resetIn = q.Window
	}

	res := Result{
		Allowed: count <= int64(q.Limit),
		Limit:   q.Limit,
		ResetIn: resetIn,
	}
	if res.Allowed {
		res.Remaining = q.Limit - int(count)
	} else {
		res.RetryAfter = resetIn
	}
	return res, nil
}

// NewStore builds a store from a storage URI: "memory://" (or empty) for a
// process-local store, "redis://..." for a shared one. The returned close
// function releases any connection.
func NewStore(ctx context.Context, uri string) (Store, func() error, error) {
	switch {
	case uri == "" || strings.HasPrefix(uri, "memory://"):
		return NewMemoryStore(), func() error { return nil }, nil
	case strings.HasPrefix(uri, "redis://"), strings.HasPrefix(uri, "rediss://"):
		client, err := InitRedis(ctx, uri)
		if err != nil {
			return nil, nil, err
		}
		return NewRedisStore(client), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported rate limit storage uri %q", uri)
	}
}

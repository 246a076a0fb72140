package ingest

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter spaces consecutive calls by at least a fixed interval.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	hits    int
}

func NewRateLimiter(interval time.Duration) *RateLimiter {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Wait blocks until the next call slot. Each wait that had to sleep counts as a hit.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	reservation := r.limiter.Reserve()
	delay := reservation.Delay()
	if delay > 0 {
		r.hits++
	}
	r.mu.Unlock()

	if delay == 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		reservation.Cancel()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (r *RateLimiter) Hits() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hits
}

func (r *RateLimiter) ResetHits() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hits = 0
}

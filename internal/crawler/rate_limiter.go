package crawler

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter spaces out requests per host. Page renders and asset fetches
// share one limiter, so a host serving both pages and assets sees at most
// one request per configured delay.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	delay    time.Duration
}

// NewRateLimiter creates a rate limiter with the given minimum delay
// between requests to the same host.
func NewRateLimiter(delay time.Duration) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		delay:    delay,
	}
}

// Wait blocks until a request to the given host is allowed to proceed,
// or the context is cancelled.
func (r *RateLimiter) Wait(ctx context.Context, host string) error {
	if r.delay <= 0 {
		return nil
	}

	r.mu.Lock()
	limiter, ok := r.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(r.delay), 1)
		r.limiters[host] = limiter
	}
	r.mu.Unlock()

	return limiter.Wait(ctx)
}

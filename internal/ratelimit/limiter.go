// Package ratelimit provides per-key token bucket rate limiting for the
// monitoring server's tools.
package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// Limiter is a token bucket limiter keyed by tool name. Each key refills at
// the configured rate up to the burst size. Safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	rate    float64 // tokens per second
	burst   float64
	buckets map[string]*bucket
	now     func() time.Time // injectable clock for tests
}

type bucket struct {
	tokens   float64
	refilled time.Time
}

// New creates a limiter refilling rate tokens per second up to burst.
func New(rate float64, burst int) *Limiter {
	return &Limiter{
		rate:    rate,
		burst:   float64(burst),
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// Allow consumes one token for key. It reports false when the bucket is
// empty.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.burst, refilled: now}
		l.buckets[key] = b
	}

	if elapsed := now.Sub(b.refilled).Seconds(); elapsed > 0 {
		b.tokens += l.rate * elapsed
		if b.tokens > l.burst {
			b.tokens = l.burst
		}
	}
	b.refilled = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// Check consumes one token for key, returning a descriptive error when the
// request must be rejected.
func (l *Limiter) Check(key string) error {
	if !l.Allow(key) {
		return fmt.Errorf("rate limit exceeded for %s; retry shortly", key)
	}
	return nil
}

package httputil

import (
	"context"
	"sync"
	"time"
)

// Rate limiter defaults for the license service: at most 33 outbound calls
// per second across all concurrent lookups.
const (
	DefaultCapacity = 33
	DefaultPeriod   = time.Second
)

// Limiter is a token-bucket rate limiter. The bucket holds up to capacity
// tokens and refills continuously at capacity tokens per period. Acquire
// blocks until tokens are available; it never rejects, only delays.
//
// Waiters are admitted oldest-first: each caller reserves its tokens on
// arrival (driving the balance negative) and sleeps until its reservation
// matures, so a burst of late arrivals cannot starve an earlier caller.
//
// One Limiter instance is shared by every lookup in the process and lives for
// the process lifetime; the rate bound only holds if all callers go through
// the same instance.
type Limiter struct {
	mu       sync.Mutex
	capacity float64
	interval time.Duration // time to mint a single token
	tokens   float64       // negative while reservations are queued
	last     time.Time
}

// NewLimiter creates a limiter that admits capacity acquisitions per period.
// The bucket starts full.
func NewLimiter(capacity int, period time.Duration) *Limiter {
	if capacity < 1 {
		capacity = 1
	}
	if period <= 0 {
		period = DefaultPeriod
	}
	return &Limiter{
		capacity: float64(capacity),
		interval: period / time.Duration(capacity),
		tokens:   float64(capacity),
		last:     time.Now(),
	}
}

// NewDefaultLimiter creates a limiter with the license service defaults.
func NewDefaultLimiter() *Limiter {
	return NewLimiter(DefaultCapacity, DefaultPeriod)
}

// Acquire takes a single token, blocking until it is available.
func (l *Limiter) Acquire(ctx context.Context) error {
	return l.AcquireN(ctx, 1)
}

// AcquireN takes n tokens, blocking until the reservation matures.
// If ctx is cancelled while waiting, the reservation is returned to the
// bucket and ctx.Err() is reported.
func (l *Limiter) AcquireN(ctx context.Context, n int) error {
	if n < 1 {
		n = 1
	}

	l.mu.Lock()
	l.advance(time.Now())
	l.tokens -= float64(n)
	var wait time.Duration
	if l.tokens < 0 {
		wait = time.Duration(-l.tokens * float64(l.interval))
	}
	l.mu.Unlock()

	if wait == 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		l.mu.Lock()
		l.advance(time.Now())
		l.tokens += float64(n)
		if l.tokens > l.capacity {
			l.tokens = l.capacity
		}
		l.mu.Unlock()
		return ctx.Err()
	}
}

// advance refills the bucket for the time elapsed since the last update.
// Callers must hold l.mu.
func (l *Limiter) advance(now time.Time) {
	elapsed := now.Sub(l.last)
	if elapsed <= 0 {
		return
	}
	l.last = now
	l.tokens += float64(elapsed) / float64(l.interval)
	if l.tokens > l.capacity {
		l.tokens = l.capacity
	}
}

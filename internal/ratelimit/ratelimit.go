// Package ratelimit provides per-source request admission using a token
// bucket. Every outbound fetch acquires a slot before issuing the request;
// sources have independent budgets.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// bucket is a token bucket refilled continuously at rate tokens/second.
type bucket struct {
	mu         sync.Mutex
	rate       float64 // tokens per second
	capacity   float64
	tokens     float64
	lastRefill time.Time
}

func newBucket(rate float64, capacity int) *bucket {
	c := float64(capacity)
	if c < 1 {
		c = 1
	}
	return &bucket{
		rate:       rate,
		capacity:   c,
		tokens:     c, // start full
		lastRefill: time.Now(),
	}
}

// reserve consumes one token, returning how long the caller must wait before
// the reservation becomes valid. Going negative is what serializes callers:
// each reservation pushes the next one further out.
func (b *bucket) reserve() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens = minFloat(b.capacity, b.tokens+elapsed*b.rate)
	b.lastRefill = now

	b.tokens -= 1.0
	if b.tokens >= 0 {
		return 0
	}
	return time.Duration(-b.tokens / b.rate * float64(time.Second))
}

// Limiter manages one token bucket per source.
type Limiter struct {
	mu      sync.RWMutex
	buckets map[string]*bucket
}

// SourceRate configures one source's budget as requests per interval.
type SourceRate struct {
	Requests int
	Interval time.Duration
	Burst    int // defaults to Requests when zero
}

// NewLimiter creates a limiter with the given per-source rates. Sources not
// present in the map are rejected by Acquire rather than silently unlimited.
func NewLimiter(rates map[string]SourceRate) *Limiter {
	l := &Limiter{buckets: make(map[string]*bucket, len(rates))}
	for source, r := range rates {
		if r.Requests <= 0 || r.Interval <= 0 {
			continue
		}
		burst := r.Burst
		if burst <= 0 {
			burst = r.Requests
		}
		perSecond := float64(r.Requests) / r.Interval.Seconds()
		l.buckets[source] = newBucket(perSecond, burst)
	}
	return l
}

// Acquire blocks until a request slot is available for the source, or until
// ctx is done. It never fails for normal waiting; a zero-configured source is
// a configuration error.
func (l *Limiter) Acquire(ctx context.Context, source string) error {
	l.mu.RLock()
	b, ok := l.buckets[source]
	l.mu.RUnlock()
	if !ok {
		return fmt.Errorf("ratelimit: no rate configured for source %q", source)
	}

	wait := b.reserve()
	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SetRate replaces a source's bucket, used by the CLI rate-limit override.
func (l *Limiter) SetRate(source string, r SourceRate) {
	if r.Requests <= 0 || r.Interval <= 0 {
		return
	}
	burst := r.Burst
	if burst <= 0 {
		burst = r.Requests
	}
	l.mu.Lock()
	l.buckets[source] = newBucket(float64(r.Requests)/r.Interval.Seconds(), burst)
	l.mu.Unlock()
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

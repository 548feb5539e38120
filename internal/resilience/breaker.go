// Package resilience guards calls to the external data sources with a
// per-source circuit breaker and a bounded retry policy. One breaker exists
// per source; breaker state is never shared across sources.
package resilience

import (
	"sync"
	"time"
)

// State is the circuit breaker state.
type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half_open"
)

// BreakerConfig controls when a breaker opens and how long it stays open.
type BreakerConfig struct {
	FailureThreshold int           // consecutive failures before opening
	RecoveryTimeout  time.Duration // time in OPEN before a half-open trial
}

// TransitionFunc observes state changes, for monitoring. It must not be
// relied on for correctness.
type TransitionFunc func(source string, to State)

// Breaker is a circuit breaker for one external source.
type Breaker struct {
	source       string
	cfg          BreakerConfig
	onTransition TransitionFunc

	mu           sync.Mutex
	state        State
	failures     int
	openedAt     time.Time
	halfOpenBusy bool
}

// NewBreaker creates a closed breaker for the named source. onTransition may
// be nil.
func NewBreaker(source string, cfg BreakerConfig, onTransition TransitionFunc) *Breaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.RecoveryTimeout <= 0 {
		cfg.RecoveryTimeout = time.Minute
	}
	return &Breaker{
		source:       source,
		cfg:          cfg,
		onTransition: onTransition,
		state:        StateClosed,
	}
}

// State returns the current state. Half-open is only observable between the
// recovery timeout elapsing and the trial call finishing.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Call invokes f under breaker protection. In OPEN it fails fast with a
// BreakerOpenError until the recovery timeout elapses; then exactly one trial
// call runs in HALF_OPEN, closing the breaker on success and reopening it on
// failure.
func (b *Breaker) Call(f func() error) error {
	if err := b.beforeCall(); err != nil {
		return err
	}
	err := f()
	b.afterCall(err)
	return err
}

func (b *Breaker) beforeCall() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return nil
	case StateOpen:
		if time.Since(b.openedAt) < b.cfg.RecoveryTimeout {
			return &BreakerOpenError{
				Source:   b.source,
				OpenedAt: b.openedAt,
				RetryAt:  b.openedAt.Add(b.cfg.RecoveryTimeout),
			}
		}
		b.transition(StateHalfOpen)
		b.halfOpenBusy = true
		return nil
	case StateHalfOpen:
		// Only one trial call at a time; concurrent callers fail fast.
		if b.halfOpenBusy {
			return &BreakerOpenError{
				Source:   b.source,
				OpenedAt: b.openedAt,
				RetryAt:  b.openedAt.Add(b.cfg.RecoveryTimeout),
			}
		}
		b.halfOpenBusy = true
		return nil
	}
	return nil
}

func (b *Breaker) afterCall(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateHalfOpen {
		b.halfOpenBusy = false
		if err == nil {
			b.failures = 0
			b.transition(StateClosed)
		} else {
			b.openedAt = time.Now()
			b.transition(StateOpen)
		}
		return
	}

	if err == nil {
		b.failures = 0
		return
	}

	b.failures++
	if b.state == StateClosed && b.failures >= b.cfg.FailureThreshold {
		b.openedAt = time.Now()
		b.transition(StateOpen)
	}
}

// transition must be called with b.mu held.
func (b *Breaker) transition(to State) {
	b.state = to
	if b.onTransition != nil {
		b.onTransition(b.source, to)
	}
}

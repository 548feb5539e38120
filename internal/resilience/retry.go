package resilience

import (
	"context"
	"math/rand"
	"time"
)

// RetryConfig controls the bounded backoff applied to transient failures.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Exponential bool // linear (delay * attempt) when false
	Jitter      bool // +/-10% randomization
}

// DefaultRetryConfig matches the conservative profile used for the stats API.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    30 * time.Second,
		Exponential: true,
		Jitter:      true,
	}
}

// Retry invokes f up to cfg.MaxAttempts times, sleeping between attempts.
// Only transient failures (see IsTransient) are retried; breaker-open,
// permanent, and validation errors surface immediately. The last failure is
// returned unchanged in kind.
func Retry(ctx context.Context, cfg RetryConfig, f func() error) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		lastErr = f()
		if lastErr == nil {
			return nil
		}
		if !IsTransient(lastErr) {
			return lastErr
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		delay := cfg.backoff(attempt)
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
	return lastErr
}

// backoff computes the sleep before attempt+1.
func (cfg RetryConfig) backoff(attempt int) time.Duration {
	base := cfg.BaseDelay
	if base <= 0 {
		base = time.Second
	}

	var delay time.Duration
	if cfg.Exponential {
		delay = base
		for i := 1; i < attempt; i++ {
			delay *= 2
		}
	} else {
		delay = base * time.Duration(attempt)
	}

	if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
		delay = cfg.MaxDelay
	}
	if cfg.Jitter {
		jitter := time.Duration(rand.Int63n(int64(delay)/5+1)) - delay/10
		delay += jitter
	}
	if delay < 0 {
		delay = 0
	}
	return delay
}

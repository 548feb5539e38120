package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type transientErr struct{ msg string }

func (e *transientErr) Error() string     { return e.msg }
func (e *transientErr) IsRetryable() bool { return true }

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{MaxAttempts: attempts, BaseDelay: time.Millisecond}
}

func TestRetrySucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastRetry(3), func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryRetriesTransientUpToMaxAttempts(t *testing.T) {
	calls := 0
	want := &transientErr{msg: "connection reset"}
	err := Retry(context.Background(), fastRetry(3), func() error {
		calls++
		return want
	})
	assert.Equal(t, 3, calls)
	// The last failure surfaces unchanged.
	assert.Same(t, want, err)
}

func TestRetryRecoversMidway(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastRetry(3), func() error {
		calls++
		if calls < 3 {
			return &transientErr{msg: "timeout"}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryDoesNotRetryPermanentErrors(t *testing.T) {
	calls := 0
	want := errors.New("404 not found")
	err := Retry(context.Background(), fastRetry(3), func() error {
		calls++
		return want
	})
	assert.Equal(t, 1, calls)
	assert.Same(t, want, err)
}

func TestRetryDoesNotRetryBreakerOpen(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastRetry(3), func() error {
		calls++
		return &BreakerOpenError{Source: "stats", OpenedAt: time.Now()}
	})
	assert.Equal(t, 1, calls)
	assert.True(t, IsBreakerOpen(err))
}

func TestRetryStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Retry(ctx, RetryConfig{MaxAttempts: 5, BaseDelay: time.Minute}, func() error {
		calls++
		cancel()
		return &transientErr{msg: "timeout"}
	})
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBackoffGrowsAndCaps(t *testing.T) {
	cfg := RetryConfig{BaseDelay: time.Second, MaxDelay: 3 * time.Second, Exponential: true}

	assert.Equal(t, time.Second, cfg.backoff(1))
	assert.Equal(t, 2*time.Second, cfg.backoff(2))
	assert.Equal(t, 3*time.Second, cfg.backoff(3))
	assert.Equal(t, 3*time.Second, cfg.backoff(6))
}

func TestBackoffLinear(t *testing.T) {
	cfg := RetryConfig{BaseDelay: time.Second, Exponential: false}

	assert.Equal(t, time.Second, cfg.backoff(1))
	assert.Equal(t, 3*time.Second, cfg.backoff(3))
}

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(errors.New("plain")))
	assert.False(t, IsTransient(&BreakerOpenError{Source: "stats"}))
	assert.True(t, IsTransient(&transientErr{msg: "timeout"}))
}

package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireUnknownSource(t *testing.T) {
	l := NewLimiter(map[string]SourceRate{})

	err := l.Acquire(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no rate configured")
}

func TestAcquireWithinBurstDoesNotBlock(t *testing.T) {
	l := NewLimiter(map[string]SourceRate{
		"stats": {Requests: 10, Interval: time.Second, Burst: 3},
	})

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Acquire(context.Background(), "stats"))
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestAcquireBlocksBeyondBurst(t *testing.T) {
	l := NewLimiter(map[string]SourceRate{
		"stats": {Requests: 10, Interval: time.Second, Burst: 1},
	})

	require.NoError(t, l.Acquire(context.Background(), "stats"))

	// Second acquire must wait roughly one refill period (100ms at 10/s).
	start := time.Now()
	require.NoError(t, l.Acquire(context.Background(), "stats"))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestAcquireHonorsContext(t *testing.T) {
	l := NewLimiter(map[string]SourceRate{
		"slow": {Requests: 1, Interval: time.Hour, Burst: 1},
	})

	require.NoError(t, l.Acquire(context.Background(), "slow"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := l.Acquire(ctx, "slow")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSourcesAreIndependent(t *testing.T) {
	l := NewLimiter(map[string]SourceRate{
		"slow": {Requests: 1, Interval: time.Hour, Burst: 1},
		"fast": {Requests: 100, Interval: time.Second, Burst: 10},
	})

	require.NoError(t, l.Acquire(context.Background(), "slow"))

	// Exhausting slow must not affect fast.
	start := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, l.Acquire(context.Background(), "fast"))
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestSetRateOverride(t *testing.T) {
	l := NewLimiter(map[string]SourceRate{
		"slow": {Requests: 1, Interval: time.Hour, Burst: 1},
	})
	require.NoError(t, l.Acquire(context.Background(), "slow"))

	l.SetRate("slow", SourceRate{Requests: 100, Interval: time.Second})

	start := time.Now()
	require.NoError(t, l.Acquire(context.Background(), "slow"))
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

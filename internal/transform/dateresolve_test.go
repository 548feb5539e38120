package transform

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

func probeFor(hits ...string) ProbeFunc {
	found := make(map[string]bool, len(hits))
	for _, h := range hits {
		found[h] = true
	}
	return func(_ context.Context, d time.Time) (bool, error) {
		return found[d.Format("2006-01-02")], nil
	}
}

func TestResolveExactDate(t *testing.T) {
	r := &DateResolver{WindowDays: 3}
	got, err := r.Resolve(context.Background(), "0022400123", day("2024-12-25"), probeFor("2024-12-25"))
	require.NoError(t, err)
	assert.Equal(t, day("2024-12-25"), got)
}

func TestResolveOverrideBeatsWindow(t *testing.T) {
	r := &DateResolver{
		Overrides:  map[string]time.Time{"0022400123": day("2025-03-01")},
		WindowDays: 3,
	}
	probes := 0
	probe := func(_ context.Context, d time.Time) (bool, error) {
		probes++
		return false, nil
	}
	got, err := r.Resolve(context.Background(), "0022400123", day("2024-12-25"), probe)
	require.NoError(t, err)
	assert.Equal(t, day("2025-03-01"), got)
	// The override short-circuits after the single exact-date probe.
	assert.Equal(t, 1, probes)
}

func TestResolveFuzzyWindow(t *testing.T) {
	r := &DateResolver{WindowDays: 3}
	got, err := r.Resolve(context.Background(), "0022400123", day("2024-12-25"), probeFor("2024-12-23"))
	require.NoError(t, err)
	assert.Equal(t, day("2024-12-23"), got)
}

func TestResolveWindowExhausted(t *testing.T) {
	r := &DateResolver{WindowDays: 2}
	_, err := r.Resolve(context.Background(), "0022400123", day("2024-12-25"), probeFor())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0022400123")
}

func TestResolveZeroWindowOnlyExact(t *testing.T) {
	r := &DateResolver{}
	_, err := r.Resolve(context.Background(), "0022400123", day("2024-12-25"), probeFor("2024-12-26"))
	require.Error(t, err)
}

func TestResolveProbeErrorAborts(t *testing.T) {
	r := &DateResolver{WindowDays: 3}
	want := errors.New("breaker open")
	_, err := r.Resolve(context.Background(), "0022400123", day("2024-12-25"),
		func(_ context.Context, _ time.Time) (bool, error) { return false, want })
	assert.ErrorIs(t, err, want)
}

package transform

import (
	"context"
	"fmt"
	"time"
)

// ProbeFunc reports whether a game's reference-site page exists on a given
// date. Implementations issue a cheap fetch and must honor the context.
type ProbeFunc func(ctx context.Context, day time.Time) (bool, error)

// DateResolver finds the date a game was actually played. Postponed games
// appear on the reference site under their makeup date, not the scheduled
// one, so the resolver tries the scheduled date first, then any operator
// override, then a bounded window of nearby dates.
type DateResolver struct {
	// Overrides maps game ID to a known makeup date, checked before any
	// fuzzy probing.
	Overrides map[string]time.Time

	// WindowDays bounds the fuzzy search around the scheduled date. Zero
	// disables probing beyond the exact date and overrides.
	WindowDays int
}

// Resolve returns the resolved date for gameID. The probe is called at most
// 1 + 2*WindowDays times; probe errors abort the search.
func (r *DateResolver) Resolve(ctx context.Context, gameID string, scheduled time.Time, probe ProbeFunc) (time.Time, error) {
	ok, err := probe(ctx, scheduled)
	if err != nil {
		return time.Time{}, err
	}
	if ok {
		return scheduled, nil
	}

	if override, found := r.Overrides[gameID]; found {
		return override, nil
	}

	for offset := 1; offset <= r.WindowDays; offset++ {
		for _, day := range []time.Time{
			scheduled.AddDate(0, 0, offset),
			scheduled.AddDate(0, 0, -offset),
		} {
			ok, err := probe(ctx, day)
			if err != nil {
				return time.Time{}, err
			}
			if ok {
				return day, nil
			}
		}
	}

	return time.Time{}, fmt.Errorf("no page found for game %s within %d days of %s",
		gameID, r.WindowDays, scheduled.Format("2006-01-02"))
}

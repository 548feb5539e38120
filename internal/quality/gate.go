// Package quality checks committed game data against coverage thresholds.
// A failing gate turns the game into a soft failure: the rows stay in place
// and the game is quarantined for review.
package quality

import (
	"fmt"

	"github.com/jonathan/nba-ingest/internal/models"
)

// Thresholds configures the gate. Zero values disable the matching rule so
// partial runs (a single source, dry runs) can relax checks explicitly.
type Thresholds struct {
	// MinPbpEvents is the minimum number of play-by-play events a final
	// game must carry. A regulation game produces roughly 400 to 500.
	MinPbpEvents int `json:"min_pbp_events"`

	// MinClockCoverage is the minimum fraction of play-by-play events with
	// a parsed clock, in [0, 1].
	MinClockCoverage float64 `json:"min_clock_coverage"`

	// RequireScores rejects final games missing either score.
	RequireScores bool `json:"require_scores"`

	// ExactStarters is the required starting-lineup size when lineups were
	// collected at all (five per team).
	ExactStarters int `json:"exact_starters"`

	// MinOfficials is the minimum crew size when assignments were
	// collected.
	MinOfficials int `json:"min_officials"`
}

// DefaultThresholds mirrors the production gate for full ingests.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinPbpEvents:     300,
		MinClockCoverage: 0.90,
		RequireScores:    true,
		ExactStarters:    10,
		MinOfficials:     3,
	}
}

// Violation names a failed rule with the measured value.
type Violation struct {
	Rule    string
	Message string
}

func (v Violation) String() string {
	return v.Rule + ": " + v.Message
}

// Check evaluates the gate. Rules only fire for final games; scheduled,
// live, and postponed games pass so that partial records still land.
func Check(t Thresholds, data *models.GameData) []Violation {
	if data.Game == nil {
		return []Violation{{Rule: "game_present", Message: "no parent game row"}}
	}
	if data.Game.Status != models.StatusFinal {
		return nil
	}

	var violations []Violation

	if t.RequireScores && (data.Game.HomeScore == nil || data.Game.AwayScore == nil) {
		violations = append(violations, Violation{
			Rule:    "scores_present",
			Message: "final game missing one or both scores",
		})
	}

	if t.MinPbpEvents > 0 && len(data.PbpEvents) < t.MinPbpEvents {
		violations = append(violations, Violation{
			Rule:    "pbp_event_count",
			Message: fmt.Sprintf("%d events, need at least %d", len(data.PbpEvents), t.MinPbpEvents),
		})
	}

	if t.MinClockCoverage > 0 && len(data.PbpEvents) > 0 {
		withClock := 0
		for _, ev := range data.PbpEvents {
			if ev.ClockSeconds != nil {
				withClock++
			}
		}
		coverage := float64(withClock) / float64(len(data.PbpEvents))
		if coverage < t.MinClockCoverage {
			violations = append(violations, Violation{
				Rule:    "clock_coverage",
				Message: fmt.Sprintf("%.2f coverage, need at least %.2f", coverage, t.MinClockCoverage),
			})
		}
	}

	if t.ExactStarters > 0 && len(data.Lineups) > 0 && len(data.Lineups) != t.ExactStarters {
		violations = append(violations, Violation{
			Rule:    "starter_count",
			Message: fmt.Sprintf("%d starters, expected exactly %d", len(data.Lineups), t.ExactStarters),
		})
	}

	if t.MinOfficials > 0 && len(data.RefAssignments) > 0 && len(data.RefAssignments) < t.MinOfficials {
		violations = append(violations, Violation{
			Rule:    "official_count",
			Message: fmt.Sprintf("%d officials, need at least %d", len(data.RefAssignments), t.MinOfficials),
		})
	}

	return violations
}

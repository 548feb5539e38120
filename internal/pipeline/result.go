// Package pipeline assembles per-game ingestion units and the chunked
// backfill orchestrator that drives them.
package pipeline

import (
	"time"
)

// Outcome classifies how a game unit finished.
type Outcome string

const (
	// OutcomeSuccess means the game committed and passed its quality gate.
	OutcomeSuccess Outcome = "success"
	// OutcomeSoftFail means the game needs review: either a required source
	// failed before anything was written, or the rows committed but fell
	// below the quality threshold. In the latter case the committed rows
	// stay queryable and RowsByTable reports them. Soft failures are
	// quarantined either way.
	OutcomeSoftFail Outcome = "soft_fail"
	// OutcomeHardFail means an infrastructure error stopped the unit:
	// database unavailable, context canceled.
	OutcomeHardFail Outcome = "hard_fail"
)

// Result reports one game unit's run. Partial source errors are recorded
// even on success: an optional source failing does not fail the game.
type Result struct {
	GameID       string
	Outcome      Outcome
	RowsByTable  map[string]int
	SourceErrors map[string]error
	Violations   []string
	Err          error
	Duration     time.Duration
}

// Failed reports whether the unit did not commit.
func (r *Result) Failed() bool {
	return r.Outcome != OutcomeSuccess
}

package observability

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/nba-ingest/internal/pipeline"
)

func TestPrintGameResult(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintGameResult(&pipeline.Result{
		GameID:  "0022400123",
		Outcome: pipeline.OutcomeSoftFail,
		RowsByTable: map[string]int{
			"games":      1,
			"pbp_events": 450,
		},
		Violations:   []string{"clock_coverage: 0.50 coverage, need at least 0.90"},
		SourceErrors: map[string]error{"gamebooks": errors.New("HTTP status 404")},
		Err:          errors.New("quality gate rejected game 0022400123: 1 violations"),
		Duration:     1200 * time.Millisecond,
	})
	output := buf.String()

	assert.Contains(t, output, "GAME 0022400123")
	assert.Contains(t, output, "soft_fail")
	assert.Contains(t, output, "pbp_events")
	assert.Contains(t, output, "clock_coverage")
	assert.Contains(t, output, "gamebooks")
}

func TestPrintRunSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRunSummary(&pipeline.RunSummary{
		Season:         "2024-25",
		Games:          1230,
		Successes:      1225,
		SoftFails:      4,
		HardFails:      1,
		FinalWatermark: "0022401230",
	})
	output := buf.String()

	assert.Contains(t, output, "BACKFILL SUMMARY")
	assert.Contains(t, output, "2024-25")
	assert.Contains(t, output, "1225")
	assert.Contains(t, output, "0022401230")
}

func TestPrintNilIsNoop(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.PrintGameResult(nil)
	p.PrintRunSummary(nil)
	assert.Empty(t, buf.String())
}

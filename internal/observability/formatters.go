// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jonathan/nba-ingest/internal/pipeline"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintGameResult outputs a human-readable summary of one game unit run.
func (p *Printer) PrintGameResult(res *pipeline.Result) {
	if res == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Outcome:   %s\n", res.Outcome))
	sb.WriteString(fmt.Sprintf("Duration:  %s\n", res.Duration.Round(1e6)))

	if len(res.RowsByTable) > 0 {
		sb.WriteString("\nRows written:\n")
		tables := make([]string, 0, len(res.RowsByTable))
		for t := range res.RowsByTable {
			tables = append(tables, t)
		}
		sort.Strings(tables)
		for _, t := range tables {
			sb.WriteString(fmt.Sprintf("  %-18s %d\n", t, res.RowsByTable[t]))
		}
	}

	if len(res.Violations) > 0 {
		sb.WriteString("\nQuality violations:\n")
		count := min(len(res.Violations), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", res.Violations[i]))
		}
		if len(res.Violations) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(res.Violations)-maxItemsToShow))
		}
	}

	if len(res.SourceErrors) > 0 {
		sb.WriteString("\nSource errors:\n")
		sources := make([]string, 0, len(res.SourceErrors))
		for s := range res.SourceErrors {
			sources = append(sources, s)
		}
		sort.Strings(sources)
		for _, s := range sources {
			sb.WriteString(fmt.Sprintf("  %s: %v\n", s, res.SourceErrors[s]))
		}
	}

	if res.Err != nil {
		sb.WriteString(fmt.Sprintf("\nError: %v\n", res.Err))
	}

	p.printBox(fmt.Sprintf("GAME %s", res.GameID), sb.String())
}

// PrintRunSummary outputs a human-readable summary of a backfill run.
func (p *Printer) PrintRunSummary(summary *pipeline.RunSummary) {
	if summary == nil {
		return
	}

	var sb strings.Builder
	if summary.Season != "" {
		sb.WriteString(fmt.Sprintf("Season:     %s\n", summary.Season))
	} else {
		sb.WriteString(fmt.Sprintf("Range:      %s\n", summary.Key))
	}
	sb.WriteString(fmt.Sprintf("Chunks:     %d\n", len(summary.Chunks)))
	if summary.FailedChunks > 0 {
		sb.WriteString(fmt.Sprintf("Bad chunks: %d\n", summary.FailedChunks))
	}
	sb.WriteString(fmt.Sprintf("Games:      %d\n", summary.Games))
	sb.WriteString(fmt.Sprintf("Succeeded:  %d\n", summary.Successes))
	sb.WriteString(fmt.Sprintf("Soft fails: %d\n", summary.SoftFails))
	sb.WriteString(fmt.Sprintf("Hard fails: %d\n", summary.HardFails))
	if summary.FinalWatermark != "" {
		sb.WriteString(fmt.Sprintf("Watermark:  %s\n", summary.FinalWatermark))
	}

	p.printBox("BACKFILL SUMMARY", sb.String())
}

// PrintChunk outputs one chunk report as it completes.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintChunk(report pipeline.ChunkReport) {
	if report.Err != nil {
		fmt.Fprintf(p.out, "chunk %s..%s: failed: %v\n",
			report.Start.Format("2006-01-02"), report.End.Format("2006-01-02"), report.Err)
		return
	}
	fmt.Fprintf(p.out, "chunk %s..%s: %d games, %d ok, %d soft, %d hard\n",
		report.Start.Format("2006-01-02"), report.End.Format("2006-01-02"),
		report.Games, report.Successes, report.SoftFails, report.HardFails)
}

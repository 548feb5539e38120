package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/nba-ingest/internal/pipeline"
	"github.com/jonathan/nba-ingest/internal/season"
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Backfill a season or date range in resumable chunks",
	Long:  "Walk a season or an explicit date range in chunks, discover the games from the scoreboard, and ingest each one. Progress is checkpointed through the watermark store, so an interrupted run resumes where it stopped.",
	RunE:  runBackfill,
}

var (
	backfillSeason string
	backfillStart  string
	backfillEnd    string
	sinceGameID    string
	chunkDays      int
	concurrency    int
)

func init() {
	backfillCmd.Flags().StringVarP(&backfillSeason, "season", "s", "", "Season label, e.g. 2024-25")
	backfillCmd.Flags().StringVar(&backfillStart, "start-date", "", "First date of the range, YYYY-MM-DD")
	backfillCmd.Flags().StringVar(&backfillEnd, "end-date", "", "Last date of the range, YYYY-MM-DD")
	backfillCmd.Flags().StringVar(&sinceGameID, "since-game-id", "", "Resume after this game ID instead of the stored watermark")
	backfillCmd.Flags().IntVar(&chunkDays, "chunk-days", 0, "Days per chunk (default from config)")
	backfillCmd.Flags().IntVar(&concurrency, "concurrency", 0, "Concurrent games per chunk (default from config)")

	backfillCmd.MarkFlagsMutuallyExclusive("season", "start-date")
	backfillCmd.MarkFlagsMutuallyExclusive("season", "end-date")
	backfillCmd.MarkFlagsRequiredTogether("start-date", "end-date")

	rootCmd.AddCommand(backfillCmd)
}

func runBackfill(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := buildRuntime(ctx, cmd)
	if err != nil {
		return err
	}
	defer rt.close()

	days := rt.cfg.ChunkDays
	if cmd.Flags().Changed("chunk-days") {
		days = chunkDays
	}
	workers := rt.cfg.Concurrency
	if cmd.Flags().Changed("concurrency") {
		workers = concurrency
	}

	backfill := &pipeline.Backfill{
		Unit:        rt.unit,
		Storage:     rt.storage,
		Season:      backfillSeason,
		SinceGameID: sinceGameID,
		ChunkDays:   days,
		Concurrency: workers,
	}
	if backfillSeason == "" {
		if backfillStart == "" || backfillEnd == "" {
			return fmt.Errorf("provide --season or both --start-date and --end-date")
		}
		if backfill.StartDate, err = season.ParseDay(backfillStart); err != nil {
			return err
		}
		if backfill.EndDate, err = season.ParseDay(backfillEnd); err != nil {
			return err
		}
	}
	if rt.cfg.Verbose {
		backfill.OnResult = func(res *pipeline.Result) {
			if res.Failed() {
				rt.printer.PrintGameResult(res)
			}
		}
	}

	summary, runErr := backfill.Run(ctx)
	if summary != nil {
		if rt.cfg.Verbose {
			for _, chunk := range summary.Chunks {
				rt.printer.PrintChunk(chunk)
			}
		}
		rt.printer.PrintRunSummary(summary)
		failedGames = summary.Failures()
	}
	if runErr != nil {
		return fmt.Errorf("backfill stopped: %w", runErr)
	}
	return nil
}

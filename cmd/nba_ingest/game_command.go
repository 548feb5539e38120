package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/nba-ingest/internal/season"
)

var gameCmd = &cobra.Command{
	Use:   "game",
	Short: "Ingest a single game",
	Long:  "Fetch, validate, and load one game identified by its 10-digit game ID and scheduled date.",
	RunE:  runGame,
}

var (
	gameID   string
	gameDate string
)

func init() {
	gameCmd.Flags().StringVarP(&gameID, "game-id", "g", "", "10-digit game ID, e.g. 0022400123 (required)")
	gameCmd.Flags().StringVarP(&gameDate, "date", "d", "", "Scheduled game date as YYYY-MM-DD (required)")

	gameCmd.MarkFlagRequired("game-id")
	gameCmd.MarkFlagRequired("date")

	rootCmd.AddCommand(gameCmd)
}

func runGame(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	day, err := season.ParseDay(gameDate)
	if err != nil {
		return err
	}

	rt, err := buildRuntime(ctx, cmd)
	if err != nil {
		return err
	}
	defer rt.close()

	res := rt.unit.Run(ctx, gameID, day, season.ForDate(day))
	if rt.cfg.Verbose {
		rt.printer.PrintGameResult(res)
	} else {
		fmt.Fprintf(os.Stdout, "game %s: %s\n", res.GameID, res.Outcome)
	}

	if res.Failed() {
		failedGames = 1
		if res.Err != nil {
			fmt.Fprintf(os.Stderr, "game %s failed: %v\n", res.GameID, res.Err)
		}
	}
	return nil
}

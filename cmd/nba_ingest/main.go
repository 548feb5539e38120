// Package main provides the entry point for the NBA ingestion CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "nba_ingest",
	Short: "Resilient NBA game-data ingestion",
	Long:  "nba_ingest pulls game data from the stats API, the reference site, and official gamebooks, validates it, and loads it into Postgres with per-game transactions and resumable season backfills.",
}

// failedGames is set by commands that process games; the process exit code
// reports how many games did not commit, capped so it stays a valid code.
var failedGames int

const maxExitCode = 125

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if failedGames > maxExitCode {
		failedGames = maxExitCode
	}
	os.Exit(failedGames)
}

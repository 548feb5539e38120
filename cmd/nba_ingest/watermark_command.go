package main

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/nba-ingest/internal/pipeline"
)

var watermarkCmd = &cobra.Command{
	Use:   "watermark",
	Short: "Inspect or set backfill watermarks",
}

var watermarkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backfill watermarks",
	RunE:  runWatermarkList,
}

var watermarkSetCmd = &cobra.Command{
	Use:   "set <season> <game-id>",
	Short: "Set a season's backfill watermark",
	Long:  "Set the watermark directly, e.g. to rewind a season so earlier games are re-attempted on the next backfill. Loads are idempotent, so rewinding is safe.",
	Args:  cobra.ExactArgs(2),
	RunE:  runWatermarkSet,
}

func init() {
	watermarkCmd.AddCommand(watermarkListCmd)
	watermarkCmd.AddCommand(watermarkSetCmd)
	rootCmd.AddCommand(watermarkCmd)
}

func runWatermarkList(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := buildRuntime(ctx, cmd)
	if err != nil {
		return err
	}
	defer rt.close()

	if rt.db == nil {
		return fmt.Errorf("watermark commands require a database URL")
	}

	marks, err := rt.db.ListWatermarks(ctx, pipeline.WatermarkStage)
	if err != nil {
		return err
	}
	if len(marks) == 0 {
		fmt.Fprintln(os.Stdout, "no watermarks recorded")
		return nil
	}

	seasons := make([]string, 0, len(marks))
	for s := range marks {
		seasons = append(seasons, s)
	}
	sort.Strings(seasons)
	for _, s := range seasons {
		fmt.Fprintf(os.Stdout, "%s\t%s\n", s, marks[s])
	}
	return nil
}

func runWatermarkSet(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := buildRuntime(ctx, cmd)
	if err != nil {
		return err
	}
	defer rt.close()

	if rt.db == nil {
		return fmt.Errorf("watermark commands require a database URL")
	}

	seasonLabel, value := args[0], args[1]
	if err := rt.db.SetWatermark(ctx, pipeline.WatermarkStage, seasonLabel, value); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "watermark for %s set to %s\n", seasonLabel, value)
	return nil
}

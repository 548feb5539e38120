package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var quarantineCmd = &cobra.Command{
	Use:   "quarantine",
	Short: "List recent quarantine entries",
	Long:  "Show games that failed their quality gate or hard-failed during recent runs, most recent first.",
	RunE:  runQuarantine,
}

var quarantineLimit int

func init() {
	quarantineCmd.Flags().IntVarP(&quarantineLimit, "limit", "n", 20, "Maximum entries to show")
	rootCmd.AddCommand(quarantineCmd)
}

func runQuarantine(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := buildRuntime(ctx, cmd)
	if err != nil {
		return err
	}
	defer rt.close()

	if rt.db == nil {
		return fmt.Errorf("the quarantine command requires a database URL")
	}

	entries, err := rt.db.RecentQuarantine(ctx, quarantineLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stdout, "quarantine log is empty")
		return nil
	}

	for _, e := range entries {
		fmt.Fprintf(os.Stdout, "%s\t%s\t%s\t%s\n",
			e.QuarantinedAt.Format("2006-01-02 15:04:05"), e.GameID, e.Reason, e.Detail)
	}
	return nil
}

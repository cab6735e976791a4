// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citation-engine/internal/runlog"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent pipeline runs from the run journal",
	Long: `History reads the SQLite run journal written by enrich --run-log and
prints recent runs, newest first: when each table was processed, with which
provider, and how many records were resolved, not found, or left pending.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().String("run-log", "", "SQLite run journal path")
	historyCmd.Flags().Int("limit", 20, "maximum runs to list")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	path := stringSetting(cmd, "run-log", "enrich.run_log", "")
	if path == "" {
		return fmt.Errorf("no run journal configured: pass --run-log or set enrich.run_log")
	}
	limit, _ := cmd.Flags().GetInt("limit")

	journal, err := runlog.Open(path)
	if err != nil {
		return err
	}
	defer journal.Close()

	entries, err := journal.Recent(cmd.Context(), limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		return nil
	}

	fmt.Fprintf(out, "%-4s  %-19s  %-9s  %-16s  %-20s  %9s  %9s  %9s  %8s\n",
		"ID", "Finished", "Command", "Provider", "Table", "Processed", "Resolved", "NotFound", "Pending")
	for _, e := range entries {
		fmt.Fprintf(out, "%-4d  %-19s  %-9s  %-16s  %-20s  %9d  %9d  %9d  %8d\n",
			e.ID, e.FinishedAt.Local().Format(time.DateTime), e.Command, e.Provider, e.Table,
			e.Processed, e.Resolved, e.NotFound, e.Pending)
	}
	return nil
}

package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mmcdole/photodedup/internal/config"
	"github.com/mmcdole/photodedup/internal/journal"
)

func newHistoryCmd(v *viper.Viper, configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show the changes recorded in the journal",
		Long: `Without arguments, list the runs recorded in the journal. With a run ID,
list every change that run made, in order.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := v.BindPFlag("journal.file", cmd.Flags().Lookup("journal")); err != nil {
				return fmt.Errorf("failed to bind flag --journal: %w", err)
			}
			cfg, err := config.LoadConfig(v, *configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			runID := ""
			if len(args) == 1 {
				runID = args[0]
			}
			return showHistory(cmd.OutOrStdout(), cfg.Journal.File, runID)
		},
	}

	cmd.Flags().String("journal", "", "journal database to read")
	return cmd
}

func showHistory(w io.Writer, path, runID string) error {
	if path == "" {
		return fmt.Errorf("no journal configured, pass --journal")
	}
	// Open would create an empty database
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}

	j, err := journal.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer j.Close()

	if runID == "" {
		runs, err := j.Runs()
		if err != nil {
			return fmt.Errorf("failed to read runs: %w", err)
		}
		if len(runs) == 0 {
			fmt.Fprintln(w, "No runs recorded.")
			return nil
		}
		for _, r := range runs {
			fmt.Fprintf(w, "%s  %s  dedupe %d, stack %d\n",
				r.ID, r.StartedAt.Local().Format(time.DateTime), r.Dedup, r.Stack)
		}
		return nil
	}

	entries, err := j.Entries(runID)
	if err != nil {
		return fmt.Errorf("failed to read run %s: %w", runID, err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("no changes recorded for run %s", runID)
	}
	for _, e := range entries {
		status := "ok"
		if !e.OK {
			status = "failed: " + e.Error
		}
		fmt.Fprintf(w, "%s  %-15s %s [%s] %s\n",
			e.At.Local().Format(time.TimeOnly), e.Kind, e.DuplicateID, strings.Join(e.AssetIDs, ", "), status)
	}
	return nil
}

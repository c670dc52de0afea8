package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/focusplan/core/journal"
	"github.com/kilianp07/focusplan/infra/kpi"
	"github.com/kilianp07/focusplan/jobs/loadkpi"
)

var backfillFlags struct {
	db    string
	user  string
	start string
	end   string
}

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Rebuild the daily meeting load table from the run journal",
	RunE:  runBackfill,
}

func init() {
	backfillCmd.Flags().StringVar(&backfillFlags.db, "db", "focusplan-load.db", "sqlite database of daily meeting load")
	backfillCmd.Flags().StringVarP(&backfillFlags.user, "user", "u", "", "only runs of this user")
	backfillCmd.Flags().StringVar(&backfillFlags.start, "start", "", "only runs at or after this time")
	backfillCmd.Flags().StringVar(&backfillFlags.end, "end", "", "only runs at or before this time")
	rootCmd.AddCommand(backfillCmd)
}

func runBackfill(cmd *cobra.Command, _ []string) error {
	q := journal.Query{UserID: backfillFlags.user}
	var err error
	if backfillFlags.start != "" {
		if q.Start, err = parseTime(backfillFlags.start); err != nil {
			return err
		}
	}
	if backfillFlags.end != "" {
		if q.End, err = parseTime(backfillFlags.end); err != nil {
			return err
		}
	}
	runs, err := journal.Open(cfg.Journal)
	if err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	defer func() { _ = runs.Close() }()
	store, err := kpi.NewSQLiteStore(backfillFlags.db)
	if err != nil {
		return fmt.Errorf("load store: %w", err)
	}
	defer func() { _ = store.Close() }()
	n, err := loadkpi.Backfill(cmd.Context(), store, runs, q)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "backfilled %d placements into %s\n", n, backfillFlags.db)
	return err
}

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/vet-records/constants"
	"github.com/joseph-ayodele/vet-records/internal/repository"
)

var dbhealthCmd = &cobra.Command{
	Use:   "dbhealth",
	Short: "Check database connectivity and print record counts by status",
	RunE:  runDBHealth,
}

func init() {
	rootCmd.AddCommand(dbhealthCmd)
}

func runDBHealth(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	if cfg.Database.DSN == "" {
		return fmt.Errorf("DB_URL is required")
	}
	ctx := cmd.Context()

	db, err := repository.Open(ctx, repository.Config{DSN: cfg.Database.DSN, DialTimeout: cfg.Database.DialTimeout}, logger)
	if err != nil {
		return fmt.Errorf("opening DB: %w", err)
	}
	defer db.Close(logger)

	if err := repository.HealthCheck(ctx, db, time.Second, logger); err != nil {
		return fmt.Errorf("DB health: FAIL (%w)", err)
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "DB health: OK (%s)\n", db.Dialect)

	if err := repository.Migrate(ctx, db.Driver, logger); err != nil {
		return err
	}
	records := repository.NewRecordRepository(db.Driver, logger)
	for _, st := range []constants.RecordStatus{
		constants.RecordStatusPending,
		constants.RecordStatusProcessing,
		constants.RecordStatusCompleted,
		constants.RecordStatusFailed,
	} {
		recs, err := records.List(ctx, repository.ListFilter{Status: &st, Limit: 10_000})
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "- %s: %d\n", st, len(recs))
	}
	return nil
}

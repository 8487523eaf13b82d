package main

import (
	"fmt"

	"diet-wizard/internal/config"
	"diet-wizard/internal/database"
	"diet-wizard/internal/metrics"

	"github.com/spf13/cobra"
)

var cleanupDays int

var cleanupCmd = &cobra.Command{
	Use:   "metrics-cleanup",
	Short: "Remove old fetch metric records",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.NewFromEnv()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		db, err := database.NewDB(cfg.DatabasePath)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close()

		affected, err := metrics.NewStore(db.SQL).Cleanup(cleanupDays)
		if err != nil {
			return fmt.Errorf("cleanup failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Successfully removed %d old metric records.\n", affected)
		return nil
	},
}

func init() {
	cleanupCmd.Flags().IntVar(&cleanupDays, "days", 30, "Keep records for the last N days")
}

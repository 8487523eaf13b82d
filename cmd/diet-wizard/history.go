package main

import (
	"fmt"

	"diet-wizard/internal/config"
	"diet-wizard/internal/database"
	"diet-wizard/internal/history"

	"github.com/spf13/cobra"
)

var (
	historyUser  string
	historyLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recently generated diets",
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

		entries, err := history.NewRepository(db.SQL).ListRecent(cmd.Context(), historyUser, historyLimit)
		if err != nil {
			return fmt.Errorf("failed to list diets: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintf(out, "No diets stored for %s.\n", historyUser)
			return nil
		}
		for _, e := range entries {
			fmt.Fprintf(out, "%s  %-20s %-24s %d meals\n",
				e.CreatedAt.Format("2006-01-02 15:04"), e.Plan.Name, e.Plan.Objective, len(e.Plan.Meals))
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyUser, "user", "cli", "History owner (Telegram user id for bot diets)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "Maximum number of diets to list")
}

package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "diet-wizard",
	Short: "Collect a profile, request a diet and share it",
	Long: `diet-wizard collects a body profile, asks the diet service for a plan
and prints it in the same plain-text format the bot shares.

Configuration is read from the environment (an optional .env file is loaded first).
DIET_API_URL is required by create.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(cleanupCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command failed: %v", err)
		os.Exit(1)
	}
}

package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rekindle",
	Short: "Relationship intelligence from your sent mail and messages",
	Long:  "Rekindle walks your outbound communication history, scores relationship health, and surfaces people who have gone quiet.",
}

var configPath string

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.rekindle/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(dormantCmd)
	rootCmd.AddCommand(statusCmd)
}

package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "season-tickets",
	Short: "Season ticket subscriptions service",
	Long:  "Sells season-ticket subscriptions, assigns seats per game and runs auto-renewals.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package cmd

import (
	"fmt"
	"os"

	"github.com/biggslaundromat/laundromat/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "laundromat",
	Short: "BigG's Laundromat ordering backend",
	Long: `Online ordering backend for the laundromat.

"serve" runs the public HTTP API together with the gRPC health endpoint,
"notifier" delivers customer notifications from the queue over WhatsApp and
"migrate" manages the database schema.`,
	SilenceUsage: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		config.MustInit()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

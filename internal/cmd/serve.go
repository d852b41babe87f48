package cmd

import (
	"github.com/biggslaundromat/laundromat/internal/app"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, the gRPC health endpoint and the outbox worker",
	Run: func(*cobra.Command, []string) {
		app.MustNewApp().Run()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

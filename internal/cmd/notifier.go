package cmd

import (
	"github.com/biggslaundromat/laundromat/internal/app"
	"github.com/spf13/cobra"
)

var notifierCmd = &cobra.Command{
	Use:   "notifier",
	Short: "Consume notification messages and deliver them over WhatsApp",
	Run: func(*cobra.Command, []string) {
		app.MustNewNotifierApp().Run()
	},
}

func init() {
	rootCmd.AddCommand(notifierCmd)
}

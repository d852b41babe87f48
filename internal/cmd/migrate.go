package cmd

import (
	"fmt"

	"github.com/biggslaundromat/laundromat/internal/dal/postgres"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var migrationsPath string

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|status|reset]",
	Short:     "Apply or inspect database migrations",
	Long:      `Runs goose migrations from postgres.migrations_path. Defaults to "up".`,
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "status", "reset"},
	RunE:      runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().StringVar(&migrationsPath, "dir", "", "Migrations directory (overrides postgres.migrations_path)")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	command := postgres.MigrateUp
	if len(args) == 1 {
		command = postgres.MigrateCommand(args[0])
	}

	if migrationsPath != "" {
		viper.Set("postgres.migrations_path", migrationsPath)
	}
	viper.Set("postgres.auto_migrate", false)

	client := postgres.MustNewClient()
	defer client.Close()

	if err := client.Migrate(cmd.Context(), command); err != nil {
		return fmt.Errorf("migrate %s: %w", command, err)
	}

	return nil
}

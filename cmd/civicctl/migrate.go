package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shenikar/civic_incident_system/pkg/postgres"
)

var errNoDatabaseURL = errors.New("database url is required: set DATABASE_URL or --database-url")

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the last applied migrations",
		Long: `Roll back applied migrations.

Examples:
  # Roll back the last migration
  civicctl migrate down

  # Roll back three migrations
  civicctl migrate down --steps 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if databaseURL == "" {
				return errNoDatabaseURL
			}
			return postgres.RollbackMigrations(databaseURL, migrationsPath, steps, log)
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if databaseURL == "" {
				return errNoDatabaseURL
			}
			return postgres.RunMigrations(databaseURL, migrationsPath, log)
		},
	})
	cmd.AddCommand(down)
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			if databaseURL == "" {
				return errNoDatabaseURL
			}
			version, dirty, err := postgres.MigrationVersion(databaseURL, migrationsPath)
			if err != nil {
				return err
			}
			if dirty {
				fmt.Fprintf(cmd.OutOrStdout(), "%d (dirty)\n", version)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\n", version)
			return nil
		},
	})
	return cmd
}

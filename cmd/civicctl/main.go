// Package main реализует civicctl - утилиту обслуживания сервиса гражданских отчетов.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/shenikar/civic_incident_system/pkg/logger"
)

var (
	databaseURL    string
	migrationsPath string
	logLevel       string

	log *logrus.Logger
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	// .env необязателен, переменные окружения имеют приоритет
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "civicctl",
		Short: "Maintenance commands for the civic incident service",
		Long: `civicctl manages the civic incident service database.
It applies and rolls back migrations and provisions admin accounts.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log = logger.New(logLevel, logger.WithText())
		},
	}

	root.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
	root.PersistentFlags().StringVar(&migrationsPath, "migrations", envOr("MIGRATIONS_PATH", "file://migrations"), "migrations source URL")
	root.PersistentFlags().StringVar(&logLevel, "log-level", envOr("LOG_LEVEL", "info"), "log level")

	root.AddCommand(newMigrateCmd())
	root.AddCommand(newCreateAdminCmd())
	root.AddCommand(newHashPasswordCmd())
	return root
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

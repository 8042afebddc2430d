package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shenikar/civic_incident_system/internal/auth"
	"github.com/shenikar/civic_incident_system/internal/config"
	"github.com/shenikar/civic_incident_system/internal/models"
	"github.com/shenikar/civic_incident_system/internal/repository"
	"github.com/shenikar/civic_incident_system/internal/service"
	"github.com/shenikar/civic_incident_system/pkg/postgres"
)

func newCreateAdminCmd() *cobra.Command {
	var input models.AdminInput
	var role string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin or super admin account",
		Long: `Create an admin account directly in the database.

Examples:
  # Bootstrap the first super admin
  civicctl create-admin --name "Ops" --email ops@city.gov --password secret1 --role super_admin

  # Create a district admin
  civicctl create-admin --name "North" --email north@city.gov --password secret1 --district North`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if databaseURL == "" {
				return errNoDatabaseURL
			}
			input.Role = models.Role(role)

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			db, err := postgres.NewPostgresDB(ctx, &config.Config{DatabaseURL: databaseURL})
			if err != nil {
				return err
			}
			defer db.Close()

			// Отчеты для создания администратора не нужны
			admins := service.NewAdminService(nil, repository.NewUserRepository(db), log)
			user, err := admins.CreateAdmin(ctx, input)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s %s (%s)\n", user.Role, user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&input.Name, "name", "", "display name")
	cmd.Flags().StringVar(&input.Email, "email", "", "login email")
	cmd.Flags().StringVar(&input.Password, "password", "", "initial password")
	cmd.Flags().StringVar(&input.Station, "station", "", "station the admin belongs to")
	cmd.Flags().StringVar(&input.District, "district", "", "district the admin covers")
	cmd.Flags().StringVar(&role, "role", string(models.RoleAdmin), "admin or super_admin")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash of a password",
		Long: `Print a bcrypt hash suitable for the users.password_hash column.
Reads the password from stdin when no argument is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func readPassword(in io.Reader, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	raw, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	password := strings.TrimRight(string(raw), "\r\n")
	if password == "" {
		return "", fmt.Errorf("password is empty")
	}
	return password, nil
}

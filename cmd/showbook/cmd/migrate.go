package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jmylchreest/showbook/internal/database"
	"github.com/jmylchreest/showbook/internal/database/migrations"
	"github.com/jmylchreest/showbook/internal/observability"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Database schema migration commands",
	Long:  `Apply, roll back and inspect showbook schema migrations.`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE:  runMigrateUp,
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back applied migrations, newest first",
	RunE:  runMigrateDown,
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which migrations have been applied",
	RunE:  runMigrateStatus,
}

var (
	migrateSteps        int
	migrateStatusFormat string
)

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)

	migrateDownCmd.Flags().IntVar(&migrateSteps, "steps", 1, "number of migrations to roll back")
	migrateStatusCmd.Flags().StringVarP(&migrateStatusFormat, "format", "f", "table", "output format (table, json, yaml)")
}

// openMigrator opens the configured database and registers every migration.
func openMigrator() (*database.DB, *migrations.Migrator, error) {
	logger := slog.Default()
	db, err := database.New(appConfig.Database, observability.WithComponent(logger, "database"))
	if err != nil {
		return nil, nil, fmt.Errorf("initializing database: %w", err)
	}

	migrator := migrations.NewMigrator(db.DB, observability.WithComponent(logger, "migrations"))
	migrator.RegisterAll(migrations.AllMigrations())
	return db, migrator, nil
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	db, migrator, err := openMigrator()
	if err != nil {
		return err
	}
	defer db.Close()

	return migrator.Up(cmd.Context())
}

func runMigrateDown(cmd *cobra.Command, args []string) error {
	if migrateSteps < 1 {
		return fmt.Errorf("--steps must be at least 1, got %d", migrateSteps)
	}

	db, migrator, err := openMigrator()
	if err != nil {
		return err
	}
	defer db.Close()

	for range migrateSteps {
		if err := migrator.Down(cmd.Context()); err != nil {
			return err
		}
	}
	return nil
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	db, migrator, err := openMigrator()
	if err != nil {
		return err
	}
	defer db.Close()

	statuses, err := migrator.Status(cmd.Context())
	if err != nil {
		return err
	}

	if migrateStatusFormat != "table" {
		return writeFormatted(cmd.OutOrStdout(), migrateStatusFormat, statuses)
	}

	rows := make([][]string, len(statuses))
	for i, s := range statuses {
		applied := "pending"
		if s.Applied && s.AppliedAt != nil {
			applied = s.AppliedAt.Format(time.RFC3339)
		}
		rows[i] = []string{s.Version, s.Description, applied}
	}
	return writeTable(cmd.OutOrStdout(), []string{"VERSION", "DESCRIPTION", "APPLIED"}, rows)
}

package main

import (
	"context"
	"database/sql"
	"log/slog"

	"tracker/config"
	"tracker/internal/errors"
	logs "tracker/internal/infra/log"
	"tracker/internal/infra/persistence/postgres"

	"github.com/spf13/cobra"
)

type migrateFunc func(ctx context.Context, db *sql.DB, logger *slog.Logger) error

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(
		migrateSubcommand("up", "Apply every pending migration", postgres.MigrateUp),
		migrateSubcommand("down", "Roll back the most recent migration", postgres.MigrateDown),
		migrateSubcommand("status", "Show which migrations are applied", postgres.MigrateStatus),
	)

	return cmd
}

func migrateSubcommand(use, short string, run migrateFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(cmd.Context(), run)
		},
	}
}

// withDatabase opens the configured primary outside the fx graph.
func withDatabase(ctx context.Context, run migrateFunc) error {
	cfg, err := config.New()
	if err != nil {
		return err
	}
	logger, err := logs.New(logs.Params{Config: cfg})
	if err != nil {
		return err
	}

	db, err := postgres.Open(cfg, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "sql.DB")
	}
	defer sqlDB.Close()

	if ctx == nil {
		ctx = context.Background()
	}

	return run(ctx, sqlDB, logger)
}

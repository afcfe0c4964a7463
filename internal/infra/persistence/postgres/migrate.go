package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"tracker/internal/errors"
	"tracker/internal/infra/persistence/migrations"

	"github.com/pressly/goose/v3"
)

// MigrateUp applies every pending embedded migration.
func MigrateUp(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if err := prepareGoose(logger); err != nil {
		return err
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return errors.Wrap(err, "goose up")
	}

	return nil
}

// MigrateDown rolls back the most recent migration.
func MigrateDown(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if err := prepareGoose(logger); err != nil {
		return err
	}

	if err := goose.DownContext(ctx, db, "."); err != nil {
		return errors.Wrap(err, "goose down")
	}

	return nil
}

// MigrateStatus logs the applied state of each migration.
func MigrateStatus(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if err := prepareGoose(logger); err != nil {
		return err
	}

	if err := goose.StatusContext(ctx, db, "."); err != nil {
		return errors.Wrap(err, "goose status")
	}

	return nil
}

func prepareGoose(logger *slog.Logger) error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(&gooseLogger{logger: logger})

	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "goose dialect")
	}

	return nil
}

// gooseLogger adapts slog to goose.Logger.
type gooseLogger struct {
	logger *slog.Logger
}

func (l *gooseLogger) Printf(format string, v ...any) {
	l.logger.Info("goose", slog.String("message", fmt.Sprintf(format, v...)))
}

func (l *gooseLogger) Fatalf(format string, v ...any) {
	l.logger.Error("goose", slog.String("message", fmt.Sprintf(format, v...)))
	os.Exit(1)
}

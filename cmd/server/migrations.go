package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pressly/goose/v3"

	"github.com/shamshodbekdevops/dicttrainer/migrations"
)

const migrationTableName = "schema_migrations"

// slogGooseLogger adapts goose's logger interface to structured logging.
type slogGooseLogger struct {
	logger *slog.Logger
}

// Printf implements the required logging method for goose's SetLogger
func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info("goose: " + strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Fatalf implements the required logging method for goose's SetLogger
func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error("goose fatal: " + strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// runMigrations applies all pending migrations for the given driver from the
// embedded migration set. Applying is idempotent; an up-to-date database is
// a no-op.
func runMigrations(db *sql.DB, driver string, logger *slog.Logger) error {
	var dialect, dir string
	switch driver {
	case "postgres":
		dialect, dir = "postgres", "postgres"
	case "sqlite":
		dialect, dir = "sqlite3", "sqlite"
	default:
		return fmt.Errorf("unsupported database driver %q", driver)
	}

	goose.SetLogger(&slogGooseLogger{logger: logger.With(slog.String("component", "migrations"))})
	goose.SetTableName(migrationTableName)
	goose.SetBaseFS(migrations.FS)

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}

package db

import (
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
)

// gooseDialects lists the drivers Init can open. The reading tables use
// partial indexes and CHECK constraints, which both dialects support.
var gooseDialects = map[string]goose.Dialect{
	"sqlite": goose.DialectSQLite3,
	"pgx":    goose.DialectPostgres,
}

// MigrationFunc is one goose operation against an open database.
type MigrationFunc func(db *sql.DB, driver string) error

// useSchema points goose at the embedded catalog, shelf, goal and log migrations.
func useSchema(driver string) error {
	dialect, ok := gooseDialects[driver]
	if !ok {
		return fmt.Errorf("no migration dialect for driver %q", driver)
	}
	err := goose.SetDialect(string(dialect))
	if err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	schema, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	goose.SetBaseFS(schema)
	return nil
}

// RunMigrations brings the books, user_books, reading_goals and reading_logs
// tables up to the latest version.
func RunMigrations(db *sql.DB, driver string) error {
	err := useSchema(driver)
	if err != nil {
		return err
	}

	err = goose.Up(db, ".")
	if err != nil {
		return fmt.Errorf("failed to migrate reading schema: %w", err)
	}

	logSchemaVersion(db, "reading schema migrated", driver)
	return nil
}

// MigrateDown reverts the newest migration only.
func MigrateDown(db *sql.DB, driver string) error {
	err := useSchema(driver)
	if err != nil {
		return err
	}

	err = goose.Down(db, ".")
	if err != nil {
		return fmt.Errorf("failed to roll back reading schema: %w", err)
	}

	logSchemaVersion(db, "reading schema rolled back", driver)
	return nil
}

// MigrationStatus prints every migration with its applied state.
func MigrationStatus(db *sql.DB, driver string) error {
	err := useSchema(driver)
	if err != nil {
		return err
	}

	err = goose.Status(db, ".")
	if err != nil {
		return fmt.Errorf("failed to read reading schema status: %w", err)
	}
	return nil
}

func logSchemaVersion(db *sql.DB, msg, driver string) {
	version, err := goose.GetDBVersion(db)
	if err != nil {
		slog.Warn("could not read schema version", "error", err, "driver", driver)
		return
	}
	slog.Info(msg, "schema_version", version, "driver", driver)
}

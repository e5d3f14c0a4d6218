// Package migrations declares the postgres record store schema: the events and
// bookings tables and their unique indexes (events.slug, bookings(event_id, email)).
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// MigrationsTable keeps our version row apart from other tools sharing the database.
const MigrationsTable = "eventbook_schema_migrations"

//go:embed *.sql
var Files embed.FS

// Run brings the schema up to date. With autoMigrate disabled it only reports the
// current version, leaving the caller's schema check to fail if tables are missing.
func Run(db *sql.DB, autoMigrate bool) error {
	m, err := newMigrator(db)
	if err != nil {
		return err
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if dirty {
		// Migrations are idempotent (IF NOT EXISTS); the interrupted one is re-applied.
		prev := forceVersion(version)
		slog.Warn("Schema is in dirty state, forcing previous version", "version", version, "forced", prev)
		if err := m.Force(prev); err != nil {
			return fmt.Errorf("failed to recover dirty schema at version %d: %w", version, err)
		}
	}

	if !autoMigrate {
		slog.Info("Auto-migration disabled", "schema_version", version, "dirty", dirty)
		return nil
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			slog.Info("Schema is up to date", "schema_version", version)
			return nil
		}
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	newVersion, _, err := m.Version()
	if err != nil {
		return fmt.Errorf("failed to read schema version after migrating: %w", err)
	}
	slog.Info("Schema migrated", "from_version", version, "to_version", newVersion)
	return nil
}

// forceVersion is the version to force when version is dirty: the one before it,
// or no version at all when the first migration was interrupted.
func forceVersion(version uint) int {
	if version <= 1 {
		return database.NilVersion
	}
	return int(version) - 1
}

func newMigrator(db *sql.DB) (*migrate.Migrate, error) {
	source, err := iofs.New(Files, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: MigrationsTable})
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return m, nil
}

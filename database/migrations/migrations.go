// Copyright (c) 2025 Justin Cranford
//
// SPDX-License-Identifier: MIT

// Package migrations applies the module's embedded schema migrations to a
// database/sql handle, dispatching to the golang-migrate driver matching
// the handle's underlying driver.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	pgxStdlib "github.com/jackc/pgx/v5/stdlib"
	modernSqlite "modernc.org/sqlite"
)

//go:embed sql/*.sql
var migrationFiles embed.FS

const migrationsTable = "nettls_schema_migrations"

// ApplyMigrations brings db's schema up to the latest embedded migration.
// It dispatches to the sqlite or postgres golang-migrate driver depending
// on db's concrete driver type.
func ApplyMigrations(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("database handle cannot be nil")
	}

	driver, err := migrationDriverFor(db)
	if err != nil {
		return err
	}

	sourceDriver, err := iofs.New(migrationFiles, "sql")
	if err != nil {
		return fmt.Errorf("failed to load embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "nettls", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}

func migrationDriverFor(db *sql.DB) (migratedb.Driver, error) {
	switch db.Driver().(type) {
	case *modernSqlite.Driver:
		driver, err := sqlite.WithInstance(db, &sqlite.Config{MigrationsTable: migrationsTable})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize sqlite migration driver: %w", err)
		}

		return driver, nil
	case *pgxStdlib.Driver:
		driver, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: migrationsTable})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres migration driver: %w", err)
		}

		return driver, nil
	default:
		return nil, fmt.Errorf("unsupported database driver for migrations: %T", db.Driver())
	}
}

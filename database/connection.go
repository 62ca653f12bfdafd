// Copyright (c) 2025 Justin Cranford
//
// SPDX-License-Identifier: MIT

// Package database opens the SQL connection backing the session cache
// store, wrapping both the raw *sql.DB handle and a GORM handle over the
// same connection so callers can use whichever fits the operation.
package database

import (
	"database/sql"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	_ "github.com/jackc/pgx/v5/stdlib" // Registers the "pgx" database/sql driver.
	_ "modernc.org/sqlite"             // CGo-free SQLite driver.
)

const (
	driverNameSqlite   = "sqlite"
	driverNamePostgres = "pgx"

	databaseUrlSqlite = "file::memory:?cache=shared"
)

// Service bundles a database/sql handle and a GORM handle over the same
// connection, plus the driver name used to open it.
type Service struct {
	driverName string
	db         *sql.DB
	gormDB     *gorm.DB
}

// DB returns the raw database/sql handle.
func (s *Service) DB() *sql.DB {
	return s.db
}

// GormDB returns the GORM handle sharing the same connection as DB.
func (s *Service) GormDB() *gorm.DB {
	return s.gormDB
}

// Shutdown closes the underlying connection. Safe to call on a nil Service.
func (s *Service) Shutdown() {
	if s == nil || s.db == nil {
		return
	}

	_ = s.db.Close()
}

// NewService opens the module's default development database: an
// in-memory, CGo-free SQLite database shared across connections for the
// lifetime of the process.
func NewService() (*Service, error) {
	return openDatabase(driverNameSqlite, databaseUrlSqlite)
}

// NewPostgresService opens a PostgreSQL database at connStr via the pgx
// driver.
func NewPostgresService(connStr string) (*Service, error) {
	return openDatabase(driverNamePostgres, connStr)
}

func openDatabase(driverName string, databaseURL string) (*Service, error) {
	if driverName == "" {
		return nil, fmt.Errorf("driver name cannot be empty")
	}

	if databaseURL == "" {
		return nil, fmt.Errorf("database URL cannot be empty")
	}

	sqlDB, err := sql.Open(driverName, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	dialector, err := gormDialectorFor(driverName, sqlDB)
	if err != nil {
		_ = sqlDB.Close()

		return nil, err
	}

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		_ = sqlDB.Close()

		return nil, fmt.Errorf("failed to initialize GORM: %w", err)
	}

	return &Service{driverName: driverName, db: sqlDB, gormDB: gormDB}, nil
}

func gormDialectorFor(driverName string, sqlDB *sql.DB) (gorm.Dialector, error) {
	switch driverName {
	case driverNameSqlite:
		return sqlite.Dialector{Conn: sqlDB}, nil
	case driverNamePostgres:
		return postgres.New(postgres.Config{Conn: sqlDB}), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driverName)
	}
}

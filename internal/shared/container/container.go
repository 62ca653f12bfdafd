// Copyright (c) 2025 Justin Cranford
//
// SPDX-License-Identifier: MIT

// Package container provides test-time and dev-mode helpers for talking to
// Docker containers started via testcontainers-go, and for confirming a
// Postgres instance (containerized or not) is reachable before the rest of
// the module depends on it.
package container

import (
	"context"
	"database/sql"
	"fmt"

	nettlsTelemetry "nettls/internal/shared/telemetry"

	"github.com/docker/go-connections/nat"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
)

// GetContainerHostAndMappedPort resolves the host and mapped port a caller
// should dial to reach containerPort inside c. It logs the resolved
// host:port pair at debug level through telemetrySvc before returning.
func GetContainerHostAndMappedPort(ctx context.Context, telemetrySvc *nettlsTelemetry.TelemetryService, c testcontainers.Container, containerPort string) (string, string, error) {
	host, err := c.Host(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to get container host: %w", err)
	}

	mapped, err := c.MappedPort(ctx, nat.Port(containerPort+"/tcp"))
	if err != nil {
		return "", "", fmt.Errorf("failed to get container mapped port: %w", err)
	}

	port := mapped.Port()

	if telemetrySvc != nil && telemetrySvc.Slogger != nil {
		telemetrySvc.Slogger.Debug("resolved container address", "host", host, "port", port, "containerPort", containerPort)
	}

	return host, port, nil
}

// VerifyPostgresConnection opens connStr with the pgx stdlib driver and pings
// it, returning an error describing why the connection failed. It is meant
// for readiness checks after starting a Postgres container or before
// handing a DSN to the rest of the module.
func VerifyPostgresConnection(connStr string) error {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return fmt.Errorf("failed to open postgres connection: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	return nil
}

//-------------------------------------------------------------------------
//
// pgEdge Brokerage Admin
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package testutil provides utilities for integration testing against
// PostgreSQL.
package testutil

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-brokeradmin/internal/db"
)

const (
	// ConnEnv names the environment variable holding the server to test
	// against.
	ConnEnv = "PGEDGE_TEST_CONN"

	// DefaultTestConnString is used when ConnEnv is unset.
	DefaultTestConnString = "postgres://postgres@localhost:5432/postgres"

	// TestDBPrefix is the prefix for throwaway test databases.
	TestDBPrefix = "brokeradmin_test_"
)

// PostgresAvailable returns the connection string of a reachable server,
// or "" when none answers within a few seconds.
func PostgresAvailable() string {
	connStr := os.Getenv(ConnEnv)
	if connStr == "" {
		connStr = DefaultTestConnString
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return ""
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return ""
	}
	return connStr
}

// SkipIfNoPostgres skips the test if PostgreSQL is not available.
func SkipIfNoPostgres(t *testing.T) string {
	t.Helper()
	connStr := PostgresAvailable()
	if connStr == "" {
		t.Skip("PostgreSQL not available, skipping integration test")
	}
	return connStr
}

// testDBName returns a unique database name for the named test.
func testDBName(t *testing.T, name string) string {
	t.Helper()
	suffix := make([]byte, 6)
	if _, err := rand.Read(suffix); err != nil {
		t.Fatalf("Failed to generate database name: %v", err)
	}
	return TestDBPrefix + name + "_" + hex.EncodeToString(suffix)
}

// NewSchemaDB creates a fresh database holding the brokeradmin schema and
// metadata, and returns a pool connected to it. The database is dropped
// when the test passes and kept for inspection when it fails. The test is
// skipped when PostgreSQL is not available.
func NewSchemaDB(t *testing.T, name string) *pgxpool.Pool {
	t.Helper()
	baseConnStr := SkipIfNoPostgres(t)
	dbName := testDBName(t, name)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	admin, err := pgxpool.New(ctx, baseConnStr)
	if err != nil {
		t.Fatalf("Failed to connect to postgres: %v", err)
	}
	defer admin.Close()

	if _, err := admin.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{dbName}.Sanitize()); err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	poolCfg, err := pgxpool.ParseConfig(baseConnStr)
	if err != nil {
		t.Fatalf("Failed to parse connection string: %v", err)
	}
	poolCfg.ConnConfig.Database = dbName

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(func() {
		pool.Close()
		if t.Failed() {
			t.Logf("Test failed - keeping database %s for diagnostics", dbName)
			return
		}
		dropTestDB(t, baseConnStr, dbName)
	})

	if err := db.CreateSchema(ctx, pool); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	if err := db.SaveMetadata(ctx, pool); err != nil {
		t.Fatalf("Failed to save metadata: %v", err)
	}
	return pool
}

func dropTestDB(t *testing.T, baseConnStr, dbName string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, baseConnStr)
	if err != nil {
		t.Logf("Warning: Failed to connect to drop test database: %v", err)
		return
	}
	defer pool.Close()

	_, _ = pool.Exec(ctx, `
        SELECT pg_terminate_backend(pid)
        FROM pg_stat_activity
        WHERE datname = $1 AND pid <> pg_backend_pid()
    `, dbName)

	if _, err := pool.Exec(ctx, "DROP DATABASE IF EXISTS "+pgx.Identifier{dbName}.Sanitize()); err != nil {
		t.Logf("Warning: Failed to drop test database: %v", err)
	}
}

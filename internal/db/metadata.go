//-------------------------------------------------------------------------
//
// pgEdge Brokerage Admin
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-brokeradmin/internal/logging"
	"github.com/pgEdge/pgedge-brokeradmin/pkg/version"
)

const metadataTable = "brokeradmin_metadata"

// Metadata keys written by init and seed.
const (
	KeySchemaVersion = "schema_version"
	KeyInitializedAt = "initialized_at"
	KeySeedUsers     = "seed_users"
	KeySeedAccounts  = "seed_accounts"
)

// ErrNotInitialized is returned by ReadSchemaInfo when init has not run.
var ErrNotInitialized = errors.New(
	"database has not been initialized; run 'pgedge-brokeradmin init' first")

const createMetadataTableSQL = `
CREATE TABLE IF NOT EXISTS brokeradmin_metadata (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
)`

// SchemaInfo describes an initialized database.
type SchemaInfo struct {
	SchemaVersion string
	InitializedAt time.Time
	// SeedUsers and SeedAccounts are zero when the database was never seeded.
	SeedUsers    int
	SeedAccounts int
}

// Seeded reports whether seed has recorded its counts.
func (s SchemaInfo) Seeded() bool {
	return s.SeedUsers > 0 || s.SeedAccounts > 0
}

// SaveMetadata stamps the schema version and initialization time.
func SaveMetadata(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, createMetadataTableSQL); err != nil {
		return fmt.Errorf("failed to create metadata table: %w", err)
	}
	return upsertMetadata(ctx, pool, map[string]string{
		KeySchemaVersion: version.Short(),
		KeyInitializedAt: time.Now().UTC().Format(time.RFC3339),
	})
}

// RecordSeed stores the counts of the last seed run.
func RecordSeed(ctx context.Context, pool *pgxpool.Pool, users, accounts int) error {
	return upsertMetadata(ctx, pool, map[string]string{
		KeySeedUsers:    strconv.Itoa(users),
		KeySeedAccounts: strconv.Itoa(accounts),
	})
}

func upsertMetadata(ctx context.Context, pool *pgxpool.Pool, metadata map[string]string) error {
	for key, value := range metadata {
		_, err := pool.Exec(ctx, `
            INSERT INTO brokeradmin_metadata (key, value) VALUES ($1, $2)
            ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
        `, key, value)
		if err != nil {
			return fmt.Errorf("failed to save metadata %s: %w", key, err)
		}
	}
	logging.Debug().Int("keys", len(metadata)).Msg("Saved metadata")
	return nil
}

// ReadSchemaInfo loads the metadata recorded by init and seed. It returns
// ErrNotInitialized when the metadata table does not exist.
func ReadSchemaInfo(ctx context.Context, pool *pgxpool.Pool) (*SchemaInfo, error) {
	exists, err := MetadataExists(ctx, pool)
	if err != nil {
		return nil, fmt.Errorf("failed to check metadata: %w", err)
	}
	if !exists {
		return nil, ErrNotInitialized
	}

	rows, err := pool.Query(ctx, `SELECT key, value FROM brokeradmin_metadata`)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}
	defer rows.Close()

	info := &SchemaInfo{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to read metadata: %w", err)
		}
		switch key {
		case KeySchemaVersion:
			info.SchemaVersion = value
		case KeyInitializedAt:
			// A malformed stamp leaves the zero time.
			info.InitializedAt, _ = time.Parse(time.RFC3339, value)
		case KeySeedUsers:
			info.SeedUsers, _ = strconv.Atoi(value)
		case KeySeedAccounts:
			info.SeedAccounts, _ = strconv.Atoi(value)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}
	return info, nil
}

// DropMetadata drops the metadata table.
func DropMetadata(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+metadataTable)
	return err
}

// MetadataExists checks if the metadata table exists.
func MetadataExists(ctx context.Context, pool *pgxpool.Pool) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT FROM information_schema.tables
            WHERE table_name = $1
        )
    `, metadataTable).Scan(&exists)
	return exists, err
}

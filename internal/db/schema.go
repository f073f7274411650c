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
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-brokeradmin/internal/logging"
)

// schemaStatements create the document and directory tables.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS documents (
        collection TEXT        NOT NULL,
        id         TEXT        NOT NULL,
        data       JSONB       NOT NULL DEFAULT '{}'::jsonb,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
        PRIMARY KEY (collection, id)
    )`,
	`CREATE INDEX IF NOT EXISTS documents_data_gin
        ON documents USING GIN (data jsonb_path_ops)`,
	`CREATE INDEX IF NOT EXISTS documents_created_at
        ON documents (collection, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS directory_users (
        id              TEXT        PRIMARY KEY,
        email           TEXT        NOT NULL UNIQUE,
        password_hash   TEXT        NOT NULL,
        display_name    TEXT        NOT NULL DEFAULT '',
        phone_number    TEXT        NOT NULL DEFAULT '',
        email_verified  BOOLEAN     NOT NULL DEFAULT false,
        disabled        BOOLEAN     NOT NULL DEFAULT false,
        role            TEXT        NOT NULL DEFAULT '',
        created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
        last_sign_in_at TIMESTAMPTZ
    )`,
}

// dropStatements remove everything created by CreateSchema.
var dropStatements = []string{
	`DROP TABLE IF EXISTS documents`,
	`DROP TABLE IF EXISTS directory_users`,
}

// CreateSchema creates the tables used by the document store and the
// identity directory. It is safe to run repeatedly.
func CreateSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	logging.Debug().Int("statements", len(schemaStatements)).Msg("Schema created")
	return nil
}

// DropSchema drops the document and directory tables.
func DropSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range dropStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to drop schema: %w", err)
		}
	}
	return nil
}

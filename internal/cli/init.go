//-------------------------------------------------------------------------
//
// pgEdge Brokerage Admin
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-brokeradmin/internal/db"
	"github.com/pgEdge/pgedge-brokeradmin/internal/logging"
)

var initDropExisting bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a database with the document and directory schema",
	Long: `Initialize a PostgreSQL database with the tables used by the
document store and the identity directory, and record schema metadata.
Running init again on an initialized database is harmless.

Example:
  pgedge-brokeradmin init --connection "postgres://..."
  pgedge-brokeradmin init --connection "postgres://..." --drop-existing`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initDropExisting, "drop-existing", false,
		"drop existing tables and data before initialization")
}

func runInit(cmd *cobra.Command, args []string) error {
	if err := cfg.ValidateInit(); err != nil {
		return err
	}

	logging.Info().Msg("Initializing database")

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Connection, db.PoolOptions{
		MaxConns: int32(cfg.Pool.MaxConns),
		MinConns: int32(cfg.Pool.MinConns),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if initDropExisting {
		logging.Warn().Msg("Dropping existing schema")
		if err := db.DropSchema(ctx, pool); err != nil {
			return fmt.Errorf("failed to drop schema: %w", err)
		}
		if err := db.DropMetadata(ctx, pool); err != nil {
			logging.Debug().Err(err).Msg("No metadata table to drop")
		}
	}

	logging.Info().Msg("Creating schema")
	if err := db.CreateSchema(ctx, pool); err != nil {
		return err
	}

	if err := db.SaveMetadata(ctx, pool); err != nil {
		return fmt.Errorf("failed to save metadata: %w", err)
	}

	logging.Info().Msg("Database initialization complete")
	return nil
}

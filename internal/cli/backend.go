//-------------------------------------------------------------------------
//
// pgEdge Brokerage Admin
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package cli

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-brokeradmin/internal/config"
	"github.com/pgEdge/pgedge-brokeradmin/internal/datagen"
	"github.com/pgEdge/pgedge-brokeradmin/internal/db"
	"github.com/pgEdge/pgedge-brokeradmin/internal/directory"
	"github.com/pgEdge/pgedge-brokeradmin/internal/logging"
	"github.com/pgEdge/pgedge-brokeradmin/internal/seed"
	"github.com/pgEdge/pgedge-brokeradmin/internal/store"
	"github.com/pgEdge/pgedge-brokeradmin/pkg/version"
)

// backend is the store and directory a command works against.
type backend struct {
	store     store.Store
	directory directory.Directory
	pool      *pgxpool.Pool
}

// openBackend connects the configured store. The memory backend starts
// empty and lives only as long as the process.
func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	hashCost := directory.WithHashCost(cfg.Auth.BcryptCost)

	if cfg.Store == config.StoreMemory {
		logging.Warn().Msg("Using the in-memory store; data is lost on exit")
		return &backend{
			store:     store.NewMemoryStore(),
			directory: directory.NewMemoryDirectory(hashCost),
		}, nil
	}

	pool, err := db.Connect(ctx, cfg.Connection, db.PoolOptions{
		MaxConns: int32(cfg.Pool.MaxConns),
		MinConns: int32(cfg.Pool.MinConns),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	info, err := db.ReadSchemaInfo(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	if info.SchemaVersion != version.Short() {
		logging.Warn().
			Str("schema_version", info.SchemaVersion).
			Str("binary_version", version.Short()).
			Msg("Database was initialized by a different version")
	}
	logging.Debug().
		Time("initialized_at", info.InitializedAt).
		Bool("seeded", info.Seeded()).
		Int("seed_users", info.SeedUsers).
		Int("seed_accounts", info.SeedAccounts).
		Msg("Opened database")

	return &backend{
		store:     store.NewPostgresStore(pool),
		directory: directory.NewPostgresDirectory(pool, hashCost),
		pool:      pool,
	}, nil
}

// Close releases the connection pool, if any.
func (b *backend) Close() {
	if b.pool != nil {
		b.pool.Close()
	}
}

// seedDemo fills b with the configured demo data set.
func seedDemo(ctx context.Context, b *backend, cfg *config.Config) (*seed.Result, error) {
	counts := datagen.DefaultSeedCounts()
	counts.CDS = cfg.Seed.CDS
	counts.Users = cfg.Seed.Users
	counts.AccountsPerUser = cfg.Seed.AccountsPerUser
	counts.TransactionsPerAccount = cfg.Seed.TransactionsPerAccount

	return seed.New(b.store, b.directory, nil).Seed(ctx, seed.Options{
		Counts:     counts,
		Password:   cfg.Seed.Password,
		AdminEmail: cfg.Seed.AdminEmail,
		AdminRole:  cfg.Auth.AdminRole,
	})
}

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

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-brokeradmin/internal/config"
	"github.com/pgEdge/pgedge-brokeradmin/internal/db"
	"github.com/pgEdge/pgedge-brokeradmin/internal/logging"
)

var (
	seedCDS                    int
	seedUsers                  int
	seedAccountsPerUser        int
	seedTransactionsPerAccount int
	seedPassword               string
	seedAdminEmail             string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate an initialized database with demo data",
	Long: `Create demo CDS records, directory users with profiles, stock accounts
and transactions. An admin user holding the configured admin role is
created (or promoted) first.

Example:
  pgedge-brokeradmin seed --users 50 --accounts-per-user 3
  pgedge-brokeradmin seed --admin-email ops@example.com --password s3cret!`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().IntVar(&seedCDS, "cds", 0, "number of CDS records")
	seedCmd.Flags().IntVar(&seedUsers, "users", 0, "number of directory users")
	seedCmd.Flags().IntVar(&seedAccountsPerUser, "accounts-per-user", 0,
		"stock accounts per user")
	seedCmd.Flags().IntVar(&seedTransactionsPerAccount, "transactions-per-account", 0,
		"transactions per stock account")
	seedCmd.Flags().StringVar(&seedPassword, "password", "",
		"password given to every seeded user")
	seedCmd.Flags().StringVar(&seedAdminEmail, "admin-email", "",
		"email of the admin user to create or promote")
}

// applySeedFlags overrides the seed configuration with CLI flags.
func applySeedFlags() {
	if seedCDS > 0 {
		cfg.Seed.CDS = seedCDS
	}
	if seedUsers > 0 {
		cfg.Seed.Users = seedUsers
	}
	if seedAccountsPerUser > 0 {
		cfg.Seed.AccountsPerUser = seedAccountsPerUser
	}
	if seedTransactionsPerAccount > 0 {
		cfg.Seed.TransactionsPerAccount = seedTransactionsPerAccount
	}
	if seedPassword != "" {
		cfg.Seed.Password = seedPassword
	}
	if seedAdminEmail != "" {
		cfg.Seed.AdminEmail = seedAdminEmail
	}
}

func runSeed(cmd *cobra.Command, args []string) error {
	applySeedFlags()
	if err := cfg.ValidateSeed(); err != nil {
		return err
	}
	if cfg.Store != config.StorePostgres {
		return fmt.Errorf("seed requires the postgres store; use 'serve --seed' with the memory store")
	}

	ctx := context.Background()
	b, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	res, err := seedDemo(ctx, b, cfg)
	if err != nil {
		return err
	}

	if err := db.RecordSeed(ctx, b.pool, res.Users, res.Accounts); err != nil {
		return fmt.Errorf("failed to save metadata: %w", err)
	}

	logging.Info().
		Int("cds", res.CDS).
		Int("users", res.Users).
		Int("accounts", res.Accounts).
		Int("transactions", res.Transactions).
		Msg("Seeding finished")
	return nil
}

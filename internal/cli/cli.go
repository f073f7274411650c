//-------------------------------------------------------------------------
//
// pgEdge Brokerage Admin
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for pgedge-brokeradmin.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-brokeradmin/internal/config"
	"github.com/pgEdge/pgedge-brokeradmin/internal/logging"
	"github.com/pgEdge/pgedge-brokeradmin/pkg/version"
)

var (
	// Global flags
	cfgFile    string
	connection string
	storeKind  string
	logLevel   string
	logFormat  string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "pgedge-brokeradmin",
		Short: "Brokerage account administration service",
		Long: `pgedge-brokeradmin manages a brokerage's depositories (CDS), stock
accounts, transactions and user profiles on top of a PostgreSQL document
store and identity directory.

It serves an admin HTTP API, an account owner dashboard with a simulated
live valuation, and commands to initialize, seed and inspect the data.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./pgedge-brokeradmin.yaml)")
	rootCmd.PersistentFlags().StringVar(&connection, "connection", "",
		"PostgreSQL connection string")
	rootCmd.PersistentFlags().StringVar(&storeKind, "store", "",
		"store backend (postgres, memory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"log output format (console, json)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(accountsCmd)
	rootCmd.AddCommand(watchCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if connection != "" {
		cfg.Connection = connection
	}
	if storeKind != "" {
		cfg.Store = storeKind
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}

	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}

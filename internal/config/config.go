//-------------------------------------------------------------------------
//
// pgEdge Brokerage Admin
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for pgedge-brokeradmin.
// Configuration is loaded from config files and CLI flags (no environment variables).
// CLI flags take precedence over config file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Store backends.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds all configuration for pgedge-brokeradmin.
type Config struct {
	// Connection is the PostgreSQL connection string.
	Connection string `mapstructure:"connection"`

	// Store selects the backend for documents and directory users:
	// postgres or memory.
	Store string `mapstructure:"store"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// LogFormat is console or json.
	LogFormat string `mapstructure:"log_format"`

	// Pool tunes the PostgreSQL connection pool.
	Pool PoolConfig `mapstructure:"pool"`

	// Server holds configuration for the serve subcommand.
	Server ServerConfig `mapstructure:"server"`

	// Auth holds authentication and authorization settings.
	Auth AuthConfig `mapstructure:"auth"`

	// Valuation holds configuration for the displayed valuation.
	Valuation ValuationConfig `mapstructure:"valuation"`

	// Seed holds configuration for the seed subcommand.
	Seed SeedConfig `mapstructure:"seed"`
}

// PoolConfig holds connection pool limits.
type PoolConfig struct {
	// MaxConns is the maximum number of database connections.
	MaxConns int `mapstructure:"max_conns"`

	// MinConns is the number of connections kept open.
	MinConns int `mapstructure:"min_conns"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `mapstructure:"addr"`

	// TrustHeaders accepts X-User-ID / X-User-Email from an authenticating
	// proxy. Leave off unless the server is only reachable through one.
	TrustHeaders bool `mapstructure:"trust_headers"`

	// ShutdownTimeout is how long to wait for in-flight requests (in seconds).
	ShutdownTimeout int `mapstructure:"shutdown_timeout"`

	// Metrics exposes Prometheus metrics on /metrics.
	Metrics bool `mapstructure:"metrics"`
}

// AuthConfig holds authorization settings.
type AuthConfig struct {
	// AdminRole is the directory role claim that grants admin access.
	AdminRole string `mapstructure:"admin_role"`

	// BcryptCost is the cost used to hash directory passwords.
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

// ValuationConfig holds settings for the valuation ticker.
type ValuationConfig struct {
	// TickInterval is the resample interval in milliseconds.
	TickInterval int `mapstructure:"tick_interval"`

	// ReportInterval is how often the watch command prints statistics (in seconds).
	ReportInterval int `mapstructure:"report_interval"`
}

// SeedConfig holds the demo data volumes.
type SeedConfig struct {
	CDS                    int    `mapstructure:"cds"`
	Users                  int    `mapstructure:"users"`
	AccountsPerUser        int    `mapstructure:"accounts_per_user"`
	TransactionsPerAccount int    `mapstructure:"transactions_per_account"`
	Password               string `mapstructure:"password"`
	AdminEmail             string `mapstructure:"admin_email"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Store:     StorePostgres,
		LogLevel:  "info",
		LogFormat: "console",
		Pool: PoolConfig{
			MaxConns: 20,
			MinConns: 2,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 5,
			Metrics:         true,
		},
		Auth: AuthConfig{
			AdminRole:  "admin",
			BcryptCost: 10,
		},
		Valuation: ValuationConfig{
			TickInterval:   2000, // 2 seconds
			ReportInterval: 10,
		},
		Seed: SeedConfig{
			CDS:                    5,
			Users:                  10,
			AccountsPerUser:        2,
			TransactionsPerAccount: 5,
			Password:               "changeme",
			AdminEmail:             "admin@web.com",
		},
	}
}

// Load reads configuration from config files.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./pgedge-brokeradmin.yaml
// 3. ~/.config/pgedge-brokeradmin/config.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("pgedge-brokeradmin")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "pgedge-brokeradmin"))
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// TickInterval returns the valuation tick interval as a duration.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Valuation.TickInterval) * time.Millisecond
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	switch c.Store {
	case StorePostgres:
		if c.Connection == "" {
			return fmt.Errorf("connection string is required")
		}
		if c.Pool.MaxConns < 1 {
			return fmt.Errorf("pool.max_conns must be at least 1")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("store must be '%s' or '%s'", StorePostgres, StoreMemory)
	}
	if c.LogFormat != "" && c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("log_format must be 'console' or 'json'")
	}
	return nil
}

// ValidateInit checks configuration required for the init command.
func (c *Config) ValidateInit() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Store != StorePostgres {
		return fmt.Errorf("init requires the postgres store")
	}
	return nil
}

// ValidateServe checks configuration required for the serve command.
func (c *Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("server.shutdown_timeout must be non-negative")
	}
	if c.Auth.AdminRole == "" {
		return fmt.Errorf("auth.admin_role is required")
	}
	return c.validateValuation()
}

// ValidateSeed checks configuration required for the seed command.
func (c *Config) ValidateSeed() error {
	if err := c.Validate(); err != nil {
		return err
	}
	s := c.Seed
	if s.CDS < 1 || s.Users < 1 {
		return fmt.Errorf("seed.cds and seed.users must be at least 1")
	}
	if s.AccountsPerUser < 0 || s.TransactionsPerAccount < 0 {
		return fmt.Errorf("seed counts must be non-negative")
	}
	if len(s.Password) < 6 {
		return fmt.Errorf("seed.password must be at least 6 characters")
	}
	return nil
}

// ValidateWatch checks configuration required for the watch command.
func (c *Config) ValidateWatch() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Valuation.ReportInterval < 1 {
		return fmt.Errorf("valuation.report_interval must be at least 1 second")
	}
	return c.validateValuation()
}

func (c *Config) validateValuation() error {
	if c.Valuation.TickInterval < 1 {
		return fmt.Errorf("valuation.tick_interval must be at least 1 millisecond")
	}
	return nil
}

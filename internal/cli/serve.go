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
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-brokeradmin/internal/api"
	"github.com/pgEdge/pgedge-brokeradmin/internal/logging"
	"github.com/pgEdge/pgedge-brokeradmin/internal/metrics"
	"github.com/pgEdge/pgedge-brokeradmin/internal/service"
	"github.com/pgEdge/pgedge-brokeradmin/internal/valuation"
)

var (
	serveAddr         string
	serveTrustHeaders bool
	serveSeed         bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the admin and dashboard HTTP API",
	Long: `Serve the HTTP API until interrupted with Ctrl+C.

Admin routes live under /api/v1 and require a directory user holding the
configured admin role. Account owners use /api/v1/me. Callers authenticate
with HTTP Basic credentials, or with X-User-ID headers when
--trust-headers is set behind an authenticating proxy.

Example:
  pgedge-brokeradmin serve --addr :8080
  pgedge-brokeradmin serve --store memory --seed`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "",
		"listen address (default: :8080)")
	serveCmd.Flags().BoolVar(&serveTrustHeaders, "trust-headers", false,
		"accept identity headers from an authenticating proxy")
	serveCmd.Flags().BoolVar(&serveSeed, "seed", false,
		"seed demo data on startup")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if serveTrustHeaders {
		cfg.Server.TrustHeaders = true
	}
	if err := cfg.ValidateServe(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	if serveSeed {
		if _, err := seedDemo(ctx, b, cfg); err != nil {
			return err
		}
	}

	var collector *metrics.Collector
	st := b.store
	if cfg.Server.Metrics {
		collector = metrics.NewCollector()
		st = collector.InstrumentStore(st)
	}

	svc := service.New(service.Config{
		Store:     st,
		Directory: b.directory,
		Valuation: valuation.Options{Interval: cfg.TickInterval()},
	})

	router := api.SetupRouter(api.RouterConfig{
		Service:      svc,
		Authorizer:   service.NewRoleAuthorizer(b.directory, cfg.Auth.AdminRole),
		Metrics:      collector,
		TrustHeaders: cfg.Server.TrustHeaders,
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().
			Str("addr", cfg.Server.Addr).
			Str("store", cfg.Store).
			Bool("trust_headers", cfg.Server.TrustHeaders).
			Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		logging.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	logging.Info().Msg("Server stopped")
	return nil
}

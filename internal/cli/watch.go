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
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-brokeradmin/internal/config"
	"github.com/pgEdge/pgedge-brokeradmin/internal/domain"
	"github.com/pgEdge/pgedge-brokeradmin/internal/logging"
	"github.com/pgEdge/pgedge-brokeradmin/internal/metrics"
	"github.com/pgEdge/pgedge-brokeradmin/internal/service"
	"github.com/pgEdge/pgedge-brokeradmin/internal/valuation"
)

var (
	watchUserID         string
	watchLimit          int
	watchTickInterval   int
	watchReportInterval int
	watchDuration       int
	watchMetricsAddr    string
	watchSeed           bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Animate the displayed valuation of stock accounts",
	Long: `Run the dashboard valuation for a set of accounts in the terminal.

Accounts whose estimated total time lies in the future fluctuate on every
tick; once the target time passes they lock to their stored values. The
watch ends when every account has locked, when the duration expires, or
when interrupted with Ctrl+C. Stored accounts are never modified.

Example:
  pgedge-brokeradmin watch --user-id 01J...
  pgedge-brokeradmin watch --limit 50 --tick-interval 500 --duration 10
  pgedge-brokeradmin watch --store memory --seed --metrics-addr :9100`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchUserID, "user-id", "",
		"watch only this owner's accounts")
	watchCmd.Flags().IntVar(&watchLimit, "limit", 0,
		"maximum accounts to watch (default: 20)")
	watchCmd.Flags().IntVar(&watchTickInterval, "tick-interval", 0,
		"resample interval in milliseconds (default: 2000)")
	watchCmd.Flags().IntVar(&watchReportInterval, "report-interval", 0,
		"statistics reporting interval in seconds")
	watchCmd.Flags().IntVar(&watchDuration, "duration", 0,
		"duration to watch in minutes (0 = until all accounts lock)")
	watchCmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "",
		"serve Prometheus metrics on this address while watching")
	watchCmd.Flags().BoolVar(&watchSeed, "seed", false,
		"seed demo data before watching")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchTickInterval > 0 {
		cfg.Valuation.TickInterval = watchTickInterval
	}
	if watchReportInterval > 0 {
		cfg.Valuation.ReportInterval = watchReportInterval
	}
	if err := cfg.ValidateWatch(); err != nil {
		return err
	}

	ctx := context.Background()
	b, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	if watchSeed {
		if _, err := seedDemo(ctx, b, cfg); err != nil {
			return err
		}
	} else if cfg.Store == config.StoreMemory {
		logging.Warn().Msg("The memory store is empty; pass --seed to watch demo accounts")
	}

	svc := service.New(service.Config{Store: b.store, Directory: b.directory})
	var accounts []domain.StockAccount
	if watchUserID != "" {
		accounts, err = svc.FilterAccounts(ctx, domain.AccountFilter{UserID: &watchUserID, Limit: watchLimit})
	} else {
		accounts, err = svc.ListAccounts(ctx, watchLimit)
	}
	if err != nil {
		return fmt.Errorf("failed to load accounts: %w", err)
	}
	if len(accounts) == 0 {
		cmd.Println("No accounts to watch.")
		return nil
	}

	wcfg := valuation.WatcherConfig{
		Interval:       cfg.TickInterval(),
		ReportInterval: time.Duration(cfg.Valuation.ReportInterval) * time.Second,
	}
	if watchMetricsAddr != "" {
		collector := metrics.NewCollector()
		wcfg.Observer = collector
		stop := serveMetrics(watchMetricsAddr, collector)
		defer stop()
	}

	var cancel context.CancelFunc
	if watchDuration > 0 {
		ctx, cancel = context.WithTimeout(ctx, time.Duration(watchDuration)*time.Minute)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case sig := <-sigChan:
			logging.Info().
				Str("signal", sig.String()).
				Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	watcher := valuation.NewWatcher(accounts, wcfg)
	if err := watcher.Run(ctx); err != nil {
		return fmt.Errorf("watch error: %w", err)
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		logging.Info().Msg("Duration limit reached, stopping watch")
	}
	watcher.PrintSummary()
	return nil
}

// serveMetrics exposes collector on addr until the returned func is called.
func serveMetrics(addr string, collector *metrics.Collector) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		logging.Info().Str("addr", addr).Msg("Serving metrics")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error().Err(err).Msg("Metrics server failed")
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}
}

//-------------------------------------------------------------------------
//
// pgEdge Brokerage Admin
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package valuation

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pgEdge/pgedge-brokeradmin/internal/domain"
	"github.com/pgEdge/pgedge-brokeradmin/internal/logging"
)

// WatcherConfig holds configuration for a Watcher.
type WatcherConfig struct {
	Interval       time.Duration // resample cadence per account
	ReportInterval time.Duration // statistics log cadence, 0 disables
	Now            func() time.Time
	Factor         func() float64
	OnChange       func(Snapshot)
	Observer       Observer
}

// Watcher animates the valuation of several accounts at once and
// periodically logs statistics.
type Watcher struct {
	animators      []*Animator
	reportInterval time.Duration

	resamples atomic.Int64
	locks     atomic.Int64
	startTime time.Time
}

// NewWatcher creates a watcher with one animator per account.
func NewWatcher(accounts []domain.StockAccount, cfg WatcherConfig) *Watcher {
	w := &Watcher{reportInterval: cfg.ReportInterval}

	opts := Options{
		Interval: cfg.Interval,
		Now:      cfg.Now,
		Factor:   cfg.Factor,
		OnChange: cfg.OnChange,
		Observer: &countingObserver{next: cfg.Observer, w: w},
	}
	for _, account := range accounts {
		w.animators = append(w.animators, New(BaselineOf(account), opts))
	}
	return w
}

// Run starts every animator and blocks until ctx is cancelled or every
// account has locked. All animators are stopped before Run returns.
func (w *Watcher) Run(ctx context.Context) error {
	w.startTime = time.Now()

	fluctuating := 0
	for _, a := range w.animators {
		if a.Snapshot().State == Fluctuating {
			fluctuating++
		}
	}
	logging.Info().
		Int("accounts", len(w.animators)).
		Int("fluctuating", fluctuating).
		Msg("Starting valuation watch")

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for _, a := range w.animators {
		a.Start(runCtx)
		wg.Add(1)
		go func(a *Animator) {
			defer wg.Done()
			<-a.Done()
		}(a)
	}

	if w.reportInterval > 0 {
		go w.reporter(runCtx)
	}

	allLocked := make(chan struct{})
	go func() {
		wg.Wait()
		close(allLocked)
	}()

	select {
	case <-ctx.Done():
	case <-allLocked:
		logging.Info().Msg("All valuations locked")
	}

	for _, a := range w.animators {
		a.Stop()
	}
	return nil
}

// Snapshots returns the current snapshot of every account in input order.
func (w *Watcher) Snapshots() []Snapshot {
	out := make([]Snapshot, 0, len(w.animators))
	for _, a := range w.animators {
		out = append(out, a.Snapshot())
	}
	return out
}

func (w *Watcher) reporter(ctx context.Context) {
	ticker := time.NewTicker(w.reportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			locked := 0
			for _, s := range w.Snapshots() {
				if s.State == Locked {
					locked++
				}
			}
			logging.Info().
				Int64("resamples", w.resamples.Load()).
				Int("locked", locked).
				Int("fluctuating", len(w.animators)-locked).
				Msg("Statistics")
		}
	}
}

// PrintSummary logs a final summary of the watch.
func (w *Watcher) PrintSummary() {
	logging.Info().
		Dur("duration", time.Since(w.startTime)).
		Int("accounts", len(w.animators)).
		Int64("resamples", w.resamples.Load()).
		Int64("locked_during_watch", w.locks.Load()).
		Msg("Final summary")

	for _, s := range w.Snapshots() {
		logging.Info().
			Str("account_id", s.AccountID).
			Str("state", s.State.String()).
			Str("estimated_total", s.EstimatedTotal.StringFixed(2)).
			Str("profit", s.Profit.StringFixed(2)).
			Msg("")
	}
}

type countingObserver struct {
	next Observer
	w    *Watcher
}

func (o *countingObserver) Started(accountID string) {
	if o.next != nil {
		o.next.Started(accountID)
	}
}

func (o *countingObserver) Stopped(accountID string) {
	if o.next != nil {
		o.next.Stopped(accountID)
	}
}

func (o *countingObserver) Resampled(accountID string) {
	o.w.resamples.Add(1)
	if o.next != nil {
		o.next.Resampled(accountID)
	}
}

func (o *countingObserver) Locked(accountID string) {
	o.w.locks.Add(1)
	if o.next != nil {
		o.next.Locked(accountID)
	}
}

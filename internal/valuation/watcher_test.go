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
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-brokeradmin/internal/domain"
)

func TestWatcherRunsUntilAllLocked(t *testing.T) {
	clock := &movingClock{t: epoch, step: 15 * time.Second}
	accounts := []domain.StockAccount{
		{ID: "locked", EstimatedTotal: decimal.NewFromInt(10), Profit: decimal.NewFromInt(1)},
		{
			ID:                 "moving",
			EstimatedTotal:     decimal.NewFromInt(200),
			Profit:             decimal.NewFromInt(20),
			EstimatedTotalTime: epoch.Unix()/60 + 1,
		},
	}
	obs := &recordingObserver{}
	w := NewWatcher(accounts, WatcherConfig{
		Interval:       time.Millisecond,
		ReportInterval: time.Millisecond,
		Now:            clock.Now,
		Observer:       obs,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := w.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if ctx.Err() != nil {
		t.Fatal("Expected Run to return once every account locked")
	}

	snaps := w.Snapshots()
	if len(snaps) != 2 {
		t.Fatalf("Expected 2 snapshots, got %d", len(snaps))
	}
	for _, s := range snaps {
		if s.State != Locked {
			t.Errorf("Expected %s locked, got %s", s.AccountID, s.State)
		}
	}
	if !snaps[1].EstimatedTotal.Equal(decimal.NewFromInt(200)) {
		t.Errorf("Expected locked total 200, got %s", snaps[1].EstimatedTotal)
	}
	if w.locks.Load() != 1 || obs.locked.Load() != 1 {
		t.Errorf("Expected one lock transition, got %d", w.locks.Load())
	}
	w.PrintSummary()
}

func TestWatcherStopsOnCancel(t *testing.T) {
	accounts := []domain.StockAccount{{
		ID:                 "a",
		EstimatedTotal:     decimal.NewFromInt(100),
		EstimatedTotalTime: epoch.Unix()/60 + 60,
	}}
	w := NewWatcher(accounts, WatcherConfig{Interval: time.Millisecond, Now: fixedClock(epoch)})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := w.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if s := w.Snapshots()[0]; s.State != Fluctuating || s.Ticks == 0 {
		t.Errorf("Expected fluctuating with ticks, got %s after %d ticks", s.State, s.Ticks)
	}
}

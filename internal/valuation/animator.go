//-------------------------------------------------------------------------
//
// pgEdge Brokerage Admin
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package valuation derives the displayed valuation of a stock account.
// Before the account's settlement instant the displayed estimated total
// fluctuates around the stored value; from the settlement instant on it is
// locked to the stored value. Nothing here writes to the store.
package valuation

import (
	"context"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-brokeradmin/internal/domain"
	"github.com/pgEdge/pgedge-brokeradmin/internal/logging"
)

// DefaultInterval is the resample cadence.
const DefaultInterval = 2 * time.Second

// Bounds of the resample factor.
const (
	MinFactor = 0.95
	MaxFactor = 1.05
)

// State is the valuation state of an account view.
type State int

const (
	// Locked displays the stored values and never changes.
	Locked State = iota
	// Fluctuating resamples the displayed values on every tick.
	Fluctuating
)

// String returns the state name.
func (s State) String() string {
	if s == Fluctuating {
		return "fluctuating"
	}
	return "locked"
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Trend compares a displayed value with the one it replaced.
type Trend int

const (
	Flat Trend = iota
	Up
	Down
)

// String returns the trend name.
func (t Trend) String() string {
	switch t {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "flat"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Trend) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func trendOf(current, previous decimal.Decimal) Trend {
	switch current.Cmp(previous) {
	case 1:
		return Up
	case -1:
		return Down
	default:
		return Flat
	}
}

// Baseline is the stored valuation of an account.
type Baseline struct {
	AccountID      string
	EstimatedTotal decimal.Decimal
	Profit         decimal.Decimal

	// EstimatedTotalTime is the settlement instant in minutes since the
	// Unix epoch; zero means no settlement window.
	EstimatedTotalTime int64
}

// BaselineOf extracts the stored valuation of account.
func BaselineOf(account domain.StockAccount) Baseline {
	return Baseline{
		AccountID:          account.ID,
		EstimatedTotal:     account.EstimatedTotal,
		Profit:             account.Profit,
		EstimatedTotalTime: account.EstimatedTotalTime,
	}
}

// TargetFromMinutes converts a minutes-since-epoch value to an instant.
// Zero and negative values yield the zero time.
func TargetFromMinutes(minutes int64) time.Time {
	if minutes <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(minutes * 60000).UTC()
}

// MinutesFromTarget converts an instant to whole minutes since the epoch.
func MinutesFromTarget(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli() / 60000
}

// Snapshot is the displayed valuation at one point in time.
type Snapshot struct {
	AccountID              string          `json:"account_id"`
	State                  State           `json:"state"`
	EstimatedTotal         decimal.Decimal `json:"estimated_total"`
	Profit                 decimal.Decimal `json:"profit"`
	PreviousEstimatedTotal decimal.Decimal `json:"previous_estimated_total"`
	PreviousProfit         decimal.Decimal `json:"previous_profit"`
	TotalTrend             Trend           `json:"total_trend"`
	ProfitTrend            Trend           `json:"profit_trend"`
	Target                 *time.Time      `json:"target,omitempty"`
	Ticks                  int             `json:"ticks"`
}

// Observer receives animator lifecycle events.
type Observer interface {
	Started(accountID string)
	Stopped(accountID string)
	Resampled(accountID string)
	Locked(accountID string)
}

// Options configures an Animator.
type Options struct {
	// Interval is the resample cadence. Defaults to DefaultInterval.
	Interval time.Duration

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// Factor draws the resample factor. Defaults to a uniform draw from
	// [MinFactor, MaxFactor].
	Factor func() float64

	// OnChange, if set, is called with every new snapshot.
	OnChange func(Snapshot)

	// Observer, if set, receives lifecycle events.
	Observer Observer
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Factor == nil {
		o.Factor = func() float64 { return gofakeit.Float64Range(MinFactor, MaxFactor) }
	}
	return o
}

// Animator drives the displayed valuation of one account view.
type Animator struct {
	opts Options

	mu     sync.Mutex
	base   Baseline
	target time.Time
	snap   Snapshot
	gen    uint64
	parent context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates an animator for base. The initial state is evaluated
// against the current time.
func New(base Baseline, opts Options) *Animator {
	a := &Animator{opts: opts.withDefaults()}
	a.init(base)
	return a
}

// init must be called with a.mu held or before a is shared.
func (a *Animator) init(base Baseline) {
	a.base = base
	a.target = TargetFromMinutes(base.EstimatedTotalTime)
	a.snap = Snapshot{
		AccountID:              base.AccountID,
		State:                  Locked,
		EstimatedTotal:         base.EstimatedTotal,
		Profit:                 base.Profit,
		PreviousEstimatedTotal: base.EstimatedTotal,
		PreviousProfit:         base.Profit,
	}
	if !a.target.IsZero() {
		target := a.target
		a.snap.Target = &target
		if a.target.After(a.opts.Now()) {
			a.snap.State = Fluctuating
		}
	}
}

// Snapshot returns the current displayed valuation.
func (a *Animator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snap
}

// Start begins resampling on the configured interval until ctx is
// cancelled, Stop is called, or the settlement instant is reached. A
// locked animator starts nothing. Calling Start on a running animator is
// a no-op.
func (a *Animator) Start(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.parent = ctx
	a.startLocked()
}

// startLocked must be called with a.mu held.
func (a *Animator) startLocked() {
	if a.cancel != nil || a.snap.State == Locked || a.parent == nil {
		return
	}
	ctx, cancel := context.WithCancel(a.parent)
	done := make(chan struct{})
	a.cancel = cancel
	a.done = done
	go a.run(ctx, cancel, a.base.AccountID, a.gen, done)
}

func (a *Animator) run(ctx context.Context, cancel context.CancelFunc, accountID string, gen uint64, done chan struct{}) {
	// Runs after done is closed. Stop or Reset may already have taken
	// over the fields, in which case they are left alone.
	defer func() {
		cancel()
		a.mu.Lock()
		if a.done == done {
			a.cancel = nil
			a.done = nil
		}
		a.mu.Unlock()
	}()
	defer close(done)

	if a.opts.Observer != nil {
		a.opts.Observer.Started(accountID)
		defer a.opts.Observer.Stopped(accountID)
	}

	ticker := time.NewTicker(a.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap, ok := a.tick(gen, a.opts.Now())
			if !ok || snap.State == Locked {
				return
			}
		}
	}
}

// Tick applies one resample at now and returns the resulting snapshot.
// A locked animator is left unchanged.
func (a *Animator) Tick(now time.Time) Snapshot {
	a.mu.Lock()
	gen := a.gen
	a.mu.Unlock()

	snap, _ := a.tick(gen, now)
	return snap
}

// tick reports false when gen is stale, in which case nothing changes.
func (a *Animator) tick(gen uint64, now time.Time) (Snapshot, bool) {
	a.mu.Lock()
	if gen != a.gen {
		a.mu.Unlock()
		return Snapshot{}, false
	}
	if a.snap.State == Locked {
		snap := a.snap
		a.mu.Unlock()
		return snap, true
	}

	prevTotal, prevProfit := a.snap.EstimatedTotal, a.snap.Profit
	locked := !now.Before(a.target)
	if locked {
		a.snap.State = Locked
		a.snap.EstimatedTotal = a.base.EstimatedTotal
		a.snap.Profit = a.base.Profit
	} else {
		u := decimal.NewFromFloat(a.opts.Factor())
		total := a.base.EstimatedTotal.Mul(u)
		a.snap.EstimatedTotal = total
		a.snap.Profit = a.base.Profit.Add(total.Sub(a.base.EstimatedTotal))
	}
	a.snap.PreviousEstimatedTotal = prevTotal
	a.snap.PreviousProfit = prevProfit
	a.snap.TotalTrend = trendOf(a.snap.EstimatedTotal, prevTotal)
	a.snap.ProfitTrend = trendOf(a.snap.Profit, prevProfit)
	a.snap.Ticks++
	snap := a.snap
	a.mu.Unlock()

	if obs := a.opts.Observer; obs != nil {
		if locked {
			obs.Locked(snap.AccountID)
		} else {
			obs.Resampled(snap.AccountID)
		}
	}
	if locked {
		logging.Debug().
			Str("account_id", snap.AccountID).
			Str("estimated_total", snap.EstimatedTotal.String()).
			Msg("Valuation locked")
	}
	if a.opts.OnChange != nil {
		a.opts.OnChange(snap)
	}
	return snap, true
}

// Stop cancels resampling and waits for the ticker goroutine to exit.
// After Stop returns no background tick changes the displayed state.
// Stop is idempotent.
func (a *Animator) Stop() {
	a.mu.Lock()
	done := a.stopLocked()
	a.mu.Unlock()

	if done != nil {
		<-done
	}
}

// stopLocked must be called with a.mu held. It returns the channel to
// wait on, if a goroutine was running.
func (a *Animator) stopLocked() chan struct{} {
	a.gen++
	if a.cancel == nil {
		return nil
	}
	a.cancel()
	done := a.done
	a.cancel = nil
	a.done = nil
	return done
}

// Reset stops any resampling, discards the displayed state and starts
// over from base. If the animator had been started it resumes under the
// same parent context.
func (a *Animator) Reset(base Baseline) {
	a.Stop()

	a.mu.Lock()
	defer a.mu.Unlock()
	a.init(base)
	a.startLocked()
}

// Done returns a channel closed when the ticker goroutine exits. If no
// goroutine is running the channel is already closed.
func (a *Animator) Done() <-chan struct{} {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.done == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return a.done
}

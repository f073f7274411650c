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
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-brokeradmin/internal/domain"
)

var epoch = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func baseline(minutesAhead int64) Baseline {
	b := Baseline{
		AccountID:      "acc-1",
		EstimatedTotal: decimal.NewFromInt(1000),
		Profit:         decimal.NewFromInt(100),
	}
	if minutesAhead != 0 {
		b.EstimatedTotalTime = epoch.Unix()/60 + minutesAhead
	}
	return b
}

func TestTargetFromMinutes(t *testing.T) {
	tests := []struct {
		name    string
		minutes int64
		want    time.Time
	}{
		{"zero", 0, time.Time{}},
		{"negative", -5, time.Time{}},
		{"one minute", 1, time.Unix(60, 0).UTC()},
		{"settlement", 29000000, time.UnixMilli(29000000 * 60000).UTC()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TargetFromMinutes(tt.minutes)
			if !got.Equal(tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
			if got.IsZero() {
				return
			}
			if back := MinutesFromTarget(got); back != tt.minutes {
				t.Errorf("Expected round trip to %d, got %d", tt.minutes, back)
			}
		})
	}
}

func TestInitialState(t *testing.T) {
	tests := []struct {
		name         string
		minutesAhead int64
		want         State
	}{
		{"unset", 0, Locked},
		{"past", -10, Locked},
		{"future", 10, Fluctuating},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(baseline(tt.minutesAhead), Options{Now: fixedClock(epoch)})
			s := a.Snapshot()
			if s.State != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, s.State)
			}
			if !s.EstimatedTotal.Equal(decimal.NewFromInt(1000)) || !s.Profit.Equal(decimal.NewFromInt(100)) {
				t.Errorf("Expected stored values initially, got %s / %s", s.EstimatedTotal, s.Profit)
			}
		})
	}
}

func TestTargetEqualToNowIsLocked(t *testing.T) {
	b := baseline(0)
	b.EstimatedTotalTime = epoch.Unix() / 60
	a := New(b, Options{Now: fixedClock(epoch)})
	if a.Snapshot().State != Locked {
		t.Error("Expected a target equal to now to be locked")
	}
}

func TestResampleBoundsAndCorrelation(t *testing.T) {
	a := New(baseline(10), Options{Now: fixedClock(epoch)})
	stored := decimal.NewFromInt(1000)
	low, high := decimal.NewFromInt(950), decimal.NewFromInt(1050)

	for i := 0; i < 200; i++ {
		s := a.Tick(epoch.Add(time.Duration(i) * time.Second))
		if s.State != Fluctuating {
			t.Fatalf("Expected fluctuating, got %s", s.State)
		}
		if s.EstimatedTotal.LessThan(low) || s.EstimatedTotal.GreaterThan(high) {
			t.Errorf("Displayed total %s outside 5%% of %s", s.EstimatedTotal, stored)
		}
		delta := s.EstimatedTotal.Sub(stored)
		if !s.Profit.Equal(decimal.NewFromInt(100).Add(delta)) {
			t.Errorf("Expected profit 100 + %s, got %s", delta, s.Profit)
		}
	}
}

func TestResampleSmallBaselineStaysWithinBounds(t *testing.T) {
	tests := []struct {
		name   string
		stored string
		factor float64
	}{
		{"ten cents at max", "0.10", MaxFactor},
		{"thirty cents at max", "0.30", MaxFactor},
		{"ten cents at min", "0.10", MinFactor},
		{"one cent at max", "0.01", MaxFactor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stored := decimal.RequireFromString(tt.stored)
			b := Baseline{
				AccountID:          "acc-small",
				EstimatedTotal:     stored,
				Profit:             decimal.Zero,
				EstimatedTotalTime: epoch.Unix()/60 + 10,
			}
			a := New(b, Options{Now: fixedClock(epoch), Factor: func() float64 { return tt.factor }})

			s := a.Tick(epoch)
			want := stored.Mul(decimal.NewFromFloat(tt.factor))
			if !s.EstimatedTotal.Equal(want) {
				t.Errorf("Expected total %s, got %s", want, s.EstimatedTotal)
			}
			ratio := s.EstimatedTotal.Div(stored)
			if ratio.LessThan(decimal.NewFromFloat(MinFactor)) || ratio.GreaterThan(decimal.NewFromFloat(MaxFactor)) {
				t.Errorf("Expected ratio within [%v, %v], got %s", MinFactor, MaxFactor, ratio)
			}
			if !s.Profit.Equal(s.EstimatedTotal.Sub(stored)) {
				t.Errorf("Expected profit %s, got %s", s.EstimatedTotal.Sub(stored), s.Profit)
			}
		})
	}
}

func TestTrends(t *testing.T) {
	factors := []float64{1.02, 0.97, 0.97}
	i := 0
	a := New(baseline(10), Options{
		Now:    fixedClock(epoch),
		Factor: func() float64 { f := factors[i]; i++; return f },
	})

	tests := []struct {
		name  string
		total string
		trend Trend
	}{
		{"first draw above baseline", "1020", Up},
		{"second draw below", "970", Down},
		{"repeat draw", "970", Flat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := a.Tick(epoch)
			if !s.EstimatedTotal.Equal(decimal.RequireFromString(tt.total)) {
				t.Errorf("Expected total %s, got %s", tt.total, s.EstimatedTotal)
			}
			if s.TotalTrend != tt.trend || s.ProfitTrend != tt.trend {
				t.Errorf("Expected trend %s, got %s / %s", tt.trend, s.TotalTrend, s.ProfitTrend)
			}
		})
	}
}

func TestLockTransition(t *testing.T) {
	a := New(baseline(1), Options{Now: fixedClock(epoch)})
	target := TargetFromMinutes(baseline(1).EstimatedTotalTime)

	s := a.Tick(target.Add(-time.Second))
	if s.State != Fluctuating {
		t.Fatalf("Expected fluctuating before target, got %s", s.State)
	}

	s = a.Tick(target)
	if s.State != Locked {
		t.Fatalf("Expected locked at target, got %s", s.State)
	}
	if !s.EstimatedTotal.Equal(decimal.NewFromInt(1000)) || !s.Profit.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected stored values after lock, got %s / %s", s.EstimatedTotal, s.Profit)
	}

	ticks := s.Ticks
	for i := 0; i < 5; i++ {
		s = a.Tick(target.Add(time.Duration(i+1) * time.Minute))
	}
	if !s.EstimatedTotal.Equal(decimal.NewFromInt(1000)) || s.Ticks != ticks {
		t.Errorf("Expected no change after lock, got %s after %d ticks", s.EstimatedTotal, s.Ticks)
	}
}

type recordingObserver struct {
	started, stopped, resampled, locked atomic.Int64
}

func (o *recordingObserver) Started(string)   { o.started.Add(1) }
func (o *recordingObserver) Stopped(string)   { o.stopped.Add(1) }
func (o *recordingObserver) Resampled(string) { o.resampled.Add(1) }
func (o *recordingObserver) Locked(string)    { o.locked.Add(1) }

// movingClock advances by step on every call.
type movingClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func (c *movingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.t
	c.t = c.t.Add(c.step)
	return now
}

func TestStartLocksAndExits(t *testing.T) {
	clock := &movingClock{t: epoch, step: 20 * time.Second}
	obs := &recordingObserver{}
	a := New(baseline(1), Options{
		Interval: time.Millisecond,
		Now:      clock.Now,
		Observer: obs,
	})

	a.Start(context.Background())
	select {
	case <-a.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("Expected animator to lock and exit")
	}

	if s := a.Snapshot(); s.State != Locked || !s.EstimatedTotal.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("Expected locked stored value, got %s %s", s.State, s.EstimatedTotal)
	}
	if obs.started.Load() != 1 || obs.stopped.Load() != 1 || obs.locked.Load() != 1 {
		t.Errorf("Unexpected observer counts: started=%d stopped=%d locked=%d",
			obs.started.Load(), obs.stopped.Load(), obs.locked.Load())
	}
	a.Stop()
	a.Stop()
}

func TestLockReleasesTicker(t *testing.T) {
	clock := &movingClock{t: epoch, step: 20 * time.Second}
	parent, cancelParent := context.WithCancel(context.Background())
	defer cancelParent()

	a := New(baseline(1), Options{Interval: time.Millisecond, Now: clock.Now})
	a.Start(parent)

	select {
	case <-a.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("Expected animator to lock and exit")
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		a.mu.Lock()
		released := a.cancel == nil && a.done == nil
		a.mu.Unlock()
		if released {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Expected ticker state to be released after locking")
		}
		time.Sleep(time.Millisecond)
	}

	select {
	case <-a.Done():
	default:
		t.Error("Expected Done to be closed once released")
	}

	// A released animator still accepts Reset and Stop.
	a.Reset(baseline(60))
	deadline = time.Now().Add(5 * time.Second)
	for a.Snapshot().Ticks == 0 {
		if time.Now().After(deadline) {
			t.Fatal("Expected reset animator to resume ticking")
		}
		time.Sleep(time.Millisecond)
	}
	a.Stop()
}

func TestStopHaltsMutation(t *testing.T) {
	a := New(baseline(60), Options{
		Interval: time.Millisecond,
		Now:      fixedClock(epoch),
	})
	a.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	a.Stop()

	before := a.Snapshot()
	time.Sleep(20 * time.Millisecond)
	after := a.Snapshot()
	if before.Ticks != after.Ticks || !before.EstimatedTotal.Equal(after.EstimatedTotal) {
		t.Errorf("Expected no mutation after Stop, ticks %d -> %d", before.Ticks, after.Ticks)
	}
}

func TestContextCancelStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	a := New(baseline(60), Options{Interval: time.Millisecond, Now: fixedClock(epoch)})
	a.Start(ctx)
	cancel()

	select {
	case <-a.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("Expected animator to exit on cancel")
	}
}

func TestResetDiscardsState(t *testing.T) {
	a := New(baseline(60), Options{
		Interval: time.Millisecond,
		Now:      fixedClock(epoch),
	})
	a.Start(context.Background())
	time.Sleep(10 * time.Millisecond)

	next := Baseline{AccountID: "acc-2", EstimatedTotal: decimal.NewFromInt(50), Profit: decimal.Zero}
	a.Reset(next)

	s := a.Snapshot()
	if s.AccountID != "acc-2" || s.State != Locked || s.Ticks != 0 {
		t.Errorf("Expected fresh locked snapshot for acc-2, got %+v", s)
	}
	time.Sleep(10 * time.Millisecond)
	if got := a.Snapshot(); got.Ticks != 0 || !got.EstimatedTotal.Equal(decimal.NewFromInt(50)) {
		t.Errorf("Expected discarded ticker to leave state alone, got %+v", got)
	}
	a.Stop()
}

func TestResetResumes(t *testing.T) {
	a := New(baseline(0), Options{Interval: time.Millisecond, Now: fixedClock(epoch)})
	a.Start(context.Background())
	defer a.Stop()

	a.Reset(baseline(60))
	deadline := time.Now().Add(5 * time.Second)
	for a.Snapshot().Ticks == 0 {
		if time.Now().After(deadline) {
			t.Fatal("Expected reset animator to resume ticking")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestSnapshotJSON(t *testing.T) {
	a := New(baseline(10), Options{Now: fixedClock(epoch), Factor: func() float64 { return 1.01 }})
	a.Tick(epoch)

	data, err := json.Marshal(a.Snapshot())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if out["state"] != "fluctuating" || out["total_trend"] != "up" {
		t.Errorf("Unexpected JSON: %s", data)
	}
	if out["estimated_total"] != "1010" {
		t.Errorf("Expected estimated_total 1010, got %v", out["estimated_total"])
	}
}

func TestBaselineOf(t *testing.T) {
	acc := domain.StockAccount{
		ID:                 "a",
		EstimatedTotal:     decimal.NewFromInt(5),
		Profit:             decimal.NewFromInt(1),
		EstimatedTotalTime: 42,
	}
	b := BaselineOf(acc)
	if b.AccountID != "a" || b.EstimatedTotalTime != 42 || !b.EstimatedTotal.Equal(acc.EstimatedTotal) {
		t.Errorf("Unexpected baseline: %+v", b)
	}
}

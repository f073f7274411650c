//-------------------------------------------------------------------------
//
// pgEdge Brokerage Admin
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package timestamps

import (
	"reflect"
	"testing"
	"time"

	"github.com/pgEdge/pgedge-brokeradmin/internal/store"
)

func TestNormalizeLeaves(t *testing.T) {
	when := time.Date(2026, 2, 3, 4, 5, 6, 789000000, time.UTC)
	ts := store.FromTime(when)
	want := "2026-02-03T04:05:06.789Z"

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"timestamp", ts, want},
		{"timestamp pointer", &ts, want},
		{"time", when, want},
		{"time pointer", &when, want},
		{"non-utc time", when.In(time.FixedZone("X", 8*3600)), want},
		{"nil", nil, nil},
		{"nil timestamp pointer", (*store.Timestamp)(nil), nil},
		{"string", "hello", "hello"},
		{"number", 42.5, 42.5},
		{"bool", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			if got != tt.want {
				t.Errorf("Expected %#v, got %#v", tt.want, got)
			}
		})
	}
}

func TestNormalizeNested(t *testing.T) {
	ts := store.FromTime(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	in := map[string]any{
		"created_at": ts,
		"name":       "Alpha",
		"history": []any{
			map[string]any{"at": ts, "amount": 10.0},
			"plain",
		},
		"labels": map[string]string{"k": "v"},
		"stamps": []store.Timestamp{ts},
	}

	got := Normalize(in).(map[string]any)

	if got["created_at"] != "2026-01-01T00:00:00.000Z" {
		t.Errorf("Expected normalized created_at, got %#v", got["created_at"])
	}
	history := got["history"].([]any)
	first := history[0].(map[string]any)
	if first["at"] != "2026-01-01T00:00:00.000Z" {
		t.Errorf("Expected normalized nested timestamp, got %#v", first["at"])
	}
	if first["amount"] != 10.0 {
		t.Errorf("Expected amount untouched, got %#v", first["amount"])
	}
	if history[1] != "plain" {
		t.Errorf("Expected plain string untouched, got %#v", history[1])
	}
	labels := got["labels"].(map[string]any)
	if labels["k"] != "v" {
		t.Errorf("Expected typed map to be walked, got %#v", labels)
	}
	stamps := got["stamps"].([]any)
	if stamps[0] != "2026-01-01T00:00:00.000Z" {
		t.Errorf("Expected typed slice to be walked, got %#v", stamps)
	}
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	ts := store.FromTime(time.Now())
	in := map[string]any{
		"at":    ts,
		"items": []any{ts},
	}

	_ = Normalize(in)

	if _, ok := in["at"].(store.Timestamp); !ok {
		t.Errorf("Expected input map to keep Timestamp, got %T", in["at"])
	}
	if _, ok := in["items"].([]any)[0].(store.Timestamp); !ok {
		t.Error("Expected input slice to keep Timestamp")
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	ts := store.FromTime(time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC))
	inputs := []any{
		ts,
		map[string]any{"a": ts, "b": []any{ts, map[string]any{"c": &ts}}},
		[]any{"x", 1.0, nil},
		map[string]int{"n": 1},
	}

	for i, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("Input %d: Normalize not idempotent: %#v vs %#v", i, once, twice)
		}
	}
}

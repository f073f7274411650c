//-------------------------------------------------------------------------
//
// pgEdge Brokerage Admin
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package metrics

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pgEdge/pgedge-brokeradmin/internal/store"
)

// metricValue sums every sample of the named counter or gauge whose labels
// include all of want.
func metricValue(t *testing.T, c *Collector, name string, want map[string]string) float64 {
	t.Helper()
	families, err := c.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			labels := make(map[string]string)
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			for k, v := range want {
				if labels[k] != v {
					continue metrics
				}
			}
			switch {
			case m.GetCounter() != nil:
				total += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				total += m.GetGauge().GetValue()
			}
		}
	}
	return total
}

func TestInstrumentStore(t *testing.T) {
	ctx := context.Background()
	c := NewCollector()
	st := c.InstrumentStore(store.NewMemoryStore())

	id, err := st.Create(ctx, "CDS", map[string]any{"name": "Bursa"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := st.Get(ctx, "CDS", id); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if _, err := st.Get(ctx, "CDS", "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
	if _, err := st.Find(ctx, store.Query{
		Collection: "CDS",
		Where:      []store.Predicate{{Field: "name", Op: store.OpPrefix, Value: 42}},
	}); err == nil {
		t.Fatal("Expected non-string prefix to fail")
	}

	tests := []struct {
		name   string
		labels map[string]string
		want   float64
	}{
		{"creates", map[string]string{"operation": "create", "status": "ok"}, 1},
		{"gets including not found", map[string]string{"operation": "get", "status": "ok"}, 2},
		{"failed finds", map[string]string{"operation": "find", "status": "error"}, 1},
		{"by collection", map[string]string{"collection": "CDS"}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := metricValue(t, c, "brokeradmin_store_operations_total", tt.labels)
			if got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestValuationObserver(t *testing.T) {
	c := NewCollector()
	c.Started("a")
	c.Started("b")
	c.Resampled("a")
	c.Locked("a")
	c.Stopped("a")

	if got := metricValue(t, c, "brokeradmin_valuation_active_animators", nil); got != 1 {
		t.Errorf("Expected 1 active animator, got %v", got)
	}
	if got := metricValue(t, c, "brokeradmin_valuation_resamples_total", nil); got != 1 {
		t.Errorf("Expected 1 resample, got %v", got)
	}
	if got := metricValue(t, c, "brokeradmin_valuation_locks_total", nil); got != 1 {
		t.Errorf("Expected 1 lock, got %v", got)
	}
}

func TestHandler(t *testing.T) {
	c := NewCollector()
	c.ObserveRequest("GET", "/api/v1/cds", 200, 15*time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `brokeradmin_http_requests_total{code="200",method="GET",route="/api/v1/cds"} 1`) {
		t.Errorf("Expected request counter in output, got:\n%s", body)
	}
}

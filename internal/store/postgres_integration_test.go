//-------------------------------------------------------------------------
//
// pgEdge Brokerage Admin
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

//go:build integration
// +build integration

// Run with: go test -tags=integration ./internal/store/...
// Set PGEDGE_TEST_CONN to override the connection string.

package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pgEdge/pgedge-brokeradmin/internal/store"
	"github.com/pgEdge/pgedge-brokeradmin/internal/testutil"
)

func TestPostgresStoreIntegration(t *testing.T) {
	pool := testutil.NewSchemaDB(t, "store")
	st := store.NewPostgresStore(pool)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ids := make(map[string]string)
	for _, name := range []string{"Bursa", "Burgundy", "Central"} {
		id, err := st.Create(ctx, "CDS", map[string]any{"name": name, "sst_reg": "W10-" + name})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		ids[name] = id
	}

	t.Run("get stamps timestamps", func(t *testing.T) {
		doc, err := st.Get(ctx, "CDS", ids["Bursa"])
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if doc.Data["name"] != "Bursa" {
			t.Errorf("Expected name Bursa, got %v", doc.Data["name"])
		}
		if doc.CreatedAt().IsZero() {
			t.Error("Expected created_at to be set")
		}
		if _, ok := doc.Data[store.FieldID]; ok {
			t.Error("Expected id to be kept out of Data")
		}
	})

	t.Run("find", func(t *testing.T) {
		tests := []struct {
			name  string
			query store.Query
			want  int
		}{
			{"all", store.Query{Collection: "CDS"}, 3},
			{"equal", store.Query{Collection: "CDS",
				Where: []store.Predicate{{Field: "name", Op: store.OpEqual, Value: "Central"}}}, 1},
			{"prefix", store.Query{Collection: "CDS",
				Where: []store.Predicate{{Field: "name", Op: store.OpPrefix, Value: "Bur"}}}, 2},
			{"prefix is case sensitive", store.Query{Collection: "CDS",
				Where: []store.Predicate{{Field: "name", Op: store.OpPrefix, Value: "bur"}}}, 0},
			{"limit", store.Query{Collection: "CDS", NewestFirst: true, Limit: 2}, 2},
			{"other collection", store.Query{Collection: "StockAccounts"}, 0},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				docs, err := st.Find(ctx, tt.query)
				if err != nil {
					t.Fatalf("Find failed: %v", err)
				}
				if len(docs) != tt.want {
					t.Errorf("Expected %d documents, got %d", tt.want, len(docs))
				}
			})
		}
	})

	t.Run("newest first", func(t *testing.T) {
		docs, err := st.Find(ctx, store.Query{Collection: "CDS", NewestFirst: true})
		if err != nil {
			t.Fatalf("Find failed: %v", err)
		}
		for i := 1; i < len(docs); i++ {
			if docs[i-1].CreatedAt().Before(docs[i].CreatedAt()) {
				t.Errorf("Expected descending created_at at index %d", i)
			}
		}
	})

	t.Run("update merges", func(t *testing.T) {
		if err := st.Update(ctx, "CDS", ids["Central"], map[string]any{"website": "https://central.example"}); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		doc, err := st.Get(ctx, "CDS", ids["Central"])
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if doc.Data["name"] != "Central" || doc.Data["website"] != "https://central.example" {
			t.Errorf("Unexpected merged document: %v", doc.Data)
		}
	})

	t.Run("missing documents", func(t *testing.T) {
		if _, err := st.Get(ctx, "CDS", "missing"); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("Expected ErrNotFound from Get, got %v", err)
		}
		if err := st.Update(ctx, "CDS", "missing", map[string]any{"name": "x"}); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("Expected ErrNotFound from Update, got %v", err)
		}
		if err := st.Delete(ctx, "CDS", "missing"); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("Expected ErrNotFound from Delete, got %v", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := st.Delete(ctx, "CDS", ids["Burgundy"]); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := st.Get(ctx, "CDS", ids["Burgundy"]); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("Expected ErrNotFound after delete, got %v", err)
		}
	})
}

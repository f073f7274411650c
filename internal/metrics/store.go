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
	"time"

	"github.com/pgEdge/pgedge-brokeradmin/internal/store"
)

// instrumentedStore records every call on the wrapped store.
type instrumentedStore struct {
	next store.Store
	c    *Collector
}

// InstrumentStore wraps st so that every operation is counted and timed.
func (c *Collector) InstrumentStore(st store.Store) store.Store {
	return &instrumentedStore{next: st, c: c}
}

func (s *instrumentedStore) observe(collection, op string, start time.Time, err error) {
	// A missing document is an answer, not a failure.
	if errors.Is(err, store.ErrNotFound) {
		err = nil
	}
	s.c.ObserveStore(collection, op, time.Since(start), err)
}

func (s *instrumentedStore) Create(ctx context.Context, collection string, data map[string]any) (string, error) {
	start := time.Now()
	id, err := s.next.Create(ctx, collection, data)
	s.observe(collection, "create", start, err)
	return id, err
}

func (s *instrumentedStore) Get(ctx context.Context, collection, id string) (*store.Document, error) {
	start := time.Now()
	doc, err := s.next.Get(ctx, collection, id)
	s.observe(collection, "get", start, err)
	return doc, err
}

func (s *instrumentedStore) Update(ctx context.Context, collection, id string, patch map[string]any) error {
	start := time.Now()
	err := s.next.Update(ctx, collection, id, patch)
	s.observe(collection, "update", start, err)
	return err
}

func (s *instrumentedStore) Delete(ctx context.Context, collection, id string) error {
	start := time.Now()
	err := s.next.Delete(ctx, collection, id)
	s.observe(collection, "delete", start, err)
	return err
}

func (s *instrumentedStore) Find(ctx context.Context, q store.Query) ([]store.Document, error) {
	start := time.Now()
	docs, err := s.next.Find(ctx, q)
	s.observe(q.Collection, "find", start, err)
	return docs, err
}

func (s *instrumentedStore) Close() {
	s.next.Close()
}

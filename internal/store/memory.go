//-------------------------------------------------------------------------
//
// pgEdge Brokerage Admin
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// MemoryStore is an in-process Store. It is safe for concurrent use.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memCollection
	now         func() time.Time
}

type memCollection struct {
	docs  map[string]map[string]any
	order []string // insertion order
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock sets the clock used to stamp created_at and updated_at.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		s.now = now
	}
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		collections: make(map[string]*memCollection),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) collection(name string) *memCollection {
	c, ok := s.collections[name]
	if !ok {
		c = &memCollection{docs: make(map[string]map[string]any)}
		s.collections[name] = c
	}
	return c
}

// Create implements Store.
func (s *MemoryStore) Create(ctx context.Context, collection string, data map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	doc, err := CanonicalizeMap(data)
	if err != nil {
		return "", err
	}
	stripReserved(doc)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	id := ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String()
	ts := FromTime(now)
	doc[FieldCreatedAt] = ts
	doc[FieldUpdatedAt] = ts

	c := s.collection(collection)
	c.docs[id] = doc
	c.order = append(c.order, id)
	return id, nil
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[collection]
	if !ok {
		return nil, ErrNotFound
	}
	data, ok := c.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &Document{ID: id, Data: cloneMap(data)}, nil
}

// Update implements Store.
func (s *MemoryStore) Update(ctx context.Context, collection, id string, patch map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	changes, err := CanonicalizeMap(patch)
	if err != nil {
		return err
	}
	stripReserved(changes)

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[collection]
	if !ok {
		return ErrNotFound
	}
	data, ok := c.docs[id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range changes {
		data[k] = v
	}
	data[FieldUpdatedAt] = FromTime(s.now())
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[collection]
	if !ok {
		return ErrNotFound
	}
	if _, ok := c.docs[id]; !ok {
		return ErrNotFound
	}
	delete(c.docs, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// Find implements Store.
func (s *MemoryStore) Find(ctx context.Context, q Query) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	preds := make([]Predicate, len(q.Where))
	for i, p := range q.Where {
		v, err := Canonicalize(p.Value)
		if err != nil {
			return nil, fmt.Errorf("predicate on %s: %w", p.Field, err)
		}
		if p.Op == OpPrefix {
			if _, ok := v.(string); !ok {
				return nil, fmt.Errorf("prefix predicate on %s requires a string", p.Field)
			}
		}
		preds[i] = Predicate{Field: p.Field, Op: p.Op, Value: v}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[q.Collection]
	if !ok {
		return []Document{}, nil
	}

	docs := make([]Document, 0)
	for _, id := range c.order {
		data := c.docs[id]
		if matchesAll(data, preds) {
			docs = append(docs, Document{ID: id, Data: cloneMap(data)})
		}
	}

	if q.NewestFirst {
		sort.SliceStable(docs, func(i, j int) bool {
			return docs[j].CreatedAt().Before(docs[i].CreatedAt())
		})
	}
	if q.Limit > 0 && len(docs) > q.Limit {
		docs = docs[:q.Limit]
	}
	return docs, nil
}

// Close implements Store.
func (s *MemoryStore) Close() {}

func matchesAll(data map[string]any, preds []Predicate) bool {
	for _, p := range preds {
		v, ok := data[p.Field]
		if !ok {
			return false
		}
		switch p.Op {
		case OpEqual:
			if !valuesEqual(v, p.Value) {
				return false
			}
		case OpPrefix:
			str, ok := v.(string)
			if !ok {
				return false
			}
			term := p.Value.(string)
			if str < term || str >= term+PrefixUpperBound {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// valuesEqual compares canonical values the way a JSON containment check would.
func valuesEqual(a, b any) bool {
	if reflect.DeepEqual(a, b) {
		return true
	}
	ra, errA := json.Marshal(a)
	rb, errB := json.Marshal(b)
	return errA == nil && errB == nil && string(ra) == string(rb)
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return val
	}
}

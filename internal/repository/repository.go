//-------------------------------------------------------------------------
//
// pgEdge Brokerage Admin
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package repository provides typed CRUD and filtered queries for each
// brokerage entity on top of an injected document store.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pgEdge/pgedge-brokeradmin/internal/apperrors"
	"github.com/pgEdge/pgedge-brokeradmin/internal/filter"
	"github.com/pgEdge/pgedge-brokeradmin/internal/logging"
	"github.com/pgEdge/pgedge-brokeradmin/internal/store"
	"github.com/pgEdge/pgedge-brokeradmin/internal/timestamps"
)

// Repository is the generic entity adapter over one collection.
type Repository[T any] struct {
	store      store.Store
	collection string
	entity     string
	timeFields []string
}

func newRepository[T any](st store.Store, collection, entity string, timeFields []string) *Repository[T] {
	return &Repository[T]{
		store:      st,
		collection: collection,
		entity:     entity,
		timeFields: timeFields,
	}
}

// Create stores v and returns the new document ID. Any id, created_at or
// updated_at on v is ignored.
func (r *Repository[T]) Create(ctx context.Context, v *T) (string, error) {
	data, err := r.encode(v)
	if err != nil {
		return "", apperrors.Validation(err.Error())
	}

	id, err := r.store.Create(ctx, r.collection, data)
	if err != nil {
		return "", apperrors.QueryFailed(fmt.Sprintf("failed to create %s", r.entity), err)
	}

	logging.Debug().Str("entity", r.entity).Str("id", id).Msg("Created entity")
	return id, nil
}

// Get returns the entity with the given ID.
func (r *Repository[T]) Get(ctx context.Context, id string) (*T, error) {
	doc, err := r.store.Get(ctx, r.collection, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.NotFound(r.entity)
	}
	if err != nil {
		return nil, apperrors.QueryFailed(fmt.Sprintf("failed to get %s", r.entity), err)
	}

	v, err := decode[T](timestamps.Normalize(doc.Fields()).(map[string]any))
	if err != nil {
		return nil, apperrors.QueryFailed(fmt.Sprintf("failed to decode %s", r.entity), err)
	}
	return &v, nil
}

// Update merges patch into the entity. patch is a patch record or a
// map[string]any; nil fields of a patch record are skipped.
//
// The existence check and the write are separate store calls. A delete that
// lands between them is reported as NotFound by the write.
func (r *Repository[T]) Update(ctx context.Context, id string, patch any) error {
	changes, err := r.encode(patch)
	if err != nil {
		return apperrors.Validation(err.Error())
	}

	if _, err := r.store.Get(ctx, r.collection, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.NotFound(r.entity)
		}
		return apperrors.QueryFailed(fmt.Sprintf("failed to get %s", r.entity), err)
	}

	if err := r.store.Update(ctx, r.collection, id, changes); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.NotFound(r.entity)
		}
		return apperrors.QueryFailed(fmt.Sprintf("failed to update %s", r.entity), err)
	}

	logging.Debug().Str("entity", r.entity).Str("id", id).Int("fields", len(changes)).Msg("Updated entity")
	return nil
}

// Delete removes the entity. Like Update, it checks and then acts.
func (r *Repository[T]) Delete(ctx context.Context, id string) error {
	if _, err := r.store.Get(ctx, r.collection, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.NotFound(r.entity)
		}
		return apperrors.QueryFailed(fmt.Sprintf("failed to get %s", r.entity), err)
	}

	if err := r.store.Delete(ctx, r.collection, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.NotFound(r.entity)
		}
		return apperrors.QueryFailed(fmt.Sprintf("failed to delete %s", r.entity), err)
	}

	logging.Debug().Str("entity", r.entity).Str("id", id).Msg("Deleted entity")
	return nil
}

// List returns up to limit entities, newest first. A non-positive limit
// means filter.DefaultLimit. On failure the slice is empty, never nil.
func (r *Repository[T]) List(ctx context.Context, limit int) ([]T, error) {
	if limit <= 0 {
		limit = filter.DefaultLimit
	}

	docs, err := r.store.Find(ctx, store.Query{
		Collection:  r.collection,
		NewestFirst: true,
		Limit:       limit,
	})
	if err != nil {
		return []T{}, apperrors.QueryFailed(fmt.Sprintf("failed to list %s", r.entity), err)
	}

	rows := make([]map[string]any, len(docs))
	for i, doc := range docs {
		rows[i] = timestamps.Normalize(doc.Fields()).(map[string]any)
	}
	return r.decodeAll(rows)
}

// findOne returns the newest entity whose field equals value, or nil.
func (r *Repository[T]) findOne(ctx context.Context, field string, value any) (*T, error) {
	docs, err := r.store.Find(ctx, store.Query{
		Collection:  r.collection,
		Where:       []store.Predicate{{Field: field, Op: store.OpEqual, Value: value}},
		NewestFirst: true,
		Limit:       1,
	})
	if err != nil {
		return nil, apperrors.QueryFailed(fmt.Sprintf("failed to query %s", r.entity), err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	v, err := decode[T](timestamps.Normalize(docs[0].Fields()).(map[string]any))
	if err != nil {
		return nil, apperrors.QueryFailed(fmt.Sprintf("failed to decode %s", r.entity), err)
	}
	return &v, nil
}

// runFilter executes a compiled filter for r's collection.
func runFilter[T, P any](ctx context.Context, r *Repository[T], c *filter.Compiler[P], params P, limit int) ([]T, error) {
	rows, err := c.Execute(ctx, r.store, params, limit)
	if err != nil {
		return []T{}, apperrors.QueryFailed(fmt.Sprintf("failed to filter %s", r.entity), err)
	}
	return r.decodeAll(rows)
}

func (r *Repository[T]) decodeAll(rows []map[string]any) ([]T, error) {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		v, err := decode[T](row)
		if err != nil {
			return []T{}, apperrors.QueryFailed(fmt.Sprintf("failed to decode %s", r.entity), err)
		}
		out = append(out, v)
	}
	return out, nil
}

// encode turns an entity or patch into a document body. Reserved fields
// are dropped and configured time fields become store timestamps.
func (r *Repository[T]) encode(v any) (map[string]any, error) {
	var data map[string]any
	if m, ok := v.(map[string]any); ok {
		data = make(map[string]any, len(m))
		for k, item := range m {
			data[k] = item
		}
	} else {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", r.entity, err)
		}
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", r.entity, err)
		}
	}

	delete(data, store.FieldID)
	delete(data, store.FieldCreatedAt)
	delete(data, store.FieldUpdatedAt)

	for _, field := range r.timeFields {
		s, ok := data[field].(string)
		if !ok {
			continue
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %s: %w", r.entity, field, err)
		}
		data[field] = store.FromTime(t)
	}
	return data, nil
}

// decode converts a normalized row into T.
func decode[T any](row map[string]any) (T, error) {
	var v T
	raw, err := json.Marshal(row)
	if err != nil {
		return v, err
	}
	err = json.Unmarshal(raw, &v)
	return v, err
}

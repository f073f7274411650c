//-------------------------------------------------------------------------
//
// pgEdge Brokerage Admin
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package store defines the document store used by the brokerage admin
// platform and its PostgreSQL and in-memory implementations.
//
// Documents live in named collections. Each document is a JSON object with
// a store-assigned ID; created_at and updated_at are always stamped by the
// store's own clock and surface as Timestamp values.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Reserved document fields.
const (
	FieldID        = "id"
	FieldCreatedAt = "created_at"
	FieldUpdatedAt = "updated_at"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// Op is a store-side predicate operator.
type Op int

const (
	// OpEqual matches documents whose field equals the value exactly.
	OpEqual Op = iota
	// OpPrefix matches string fields in the half-open range [value, value+PrefixUpperBound).
	OpPrefix
)

// PrefixUpperBound is appended to a prefix term to form the exclusive
// upper bound of a prefix range query.
const PrefixUpperBound = "\uf8ff"

func (o Op) String() string {
	switch o {
	case OpEqual:
		return "eq"
	case OpPrefix:
		return "prefix"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Predicate is a single store-side condition. Predicates in a Query are ANDed.
type Predicate struct {
	Field string
	Op    Op
	Value any
}

// Query describes a store-side read.
type Query struct {
	Collection string
	Where      []Predicate

	// NewestFirst orders results by created_at descending.
	NewestFirst bool

	// Limit caps the number of documents returned; 0 means no limit.
	Limit int
}

// Document is a stored document. Data never contains the id key;
// created_at and updated_at are present as Timestamp values.
type Document struct {
	ID   string
	Data map[string]any
}

// CreatedAt returns the document's creation timestamp, or the zero Timestamp.
func (d Document) CreatedAt() Timestamp {
	ts, _ := d.Data[FieldCreatedAt].(Timestamp)
	return ts
}

// Fields returns a shallow copy of Data with the id field added.
func (d Document) Fields() map[string]any {
	out := make(map[string]any, len(d.Data)+1)
	for k, v := range d.Data {
		out[k] = v
	}
	out[FieldID] = d.ID
	return out
}

// Store is a document store.
type Store interface {
	// Create inserts a document and returns its generated ID. created_at and
	// updated_at are stamped by the store, overriding any supplied values.
	Create(ctx context.Context, collection string, data map[string]any) (string, error)

	// Get returns a document or ErrNotFound.
	Get(ctx context.Context, collection, id string) (*Document, error)

	// Update merges patch into an existing document and restamps updated_at.
	// Returns ErrNotFound if the document does not exist.
	Update(ctx context.Context, collection, id string, patch map[string]any) error

	// Delete removes a document. Returns ErrNotFound if it does not exist.
	Delete(ctx context.Context, collection, id string) error

	// Find returns the documents matching every predicate of q.
	Find(ctx context.Context, q Query) ([]Document, error)

	// Close releases resources held by the store.
	Close()
}

// Timestamp is the store-native instant representation.
type Timestamp struct {
	Seconds int64 `json:"seconds"`
	Nanos   int32 `json:"nanos"`
}

// FromTime converts a time.Time to a Timestamp.
func FromTime(t time.Time) Timestamp {
	return Timestamp{Seconds: t.Unix(), Nanos: int32(t.Nanosecond())}
}

// Time returns the instant as a UTC time.Time.
func (ts Timestamp) Time() time.Time {
	return time.Unix(ts.Seconds, int64(ts.Nanos)).UTC()
}

// IsZero reports whether ts is the zero Timestamp.
func (ts Timestamp) IsZero() bool {
	return ts.Seconds == 0 && ts.Nanos == 0
}

// Before reports whether ts is earlier than other.
func (ts Timestamp) Before(other Timestamp) bool {
	if ts.Seconds != other.Seconds {
		return ts.Seconds < other.Seconds
	}
	return ts.Nanos < other.Nanos
}

// Canonicalize converts a caller-supplied value into the form held by the
// stores: time.Time becomes Timestamp, maps and slices are deep-copied, and
// every other leaf takes its JSON-decoded shape (numbers become float64,
// structs become maps, types with MarshalJSON become their JSON value).
func Canonicalize(v any) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case Timestamp:
		return val, nil
	case *Timestamp:
		if val == nil {
			return nil, nil
		}
		return *val, nil
	case time.Time:
		return FromTime(val), nil
	case *time.Time:
		if val == nil {
			return nil, nil
		}
		return FromTime(*val), nil
	case string, bool, float64:
		return val, nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			c, err := Canonicalize(item)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", k, err)
			}
			out[k] = c
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			c, err := Canonicalize(item)
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode value: %w", err)
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode value: %w", err)
	}
	switch decoded.(type) {
	case map[string]any, []any:
		return Canonicalize(decoded)
	}
	return decoded, nil
}

// CanonicalizeMap is Canonicalize for a document body.
func CanonicalizeMap(data map[string]any) (map[string]any, error) {
	if data == nil {
		return map[string]any{}, nil
	}
	c, err := Canonicalize(data)
	if err != nil {
		return nil, err
	}
	return c.(map[string]any), nil
}

// stripReserved removes fields a caller may not set directly.
func stripReserved(data map[string]any) {
	delete(data, FieldID)
	delete(data, FieldCreatedAt)
	delete(data, FieldUpdatedAt)
}

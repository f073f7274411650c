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
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"

	"github.com/pgEdge/pgedge-brokeradmin/internal/logging"
)

// timestampKey tags a Timestamp leaf inside a JSONB document.
const timestampKey = "$timestamp"

// PostgresStore keeps every collection in a single JSONB documents table.
// See db.CreateSchema for the table definition.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an existing connection pool. The store does not
// own the pool unless Close is called.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

var _ Store = (*PostgresStore)(nil)

// Create implements Store.
func (s *PostgresStore) Create(ctx context.Context, collection string, data map[string]any) (string, error) {
	doc, err := CanonicalizeMap(data)
	if err != nil {
		return "", err
	}
	stripReserved(doc)

	raw, err := encodeDocument(doc)
	if err != nil {
		return "", err
	}

	id := ulid.MustNew(ulid.Timestamp(time.Now()), ulid.DefaultEntropy()).String()
	_, err = s.pool.Exec(ctx, `
        INSERT INTO documents (collection, id, data, created_at, updated_at)
        VALUES ($1, $2, $3::jsonb, now(), now())
    `, collection, id, raw)
	if err != nil {
		return "", fmt.Errorf("failed to insert document: %w", err)
	}

	logging.Debug().
		Str("collection", collection).
		Str("id", id).
		Msg("Created document")

	return id, nil
}

// Get implements Store.
func (s *PostgresStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	row := s.pool.QueryRow(ctx, `
        SELECT id, data, created_at, updated_at
        FROM documents
        WHERE collection = $1 AND id = $2
    `, collection, id)

	doc, err := scanDocument(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Update implements Store.
func (s *PostgresStore) Update(ctx context.Context, collection, id string, patch map[string]any) error {
	changes, err := CanonicalizeMap(patch)
	if err != nil {
		return err
	}
	stripReserved(changes)

	raw, err := encodeDocument(changes)
	if err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx, `
        UPDATE documents
        SET data = data || $3::jsonb, updated_at = now()
        WHERE collection = $1 AND id = $2
    `, collection, id, raw)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete implements Store.
func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	tag, err := s.pool.Exec(ctx, `
        DELETE FROM documents WHERE collection = $1 AND id = $2
    `, collection, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Find implements Store.
func (s *PostgresStore) Find(ctx context.Context, q Query) ([]Document, error) {
	sql, args, err := buildFindSQL(q)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	docs := make([]Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read documents: %w", err)
	}
	return docs, nil
}

// Close closes the underlying pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// buildFindSQL translates a Query into SQL. Equality uses JSONB containment
// so it can be served by the GIN index; prefix ranges compare in the C
// collation so ordering matches code point order.
func buildFindSQL(q Query) (string, []any, error) {
	var b strings.Builder
	args := []any{q.Collection}

	b.WriteString("SELECT id, data, created_at, updated_at FROM documents WHERE collection = $1")

	for _, p := range q.Where {
		value, err := Canonicalize(p.Value)
		if err != nil {
			return "", nil, fmt.Errorf("predicate on %s: %w", p.Field, err)
		}

		switch p.Op {
		case OpEqual:
			raw, err := encodeDocument(map[string]any{p.Field: value})
			if err != nil {
				return "", nil, err
			}
			args = append(args, raw)
			fmt.Fprintf(&b, " AND data @> $%d::jsonb", len(args))
		case OpPrefix:
			term, ok := value.(string)
			if !ok {
				return "", nil, fmt.Errorf("prefix predicate on %s requires a string", p.Field)
			}
			args = append(args, p.Field, term, term+PrefixUpperBound)
			field, lower, upper := len(args)-2, len(args)-1, len(args)
			fmt.Fprintf(&b,
				` AND (data->>$%d) COLLATE "C" >= $%d AND (data->>$%d) COLLATE "C" < $%d`,
				field, lower, field, upper)
		default:
			return "", nil, fmt.Errorf("unsupported operator %s", p.Op)
		}
	}

	if q.NewestFirst {
		b.WriteString(" ORDER BY created_at DESC, id DESC")
	}
	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}

	return b.String(), args, nil
}

func scanDocument(row pgx.Row) (*Document, error) {
	var (
		id        string
		raw       []byte
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&id, &raw, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan document: %w", err)
	}

	data, err := decodeDocument(raw)
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", id, err)
	}
	data[FieldCreatedAt] = FromTime(createdAt)
	data[FieldUpdatedAt] = FromTime(updatedAt)

	return &Document{ID: id, Data: data}, nil
}

// encodeDocument serializes a canonical document, tagging Timestamp leaves.
func encodeDocument(doc map[string]any) (string, error) {
	raw, err := json.Marshal(tagTimestamps(doc))
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}
	return string(raw), nil
}

func decodeDocument(raw []byte) (map[string]any, error) {
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	if data == nil {
		data = map[string]any{}
	}
	return untagTimestamps(data).(map[string]any), nil
}

func tagTimestamps(v any) any {
	switch val := v.(type) {
	case Timestamp:
		return map[string]any{timestampKey: val.Time().Format(time.RFC3339Nano)}
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = tagTimestamps(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = tagTimestamps(item)
		}
		return out
	default:
		return v
	}
}

func untagTimestamps(v any) any {
	switch val := v.(type) {
	case map[string]any:
		if len(val) == 1 {
			if s, ok := val[timestampKey].(string); ok {
				if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
					return FromTime(t)
				}
			}
		}
		for k, item := range val {
			val[k] = untagTimestamps(item)
		}
		return val
	case []any:
		for i, item := range val {
			val[i] = untagTimestamps(item)
		}
		return val
	default:
		return v
	}
}

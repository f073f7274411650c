//-------------------------------------------------------------------------
//
// pgEdge Brokerage Admin
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package timestamps converts store-native timestamps and Go times found
// anywhere inside a value into ISO-8601 strings.
package timestamps

import (
	"reflect"
	"time"

	"github.com/pgEdge/pgedge-brokeradmin/internal/store"
)

// Layout is the ISO-8601 form produced by Normalize: UTC with millisecond
// precision, e.g. 2026-01-02T03:04:05.000Z.
const Layout = "2006-01-02T15:04:05.000Z07:00"

// Format renders t in Layout.
func Format(t time.Time) string {
	return t.UTC().Format(Layout)
}

// Normalize returns a copy of v in which every store.Timestamp and time.Time
// (or pointer to either) is replaced by its ISO-8601 string. Maps and slices
// are walked recursively; every other value is returned unchanged. The input
// is never modified, and Normalize(Normalize(v)) equals Normalize(v).
func Normalize(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case store.Timestamp:
		return Format(val.Time())
	case *store.Timestamp:
		if val == nil {
			return nil
		}
		return Format(val.Time())
	case time.Time:
		return Format(val)
	case *time.Time:
		if val == nil {
			return nil
		}
		return Format(*val)
	case string, bool, float64, float32, int, int32, int64:
		return val
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = Normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = Normalize(item)
		}
		return out
	case []map[string]any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = Normalize(item)
		}
		return out
	}
	return normalizeReflect(reflect.ValueOf(v))
}

// normalizeReflect handles map and slice kinds that are not the plain
// JSON-shaped types above. Anything else is returned as-is.
func normalizeReflect(rv reflect.Value) any {
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return rv.Interface()
		}
		if rv.IsNil() {
			return rv.Interface()
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = Normalize(iter.Value().Interface())
		}
		return out
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return rv.Interface()
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return rv.Interface()
		}
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = Normalize(rv.Index(i).Interface())
		}
		return out
	default:
		return rv.Interface()
	}
}

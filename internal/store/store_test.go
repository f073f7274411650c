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
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestTimestampRoundTrip(t *testing.T) {
	in := time.Date(2026, 3, 4, 5, 6, 7, 890000000, time.UTC)
	ts := FromTime(in)
	if !ts.Time().Equal(in) {
		t.Errorf("Expected %v, got %v", in, ts.Time())
	}
	if ts.IsZero() {
		t.Error("Expected non-zero timestamp")
	}
	if !(Timestamp{Seconds: 1}).Before(Timestamp{Seconds: 1, Nanos: 1}) {
		t.Error("Expected nanos to break ties")
	}
}

func TestCanonicalize(t *testing.T) {
	when := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	got, err := CanonicalizeMap(map[string]any{
		"count":   3,
		"capital": decimal.RequireFromString("12.50"),
		"date":    when,
		"tags":    []any{"a", int64(2)},
		"nested":  map[string]any{"at": &when},
	})
	if err != nil {
		t.Fatalf("CanonicalizeMap failed: %v", err)
	}

	if got["count"] != float64(3) {
		t.Errorf("Expected count float64(3), got %#v", got["count"])
	}
	if got["capital"] != "12.5" {
		t.Errorf("Expected capital '12.5', got %#v", got["capital"])
	}
	if got["date"] != FromTime(when) {
		t.Errorf("Expected date Timestamp, got %#v", got["date"])
	}
	tags := got["tags"].([]any)
	if tags[1] != float64(2) {
		t.Errorf("Expected tags[1] float64(2), got %#v", tags[1])
	}
	nested := got["nested"].(map[string]any)
	if nested["at"] != FromTime(when) {
		t.Errorf("Expected nested Timestamp, got %#v", nested["at"])
	}
}

func TestTimestampTagging(t *testing.T) {
	ts := FromTime(time.Date(2026, 5, 6, 7, 8, 9, 123456789, time.UTC))
	raw, err := encodeDocument(map[string]any{
		"date":  ts,
		"items": []any{map[string]any{"at": ts}},
		"name":  "x",
	})
	if err != nil {
		t.Fatalf("encodeDocument failed: %v", err)
	}
	if !strings.Contains(raw, timestampKey) {
		t.Errorf("Expected tagged timestamp in %s", raw)
	}

	doc, err := decodeDocument([]byte(raw))
	if err != nil {
		t.Fatalf("decodeDocument failed: %v", err)
	}
	if doc["date"] != ts {
		t.Errorf("Expected %v, got %#v", ts, doc["date"])
	}
	item := doc["items"].([]any)[0].(map[string]any)
	if item["at"] != ts {
		t.Errorf("Expected nested %v, got %#v", ts, item["at"])
	}
	if doc["name"] != "x" {
		t.Errorf("Expected name 'x', got %v", doc["name"])
	}
}

func TestBuildFindSQL(t *testing.T) {
	sql, args, err := buildFindSQL(Query{
		Collection: "UserProfiles",
		Where: []Predicate{
			{Field: "name", Op: OpPrefix, Value: "Jo"},
			{Field: "ic", Op: OpEqual, Value: "900101"},
		},
		NewestFirst: true,
		Limit:       5,
	})
	if err != nil {
		t.Fatalf("buildFindSQL failed: %v", err)
	}

	wantFragments := []string{
		"collection = $1",
		`(data->>$2) COLLATE "C" >= $3`,
		`(data->>$2) COLLATE "C" < $4`,
		"data @> $5::jsonb",
		"ORDER BY created_at DESC",
		"LIMIT $6",
	}
	for _, frag := range wantFragments {
		if !strings.Contains(sql, frag) {
			t.Errorf("Expected SQL to contain %q, got %s", frag, sql)
		}
	}

	if len(args) != 6 {
		t.Fatalf("Expected 6 args, got %d", len(args))
	}
	if args[3] != "Jo"+PrefixUpperBound {
		t.Errorf("Expected upper bound arg, got %#v", args[3])
	}
	if args[4] != `{"ic":"900101"}` {
		t.Errorf("Expected containment arg, got %#v", args[4])
	}
}

func TestBuildFindSQLRejectsBadPrefix(t *testing.T) {
	_, _, err := buildFindSQL(Query{
		Collection: "CDS",
		Where:      []Predicate{{Field: "name", Op: OpPrefix, Value: 10}},
	})
	if err == nil {
		t.Error("Expected error for non-string prefix")
	}
}

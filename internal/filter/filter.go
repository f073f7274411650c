//-------------------------------------------------------------------------
//
// pgEdge Brokerage Admin
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package filter compiles entity filter parameters into a hybrid query:
// predicates the store can evaluate are pushed down, the rest run in process
// over the store's result set.
//
// Each entity supplies a fixed rule table mapping its parameters to fields
// and operators. Whether a rule is pushed depends only on its operator, so
// the partition never changes with the parameters supplied.
package filter

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pgEdge/pgedge-brokeradmin/internal/logging"
	"github.com/pgEdge/pgedge-brokeradmin/internal/store"
	"github.com/pgEdge/pgedge-brokeradmin/internal/timestamps"
)

// DefaultLimit is applied when a filter is run with a non-positive limit.
const DefaultLimit = 20

// Op is a filter operator.
type Op int

const (
	// Equal is an exact match, evaluated by the store.
	Equal Op = iota
	// Prefix is a case-sensitive prefix range, evaluated by the store.
	Prefix
	// Contains is a case-insensitive substring match.
	Contains
	// AtLeast keeps numeric fields >= the parameter.
	AtLeast
	// AtMost keeps numeric fields <= the parameter.
	AtMost
	// OnOrAfter keeps date fields at or after the parameter.
	OnOrAfter
	// OnOrBefore keeps date fields at or before the parameter.
	OnOrBefore
)

var opNames = map[Op]string{
	Equal:      "equal",
	Prefix:     "prefix",
	Contains:   "contains",
	AtLeast:    "at_least",
	AtMost:     "at_most",
	OnOrAfter:  "on_or_after",
	OnOrBefore: "on_or_before",
}

func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// Pushable reports whether the store evaluates the operator.
func (o Op) Pushable() bool {
	return o == Equal || o == Prefix
}

// Rule binds one filter parameter to a document field.
type Rule[P any] struct {
	// Field is the document field the rule tests.
	Field string

	// Op is the comparison applied.
	Op Op

	// Value extracts the parameter; ok is false when it was not supplied.
	Value func(params P) (value any, ok bool)
}

// Param adapts a pointer-valued parameter accessor into a Rule.Value. A nil
// pointer means "not supplied"; a pointer to a zero value is a real filter.
func Param[P, V any](get func(P) *V) func(P) (any, bool) {
	return func(p P) (any, bool) {
		v := get(p)
		if v == nil {
			return nil, false
		}
		return *v, true
	}
}

// Condition is one active rule after compilation.
type Condition struct {
	Field string
	Op    Op
	Value any
}

// Plan is the result of compiling a set of parameters.
type Plan struct {
	// Query holds the pushed predicates. It carries no ordering or limit,
	// because post-filters may discard any of the store's rows.
	Query store.Query

	// Post holds the in-process conditions, in rule-table order.
	Post []Condition
}

// Compiler turns parameters of type P into plans against one collection.
type Compiler[P any] struct {
	collection string
	rules      []Rule[P]
}

// New creates a Compiler for the collection with the given rule table.
func New[P any](collection string, rules ...Rule[P]) *Compiler[P] {
	return &Compiler[P]{collection: collection, rules: rules}
}

// Collection returns the collection the compiler targets.
func (c *Compiler[P]) Collection() string {
	return c.collection
}

// Compile partitions the supplied parameters into pushed predicates and
// post-filter conditions.
func (c *Compiler[P]) Compile(params P) Plan {
	plan := Plan{Query: store.Query{Collection: c.collection}}
	for _, rule := range c.rules {
		value, ok := rule.Value(params)
		if !ok {
			continue
		}
		if rule.Op.Pushable() {
			op := store.OpEqual
			if rule.Op == Prefix {
				op = store.OpPrefix
			}
			plan.Query.Where = append(plan.Query.Where, store.Predicate{
				Field: rule.Field,
				Op:    op,
				Value: value,
			})
			continue
		}
		plan.Post = append(plan.Post, Condition{Field: rule.Field, Op: rule.Op, Value: value})
	}
	return plan
}

// Execute runs the plan for params against st and returns at most limit
// rows, newest first, with every timestamp normalized to an ISO-8601 string.
// Each row carries the document id under "id".
func (c *Compiler[P]) Execute(ctx context.Context, st store.Store, params P, limit int) ([]map[string]any, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	plan := c.Compile(params)

	docs, err := st.Find(ctx, plan.Query)
	if err != nil {
		return nil, err
	}
	fetched := len(docs)

	for _, cond := range plan.Post {
		if len(docs) == 0 {
			break
		}
		docs, err = apply(docs, cond)
		if err != nil {
			return nil, err
		}
	}

	sort.SliceStable(docs, func(i, j int) bool {
		return docs[j].CreatedAt().Before(docs[i].CreatedAt())
	})
	if len(docs) > limit {
		docs = docs[:limit]
	}

	rows := make([]map[string]any, len(docs))
	for i, doc := range docs {
		rows[i] = timestamps.Normalize(doc.Fields()).(map[string]any)
	}

	logging.Debug().
		Str("collection", c.collection).
		Int("pushed", len(plan.Query.Where)).
		Int("post", len(plan.Post)).
		Int("fetched", fetched).
		Int("returned", len(rows)).
		Msg("Filter executed")

	return rows, nil
}

func apply(docs []store.Document, cond Condition) ([]store.Document, error) {
	match, err := matcher(cond)
	if err != nil {
		return nil, err
	}
	kept := docs[:0:0]
	for _, doc := range docs {
		if match(doc.Data[cond.Field]) {
			kept = append(kept, doc)
		}
	}
	return kept, nil
}

// matcher builds the predicate for a post-filter condition. Documents whose
// field is missing or of the wrong shape never match.
func matcher(cond Condition) (func(any) bool, error) {
	switch cond.Op {
	case Contains:
		term, ok := cond.Value.(string)
		if !ok {
			return nil, fmt.Errorf("%s filter on %s requires a string", cond.Op, cond.Field)
		}
		term = strings.ToLower(term)
		return func(v any) bool {
			s, ok := v.(string)
			return ok && strings.Contains(strings.ToLower(s), term)
		}, nil

	case AtLeast, AtMost:
		bound, ok := toDecimal(cond.Value)
		if !ok {
			return nil, fmt.Errorf("%s filter on %s requires a number", cond.Op, cond.Field)
		}
		return func(v any) bool {
			n, ok := toDecimal(v)
			if !ok {
				return false
			}
			if cond.Op == AtLeast {
				return n.GreaterThanOrEqual(bound)
			}
			return n.LessThanOrEqual(bound)
		}, nil

	case OnOrAfter, OnOrBefore:
		bound, ok := toTime(cond.Value)
		if !ok {
			return nil, fmt.Errorf("%s filter on %s requires a date", cond.Op, cond.Field)
		}
		return func(v any) bool {
			t, ok := toTime(v)
			if !ok {
				return false
			}
			if cond.Op == OnOrAfter {
				return !t.Before(bound)
			}
			return !t.After(bound)
		}, nil
	}
	return nil, fmt.Errorf("operator %s cannot run in process", cond.Op)
}

//-------------------------------------------------------------------------
//
// pgEdge Brokerage Admin
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package datagen generates account codes and demo brokerage data.
package datagen

import (
	"strings"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
)

// Faker wraps a seeded gofakeit source behind a mutex so that seeding and
// request handlers can share it.
type Faker struct {
	mu  sync.Mutex
	src *gofakeit.Faker
}

// NewFaker returns a Faker seeded from the clock.
func NewFaker() *Faker {
	return NewFakerWithSeed(uint64(time.Now().UnixNano()))
}

// NewFakerWithSeed returns a Faker whose output is reproducible for seed.
func NewFakerWithSeed(seed uint64) *Faker {
	return &Faker{src: gofakeit.New(seed)}
}

// draw runs fn with exclusive use of the source.
func draw[T any](f *Faker, fn func(*gofakeit.Faker) T) T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(f.src)
}

func (f *Faker) Name() string    { return draw(f, (*gofakeit.Faker).Name) }
func (f *Faker) Email() string   { return draw(f, (*gofakeit.Faker).Email) }
func (f *Faker) Phone() string   { return draw(f, (*gofakeit.Faker).Phone) }
func (f *Faker) Company() string { return draw(f, (*gofakeit.Faker).Company) }

// Address is a one-line street and city.
func (f *Faker) Address() string {
	return draw(f, func(g *gofakeit.Faker) string { return g.Street() + ", " + g.City() })
}

// Website is an https URL on a random domain.
func (f *Faker) Website() string {
	return draw(f, func(g *gofakeit.Faker) string { return "https://www." + g.DomainName() })
}

// Description is a short sentence without its trailing period, as used
// for transaction descriptions.
func (f *Faker) Description(words int) string {
	return draw(f, func(g *gofakeit.Faker) string {
		return strings.TrimSuffix(g.Sentence(words), ".")
	})
}

// DateRange returns a time within [start, end].
func (f *Faker) DateRange(start, end time.Time) time.Time {
	return draw(f, func(g *gofakeit.Faker) time.Time { return g.DateRange(start, end) })
}

// Int returns an integer in [min, max].
func (f *Faker) Int(min, max int) int {
	return draw(f, func(g *gofakeit.Faker) int { return g.IntRange(min, max) })
}

// Money returns an amount in [min, max] rounded to cents.
func (f *Faker) Money(min, max decimal.Decimal) decimal.Decimal {
	lo, hi := min.InexactFloat64(), max.InexactFloat64()
	v := draw(f, func(g *gofakeit.Faker) float64 { return g.Float64Range(lo, hi) })
	return decimal.NewFromFloat(v).Round(2)
}

// Digits returns n decimal digits.
func (f *Faker) Digits(n int) string {
	return draw(f, func(g *gofakeit.Faker) string { return g.DigitN(uint(n)) })
}

// Choose returns a random element from the given slice.
func Choose[T any](f *Faker, items []T) T {
	if len(items) == 0 {
		var zero T
		return zero
	}
	return items[f.Int(0, len(items)-1)]
}

// ChooseWeighted returns a random element based on weights.
func ChooseWeighted[T any](f *Faker, items []T, weights []int) T {
	if len(items) == 0 || len(weights) == 0 {
		var zero T
		return zero
	}

	totalWeight := 0
	for _, w := range weights {
		totalWeight += w
	}

	r := f.Int(1, totalWeight)
	cumulative := 0
	for i, w := range weights {
		cumulative += w
		if r <= cumulative {
			return items[i]
		}
	}

	return items[len(items)-1]
}

// RandomString returns n bytes drawn uniformly from charset.
func (f *Faker) RandomString(n int, charset string) string {
	if n <= 0 || charset == "" {
		return ""
	}
	return draw(f, func(g *gofakeit.Faker) string {
		out := make([]byte, n)
		for i := range out {
			out[i] = charset[g.IntRange(0, len(charset)-1)]
		}
		return string(out)
	})
}

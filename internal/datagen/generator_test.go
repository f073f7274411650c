//-------------------------------------------------------------------------
//
// pgEdge Brokerage Admin
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

import (
	"strings"
	"testing"
	"time"
)

func TestCodes(t *testing.T) {
	f := NewFakerWithSeed(42)
	for i := 0; i < 200; i++ {
		if c := f.ClientCode(); !ValidClientCode(c) {
			t.Errorf("Invalid client code: %q", c)
		}
		if c := f.RemisterCode(); !ValidRemisterCode(c) {
			t.Errorf("Invalid remister code: %q", c)
		}
		if c := f.CDSNo(); !ValidCDSNo(c) {
			t.Errorf("Invalid CDS number: %q", c)
		}
	}
}

func TestCodeValidators(t *testing.T) {
	tests := []struct {
		name  string
		valid func(string) bool
		input string
		want  bool
	}{
		{"client code ok", ValidClientCode, "AB12CD3", true},
		{"client code lowercase", ValidClientCode, "ab12cd3", false},
		{"client code short", ValidClientCode, "AB12CD", false},
		{"remister ok", ValidRemisterCode, "Z9Z9", true},
		{"remister long", ValidRemisterCode, "Z9Z9Z", false},
		{"cds ok", ValidCDSNo, "100-999-100000000", true},
		{"cds leading zero", ValidCDSNo, "099-999-100000000", false},
		{"cds short tail", ValidCDSNo, "100-999-10000000", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.valid(tt.input); got != tt.want {
				t.Errorf("Expected %v for %q, got %v", tt.want, tt.input, got)
			}
		})
	}
}

func TestGeneratorAccount(t *testing.T) {
	g := NewGenerator(NewFakerWithSeed(1))
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return now }

	for i := 0; i < 50; i++ {
		a := g.Account("cds-1", "user-1")
		if a.CDSID != "cds-1" || a.UserID != "user-1" {
			t.Errorf("Unexpected references: %s %s", a.CDSID, a.UserID)
		}
		if !a.Type.Valid() || !a.Status.Valid() {
			t.Errorf("Invalid enums: %s %s", a.Type, a.Status)
		}
		if !a.EstimatedTotal.Equal(a.Capital.Add(a.Profit)) {
			t.Errorf("Expected estimated total %s, got %s", a.Capital.Add(a.Profit), a.EstimatedTotal)
		}
		if a.EstimatedTotalTime != 0 && a.EstimatedTotalTime*60 <= now.Unix() {
			t.Errorf("Expected target in the future, got %d", a.EstimatedTotalTime)
		}
		if a.LastTransactionDate.After(now) {
			t.Errorf("Last transaction date %v is after now", a.LastTransactionDate)
		}
	}
}

func TestGeneratorTransactionAndProfile(t *testing.T) {
	g := NewGenerator(NewFakerWithSeed(2))

	tx := g.Transaction("acc-1")
	if tx.StockAccountID != "acc-1" || !tx.Type.Valid() {
		t.Errorf("Unexpected transaction: %+v", tx)
	}
	if tx.Amount.IsNegative() {
		t.Errorf("Expected non-negative amount, got %s", tx.Amount)
	}
	if tx.Description == "" || strings.HasSuffix(tx.Description, ".") {
		t.Errorf("Unexpected description: %q", tx.Description)
	}

	p := g.Profile("user-1", "a@example.com")
	if p.UserID != "user-1" || p.Email != "a@example.com" || p.Name == "" {
		t.Errorf("Unexpected profile: %+v", p)
	}

	c := g.CDS()
	if c.Name == "" || !strings.HasPrefix(c.Website, "https://") {
		t.Errorf("Unexpected CDS: %+v", c)
	}
}

func TestSeedCountsTotal(t *testing.T) {
	c := SeedCounts{CDS: 2, Users: 3, AccountsPerUser: 2, TransactionsPerAccount: 4}
	// 2 cds + 3 users + 3 profiles + 6 accounts + 24 transactions
	if got := c.Total(); got != 38 {
		t.Errorf("Expected 38, got %d", got)
	}
}

func TestProgressReporter(t *testing.T) {
	p := NewProgressReporter("accounts", 10, 0)
	for i := 0; i < 10; i++ {
		p.Update(1)
	}
	if p.Current() != 10 {
		t.Errorf("Expected 10, got %d", p.Current())
	}
	p.Done()
}

//-------------------------------------------------------------------------
//
// pgEdge Brokerage Admin
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/pgEdge/pgedge-brokeradmin/internal/apperrors"
	"github.com/pgEdge/pgedge-brokeradmin/internal/datagen"
	"github.com/pgEdge/pgedge-brokeradmin/internal/directory"
	"github.com/pgEdge/pgedge-brokeradmin/internal/domain"
	"github.com/pgEdge/pgedge-brokeradmin/internal/resolver"
	"github.com/pgEdge/pgedge-brokeradmin/internal/store"
	"github.com/pgEdge/pgedge-brokeradmin/internal/valuation"
)

var now = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func newTestService(t *testing.T) (*Service, *directory.MemoryDirectory) {
	t.Helper()
	current := now
	st := store.NewMemoryStore(store.WithClock(func() time.Time {
		current = current.Add(time.Second)
		return current
	}))
	dir := directory.NewMemoryDirectory(directory.WithHashCost(bcrypt.MinCost))
	svc := New(Config{
		Store:     st,
		Directory: dir,
		Faker:     datagen.NewFakerWithSeed(9),
		Now:       func() time.Time { return now },
		Valuation: valuation.Options{Factor: func() float64 { return 1.02 }},
	})
	return svc, dir
}

func TestCreateCDSValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.CreateCDS(ctx, domain.CDS{Name: "Bursa"})
	if !errors.Is(err, apperrors.ErrValidation) || err.Error() != MsgRequiredFields {
		t.Errorf("Expected %q, got %v", MsgRequiredFields, err)
	}

	id, err := svc.CreateCDS(ctx, domain.CDS{
		Name: "Bursa", Addres: "KL", Website: "https://bursa.example", SSTReg: "W10-1",
	})
	if err != nil || id == "" {
		t.Fatalf("CreateCDS failed: %v", err)
	}
}

func TestCreateAccount(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	tests := []struct {
		name    string
		account domain.StockAccount
		wantErr string
	}{
		{
			name:    "missing cds",
			account: domain.StockAccount{UserID: "u1", Type: domain.AccountBasic, Status: domain.StatusActive},
			wantErr: MsgRequiredFields,
		},
		{
			name:    "bad type",
			account: domain.StockAccount{CDSID: "c1", UserID: "u1", Type: "GOLD", Status: domain.StatusActive},
			wantErr: "type must be one of",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateAccount(ctx, tt.account)
			if !errors.Is(err, apperrors.ErrValidation) || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected validation error containing %q, got %v", tt.wantErr, err)
			}
		})
	}

	created, err := svc.CreateAccount(ctx, domain.StockAccount{
		CDSID:   "c1",
		UserID:  "u1",
		Type:    domain.AccountPremium,
		Status:  domain.StatusPending,
		Capital: decimal.NewFromInt(5000),
		Profit:  decimal.NewFromInt(999),
	})
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	if !datagen.ValidClientCode(created.ClientCode) || !datagen.ValidRemisterCode(created.RemisterCode) ||
		!datagen.ValidCDSNo(created.CDSNo) {
		t.Errorf("Unexpected generated codes: %s %s %s", created.ClientCode, created.RemisterCode, created.CDSNo)
	}

	stored, err := svc.GetAccount(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if !stored.Profit.IsZero() {
		t.Errorf("Expected profit 0, got %s", stored.Profit)
	}
	if !stored.EstimatedTotal.IsZero() || !stored.Capital.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("Unexpected money fields: %s / %s", stored.Capital, stored.EstimatedTotal)
	}
	if !stored.LastTransactionDate.Equal(now) {
		t.Errorf("Expected last transaction date %v, got %v", now, stored.LastTransactionDate)
	}

	err = svc.UpdateAccount(ctx, created.ID, domain.AccountPatch{ClientCode: ptr("SHORT")})
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("Expected validation error for short client code, got %v", err)
	}
}

func TestCreateTransactionDefaults(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	tests := []struct {
		name   string
		amount decimal.Decimal
	}{
		{"zero amount", decimal.Zero},
		{"negative amount", decimal.NewFromInt(-5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTransaction(ctx, domain.StockTransaction{
				StockAccountID: "a1", Description: "Top up", Amount: tt.amount,
			})
			if !errors.Is(err, apperrors.ErrValidation) {
				t.Errorf("Expected ValidationFailed, got %v", err)
			}
		})
	}

	tx, err := svc.CreateTransaction(ctx, domain.StockTransaction{
		StockAccountID: "a1", Description: "Top up", Amount: decimal.NewFromInt(250),
	})
	if err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}
	got, _ := svc.GetTransaction(ctx, tx.ID)
	if got.Type != domain.TransactionIncrease {
		t.Errorf("Expected INCREASE, got %s", got.Type)
	}
	if !got.Date.Equal(now) {
		t.Errorf("Expected date %v, got %v", now, got.Date)
	}
}

func TestSaveProfile(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	if _, err := svc.SaveProfile(ctx, domain.UserProfile{UserID: "u1", Name: "Aina"}); err == nil ||
		err.Error() != MsgNameAndEmail {
		t.Errorf("Expected %q, got %v", MsgNameAndEmail, err)
	}

	id, err := svc.SaveProfile(ctx, domain.UserProfile{UserID: "u1", Name: "Aina", Email: "aina@example.com"})
	if err != nil {
		t.Fatalf("SaveProfile failed: %v", err)
	}
	again, err := svc.SaveProfile(ctx, domain.UserProfile{UserID: "u1", Name: "Aina Rahman", Email: "aina@example.com"})
	if err != nil {
		t.Fatalf("SaveProfile update failed: %v", err)
	}
	if again != id {
		t.Errorf("Expected update of %s, got %s", id, again)
	}

	p, _ := svc.GetProfileByUserID(ctx, "u1")
	if p.Name != "Aina Rahman" {
		t.Errorf("Expected updated name, got %q", p.Name)
	}

	_, err = svc.CreateProfile(ctx, domain.UserProfile{UserID: "u1", Name: "Dup", Email: "d@example.com"})
	if !errors.Is(err, apperrors.ErrAlreadyExists) {
		t.Errorf("Expected AlreadyExists, got %v", err)
	}
}

func TestUserManagement(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	tests := []struct {
		name     string
		email    string
		password string
		wantMsg  string
	}{
		{"missing password", "a@example.com", "", MsgRequiredFields},
		{"short password", "a@example.com", "12345", MsgPasswordLength},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateUser(ctx, tt.email, tt.password)
			if err == nil || err.Error() != tt.wantMsg {
				t.Errorf("Expected %q, got %v", tt.wantMsg, err)
			}
		})
	}

	u, err := svc.CreateUser(ctx, "b@example.com", "123456")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if _, err := svc.CreateUser(ctx, "a@example.com", "123456"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if _, err := svc.UpdateUser(ctx, u.ID, directory.UserUpdate{Email: ptr("")}); err == nil {
		t.Error("Expected empty email to be rejected")
	}
	if _, err := svc.UpdateUser(ctx, u.ID, directory.UserUpdate{Disabled: ptr(true)}); err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}

	users, err := svc.SelectableUsers(ctx, 0)
	if err != nil {
		t.Fatalf("SelectableUsers failed: %v", err)
	}
	if len(users) != 1 || users[0].Email != "a@example.com" {
		t.Errorf("Expected only a@example.com, got %+v", users)
	}

	if _, err := svc.Authenticate(ctx, "a@example.com", "123456"); err != nil {
		t.Errorf("Expected authentication to succeed, got %v", err)
	}
}

func TestRoleAuthorizer(t *testing.T) {
	ctx := context.Background()
	_, dir := newTestService(t)

	admin, _ := dir.CreateUser(ctx, "admin@web.com", "secret1")
	dir.UpdateUser(ctx, admin.ID, directory.UserUpdate{Role: ptr("admin")})
	plain, _ := dir.CreateUser(ctx, "user@web.com", "secret1")
	disabledAdmin, _ := dir.CreateUser(ctx, "old@web.com", "secret1")
	dir.UpdateUser(ctx, disabledAdmin.ID, directory.UserUpdate{Role: ptr("admin"), Disabled: ptr(true)})

	authz := NewRoleAuthorizer(dir, "")
	tests := []struct {
		name string
		p    Principal
		want bool
	}{
		{"admin role", Principal{UserID: admin.ID}, true},
		{"no role", Principal{UserID: plain.ID}, false},
		{"disabled admin", Principal{UserID: disabledAdmin.ID}, false},
		{"unknown user", Principal{UserID: "ghost"}, false},
		{"anonymous", Principal{}, false},
		{"email alone grants nothing", Principal{Email: "admin@web.com"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := authz.IsAdmin(ctx, tt.p)
			if err != nil {
				t.Fatalf("IsAdmin failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	empty, err := svc.Dashboard(ctx, "nobody", 0)
	if err != nil || empty.Account != nil || empty.Transactions == nil {
		t.Fatalf("Expected empty dashboard, got %+v / %v", empty, err)
	}

	acc, err := svc.CreateAccount(ctx, domain.StockAccount{
		CDSID:              "deleted-cds",
		UserID:             "owner",
		Type:               domain.AccountBasic,
		Status:             domain.StatusActive,
		EstimatedTotal:     decimal.NewFromInt(1000),
		EstimatedTotalTime: now.Unix()/60 + 30,
	})
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := svc.CreateTransaction(ctx, domain.StockTransaction{
			StockAccountID: acc.ID, Description: "Buy", Amount: decimal.NewFromInt(10),
		}); err != nil {
			t.Fatalf("CreateTransaction failed: %v", err)
		}
	}

	d, err := svc.Dashboard(ctx, "owner", 2)
	if err != nil {
		t.Fatalf("Dashboard failed: %v", err)
	}
	if d.Account == nil || d.Account.ID != acc.ID {
		t.Fatalf("Expected account %s, got %+v", acc.ID, d.Account)
	}
	if d.CDSName != resolver.UnknownCDS || d.CDS != nil {
		t.Errorf("Expected unknown CDS sentinel, got %q", d.CDSName)
	}
	if len(d.Transactions) != 2 {
		t.Errorf("Expected 2 transactions, got %d", len(d.Transactions))
	}
	if d.Valuation == nil || d.Valuation.State != valuation.Fluctuating ||
		!d.Valuation.EstimatedTotal.Equal(decimal.NewFromInt(1020)) {
		t.Errorf("Unexpected valuation: %+v", d.Valuation)
	}

	stored, _ := svc.GetAccount(ctx, acc.ID)
	if !stored.EstimatedTotal.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("Expected stored total untouched, got %s", stored.EstimatedTotal)
	}
}

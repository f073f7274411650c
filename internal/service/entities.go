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

	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-brokeradmin/internal/apperrors"
	"github.com/pgEdge/pgedge-brokeradmin/internal/domain"
	"github.com/pgEdge/pgedge-brokeradmin/internal/logging"
)

// CDS operations.

// CreateCDS validates and stores a CDS record.
func (s *Service) CreateCDS(ctx context.Context, c domain.CDS) (string, error) {
	if err := s.check(c); err != nil {
		return "", err
	}
	return s.cds.Create(ctx, &c)
}

// GetCDS returns a CDS record.
func (s *Service) GetCDS(ctx context.Context, id string) (*domain.CDS, error) {
	return s.cds.Get(ctx, id)
}

// UpdateCDS applies a partial update to a CDS record.
func (s *Service) UpdateCDS(ctx context.Context, id string, patch domain.CDSPatch) error {
	return s.cds.Update(ctx, id, patch)
}

// DeleteCDS removes a CDS record. Accounts that reference it are left in
// place and resolve to a sentinel name.
func (s *Service) DeleteCDS(ctx context.Context, id string) error {
	return s.cds.Delete(ctx, id)
}

// ListCDS returns up to limit CDS records, newest first.
func (s *Service) ListCDS(ctx context.Context, limit int) ([]domain.CDS, error) {
	return s.cds.List(ctx, limit)
}

// FilterCDS returns CDS records matching f.
func (s *Service) FilterCDS(ctx context.Context, f domain.CDSFilter) ([]domain.CDS, error) {
	return s.cds.Filter(ctx, f)
}

// Stock account operations.

// CreateAccount validates a and stores it with generated client,
// remister and CDS numbers. Profit always starts at zero; a missing last
// transaction date defaults to now.
func (s *Service) CreateAccount(ctx context.Context, a domain.StockAccount) (*domain.StockAccount, error) {
	if err := s.check(a); err != nil {
		return nil, err
	}

	a.ClientCode = s.faker.ClientCode()
	a.RemisterCode = s.faker.RemisterCode()
	a.CDSNo = s.faker.CDSNo()
	a.Profit = decimal.Zero
	if a.LastTransactionDate.IsZero() {
		a.LastTransactionDate = s.now()
	}

	id, err := s.accounts.Create(ctx, &a)
	if err != nil {
		return nil, err
	}
	a.ID = id

	logging.Info().
		Str("id", id).
		Str("client_code", a.ClientCode).
		Str("user_id", a.UserID).
		Msg("Created stock account")
	return &a, nil
}

// GetAccount returns a stock account.
func (s *Service) GetAccount(ctx context.Context, id string) (*domain.StockAccount, error) {
	return s.accounts.Get(ctx, id)
}

// UpdateAccount applies a partial update to a stock account.
func (s *Service) UpdateAccount(ctx context.Context, id string, patch domain.AccountPatch) error {
	if err := s.check(patch); err != nil {
		return err
	}
	return s.accounts.Update(ctx, id, patch)
}

// UpdateAccountStatus sets the status of a stock account.
func (s *Service) UpdateAccountStatus(ctx context.Context, id string, status domain.AccountStatus) error {
	return s.accounts.UpdateStatus(ctx, id, status)
}

// DeleteAccount removes a stock account. Its transactions are kept.
func (s *Service) DeleteAccount(ctx context.Context, id string) error {
	return s.accounts.Delete(ctx, id)
}

// ListAccounts returns up to limit accounts, newest first.
func (s *Service) ListAccounts(ctx context.Context, limit int) ([]domain.StockAccount, error) {
	return s.accounts.List(ctx, limit)
}

// FilterAccounts returns accounts matching f.
func (s *Service) FilterAccounts(ctx context.Context, f domain.AccountFilter) ([]domain.StockAccount, error) {
	return s.accounts.Filter(ctx, f)
}

// Stock transaction operations.

// CreateTransaction validates t and stores it. The amount must be
// positive; a missing date defaults to now and a missing type to
// INCREASE. The parent account is not recomputed.
func (s *Service) CreateTransaction(ctx context.Context, t domain.StockTransaction) (*domain.StockTransaction, error) {
	if err := s.check(t); err != nil {
		return nil, err
	}
	if t.Amount.IsZero() {
		return nil, apperrors.Validation(MsgRequiredFields)
	}
	if t.Amount.IsNegative() {
		return nil, apperrors.Validation("amount must not be negative")
	}
	if t.Date.IsZero() {
		t.Date = s.now()
	}
	if t.Type == "" {
		t.Type = domain.TransactionIncrease
	}

	id, err := s.transactions.Create(ctx, &t)
	if err != nil {
		return nil, err
	}
	t.ID = id
	return &t, nil
}

// GetTransaction returns a stock transaction.
func (s *Service) GetTransaction(ctx context.Context, id string) (*domain.StockTransaction, error) {
	return s.transactions.Get(ctx, id)
}

// UpdateTransaction applies a partial update to a stock transaction.
func (s *Service) UpdateTransaction(ctx context.Context, id string, patch domain.TransactionPatch) error {
	if err := s.check(patch); err != nil {
		return err
	}
	if patch.Amount != nil && patch.Amount.IsNegative() {
		return apperrors.Validation("amount must not be negative")
	}
	return s.transactions.Update(ctx, id, patch)
}

// DeleteTransaction removes a stock transaction.
func (s *Service) DeleteTransaction(ctx context.Context, id string) error {
	return s.transactions.Delete(ctx, id)
}

// ListTransactions returns up to limit transactions, newest first.
func (s *Service) ListTransactions(ctx context.Context, limit int) ([]domain.StockTransaction, error) {
	return s.transactions.List(ctx, limit)
}

// FilterTransactions returns transactions matching f.
func (s *Service) FilterTransactions(ctx context.Context, f domain.TransactionFilter) ([]domain.StockTransaction, error) {
	return s.transactions.Filter(ctx, f)
}

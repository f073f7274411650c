//-------------------------------------------------------------------------
//
// pgEdge Brokerage Admin
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-brokeradmin/internal/apperrors"
	"github.com/pgEdge/pgedge-brokeradmin/internal/domain"
	"github.com/pgEdge/pgedge-brokeradmin/internal/filter"
	"github.com/pgEdge/pgedge-brokeradmin/internal/store"
)

type accountRule = filter.Rule[domain.AccountFilter]

var accountFilter = filter.New(domain.CollectionAccounts,
	accountRule{Field: "client_code", Op: filter.Equal,
		Value: filter.Param(func(f domain.AccountFilter) *string { return f.ClientCode })},
	accountRule{Field: "cds_id", Op: filter.Equal,
		Value: filter.Param(func(f domain.AccountFilter) *string { return f.CDSID })},
	accountRule{Field: "user_id", Op: filter.Equal,
		Value: filter.Param(func(f domain.AccountFilter) *string { return f.UserID })},
	accountRule{Field: "type", Op: filter.Equal,
		Value: filter.Param(func(f domain.AccountFilter) *domain.AccountType { return f.Type })},
	accountRule{Field: "status", Op: filter.Equal,
		Value: filter.Param(func(f domain.AccountFilter) *domain.AccountStatus { return f.Status })},
	accountRule{Field: "capital", Op: filter.AtLeast,
		Value: filter.Param(func(f domain.AccountFilter) *decimal.Decimal { return f.MinCapital })},
	accountRule{Field: "capital", Op: filter.AtMost,
		Value: filter.Param(func(f domain.AccountFilter) *decimal.Decimal { return f.MaxCapital })},
)

// AccountRepository stores stock accounts.
type AccountRepository struct {
	*Repository[domain.StockAccount]
}

// NewAccountRepository creates an AccountRepository backed by st.
func NewAccountRepository(st store.Store) *AccountRepository {
	return &AccountRepository{
		newRepository[domain.StockAccount](st, domain.CollectionAccounts, "StockAccount", domain.AccountTimeFields),
	}
}

// Filter returns accounts matching f.
func (r *AccountRepository) Filter(ctx context.Context, f domain.AccountFilter) ([]domain.StockAccount, error) {
	return runFilter(ctx, r.Repository, accountFilter, f, f.Limit)
}

// SearchByClientCode returns accounts with exactly the given client code.
func (r *AccountRepository) SearchByClientCode(ctx context.Context, code string, limit int) ([]domain.StockAccount, error) {
	return r.Filter(ctx, domain.AccountFilter{ClientCode: &code, Limit: limit})
}

// ByCDS returns accounts held at a CDS.
func (r *AccountRepository) ByCDS(ctx context.Context, cdsID string, limit int) ([]domain.StockAccount, error) {
	return r.Filter(ctx, domain.AccountFilter{CDSID: &cdsID, Limit: limit})
}

// ByUser returns accounts owned by a directory user.
func (r *AccountRepository) ByUser(ctx context.Context, userID string, limit int) ([]domain.StockAccount, error) {
	return r.Filter(ctx, domain.AccountFilter{UserID: &userID, Limit: limit})
}

// UpdateStatus sets an account's status.
func (r *AccountRepository) UpdateStatus(ctx context.Context, id string, status domain.AccountStatus) error {
	if !status.Valid() {
		return apperrors.Validation("invalid account status: " + string(status))
	}
	return r.Update(ctx, id, domain.AccountPatch{Status: &status})
}

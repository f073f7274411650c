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
	"time"

	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-brokeradmin/internal/domain"
	"github.com/pgEdge/pgedge-brokeradmin/internal/filter"
	"github.com/pgEdge/pgedge-brokeradmin/internal/store"
)

type transactionRule = filter.Rule[domain.TransactionFilter]

var transactionFilter = filter.New(domain.CollectionTransactions,
	transactionRule{Field: "stock_account_id", Op: filter.Equal,
		Value: filter.Param(func(f domain.TransactionFilter) *string { return f.StockAccountID })},
	transactionRule{Field: "type", Op: filter.Equal,
		Value: filter.Param(func(f domain.TransactionFilter) *domain.TransactionType { return f.Type })},
	transactionRule{Field: "date", Op: filter.OnOrAfter,
		Value: filter.Param(func(f domain.TransactionFilter) *time.Time { return f.StartDate })},
	transactionRule{Field: "date", Op: filter.OnOrBefore,
		Value: filter.Param(func(f domain.TransactionFilter) *time.Time { return f.EndDate })},
	transactionRule{Field: "amount", Op: filter.AtLeast,
		Value: filter.Param(func(f domain.TransactionFilter) *decimal.Decimal { return f.MinAmount })},
	transactionRule{Field: "amount", Op: filter.AtMost,
		Value: filter.Param(func(f domain.TransactionFilter) *decimal.Decimal { return f.MaxAmount })},
	transactionRule{Field: "description", Op: filter.Contains,
		Value: filter.Param(func(f domain.TransactionFilter) *string { return f.Description })},
)

// TransactionRepository stores stock transactions.
type TransactionRepository struct {
	*Repository[domain.StockTransaction]
}

// NewTransactionRepository creates a TransactionRepository backed by st.
func NewTransactionRepository(st store.Store) *TransactionRepository {
	return &TransactionRepository{
		newRepository[domain.StockTransaction](st, domain.CollectionTransactions, "StockTransaction", domain.TransactionTimeFields),
	}
}

// Filter returns transactions matching f.
func (r *TransactionRepository) Filter(ctx context.Context, f domain.TransactionFilter) ([]domain.StockTransaction, error) {
	return runFilter(ctx, r.Repository, transactionFilter, f, f.Limit)
}

// ByAccount returns the transactions of one stock account.
func (r *TransactionRepository) ByAccount(ctx context.Context, accountID string, limit int) ([]domain.StockTransaction, error) {
	return r.Filter(ctx, domain.TransactionFilter{StockAccountID: &accountID, Limit: limit})
}

// ByDateRange returns transactions dated within [start, end].
func (r *TransactionRepository) ByDateRange(ctx context.Context, start, end time.Time, limit int) ([]domain.StockTransaction, error) {
	return r.Filter(ctx, domain.TransactionFilter{StartDate: &start, EndDate: &end, Limit: limit})
}

// ByType returns transactions of one direction.
func (r *TransactionRepository) ByType(ctx context.Context, t domain.TransactionType, limit int) ([]domain.StockTransaction, error) {
	return r.Filter(ctx, domain.TransactionFilter{Type: &t, Limit: limit})
}

//-------------------------------------------------------------------------
//
// pgEdge Brokerage Admin
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Filter records. A nil field means the filter was not supplied; a pointer
// to an empty string is an exact-match filter on the empty value.

// AccountFilter selects stock accounts.
type AccountFilter struct {
	ClientCode *string
	CDSID      *string
	UserID     *string
	Type       *AccountType
	Status     *AccountStatus
	MinCapital *decimal.Decimal
	MaxCapital *decimal.Decimal
	Limit      int
}

// TransactionFilter selects stock transactions.
type TransactionFilter struct {
	StockAccountID *string
	Type           *TransactionType
	StartDate      *time.Time
	EndDate        *time.Time
	MinAmount      *decimal.Decimal
	MaxAmount      *decimal.Decimal
	Description    *string
	Limit          int
}

// ProfileFilter selects user profiles. Name is a case-sensitive prefix.
type ProfileFilter struct {
	Name     *string
	IC       *string
	Email    *string
	BankName *string
	Limit    int
}

// CDSFilter selects CDS records. Name is a case-sensitive prefix.
type CDSFilter struct {
	Name    *string
	SSTReg  *string
	Website *string
	Limit   int
}

// Patch records carry partial updates; nil fields are left unchanged.

// CDSPatch updates a CDS record.
type CDSPatch struct {
	Name    *string `json:"name,omitempty"`
	Addres  *string `json:"addres,omitempty"`
	Website *string `json:"website,omitempty"`
	SSTReg  *string `json:"sst_reg,omitempty"`
}

// AccountPatch updates a stock account.
type AccountPatch struct {
	ClientCode          *string          `json:"client_code,omitempty" validate:"omitempty,len=7"`
	RemisterCode        *string          `json:"remister_code,omitempty" validate:"omitempty,len=4"`
	CDSNo               *string          `json:"cds_no,omitempty"`
	CDSID               *string          `json:"cds_id,omitempty"`
	UserID              *string          `json:"user_id,omitempty"`
	Type                *AccountType     `json:"type,omitempty" validate:"omitempty,oneof=BASIC PREMIUM BUSINESS INVESTOR"`
	Status              *AccountStatus   `json:"status,omitempty" validate:"omitempty,oneof=ACTIVE INACTIVE PENDING CLOSED"`
	Capital             *decimal.Decimal `json:"capital,omitempty"`
	Profit              *decimal.Decimal `json:"profit,omitempty"`
	EstimatedTotal      *decimal.Decimal `json:"estimated_total,omitempty"`
	EstimatedTotalTime  *int64           `json:"estimated_total_time,omitempty" validate:"omitempty,gte=0"`
	LastTransactionDate *time.Time       `json:"last_transaction_date,omitempty"`
}

// TransactionPatch updates a stock transaction.
type TransactionPatch struct {
	StockAccountID *string          `json:"stock_account_id,omitempty"`
	Date           *time.Time       `json:"date,omitempty"`
	Type           *TransactionType `json:"type,omitempty" validate:"omitempty,oneof=INCREASE DECREASE"`
	Description    *string          `json:"description,omitempty"`
	Amount         *decimal.Decimal `json:"amount,omitempty"`
}

// ProfilePatch updates a user profile.
type ProfilePatch struct {
	Name        *string `json:"name,omitempty"`
	IC          *string `json:"ic,omitempty"`
	BankAccount *string `json:"bank_account,omitempty"`
	BankName    *string `json:"bank_name,omitempty"`
	Email       *string `json:"email,omitempty"`
	Phone       *string `json:"phone,omitempty"`
}

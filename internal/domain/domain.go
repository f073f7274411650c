//-------------------------------------------------------------------------
//
// pgEdge Brokerage Admin
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package domain defines the brokerage entities, their enumerations and the
// filter and patch records used to query and modify them.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Document collections.
const (
	CollectionCDS          = "CDS"
	CollectionAccounts     = "StockAccounts"
	CollectionTransactions = "StockTransactions"
	CollectionProfiles     = "UserProfiles"
)

// AccountType classifies a stock account.
type AccountType string

const (
	AccountBasic    AccountType = "BASIC"
	AccountPremium  AccountType = "PREMIUM"
	AccountBusiness AccountType = "BUSINESS"
	AccountInvestor AccountType = "INVESTOR"
)

// AccountTypes lists every AccountType.
var AccountTypes = []AccountType{AccountBasic, AccountPremium, AccountBusiness, AccountInvestor}

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	for _, known := range AccountTypes {
		if t == known {
			return true
		}
	}
	return false
}

// AccountStatus is the lifecycle state of a stock account.
type AccountStatus string

const (
	StatusActive   AccountStatus = "ACTIVE"
	StatusInactive AccountStatus = "INACTIVE"
	StatusPending  AccountStatus = "PENDING"
	StatusClosed   AccountStatus = "CLOSED"
)

// AccountStatuses lists every AccountStatus.
var AccountStatuses = []AccountStatus{StatusActive, StatusInactive, StatusPending, StatusClosed}

// Valid reports whether s is a known account status.
func (s AccountStatus) Valid() bool {
	for _, known := range AccountStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// TransactionType is the direction of a stock transaction. Amounts are
// always non-negative; the type carries the sign.
type TransactionType string

const (
	TransactionIncrease TransactionType = "INCREASE"
	TransactionDecrease TransactionType = "DECREASE"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == TransactionIncrease || t == TransactionDecrease
}

// Signed returns amount with the sign implied by t.
func (t TransactionType) Signed(amount decimal.Decimal) decimal.Decimal {
	if t == TransactionDecrease {
		return amount.Neg()
	}
	return amount
}

// Audit holds the store-stamped timestamps shared by every entity.
type Audit struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CDS is a custodian depository record.
type CDS struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name" validate:"required"`
	Addres  string `json:"addres" validate:"required"`
	Website string `json:"website" validate:"required"`
	SSTReg  string `json:"sst_reg" validate:"required"`
	Audit
}

// StockAccount is a brokerage account owned by a directory user and held
// at a CDS.
type StockAccount struct {
	ID           string        `json:"id,omitempty"`
	ClientCode   string        `json:"client_code" validate:"omitempty,len=7"`
	RemisterCode string        `json:"remister_code" validate:"omitempty,len=4"`
	CDSNo        string        `json:"cds_no"`
	CDSID        string        `json:"cds_id" validate:"required"`
	UserID       string        `json:"user_id" validate:"required"`
	Type         AccountType   `json:"type" validate:"required,oneof=BASIC PREMIUM BUSINESS INVESTOR"`
	Status       AccountStatus `json:"status" validate:"required,oneof=ACTIVE INACTIVE PENDING CLOSED"`

	Capital        decimal.Decimal `json:"capital"`
	Profit         decimal.Decimal `json:"profit"`
	EstimatedTotal decimal.Decimal `json:"estimated_total"`

	// EstimatedTotalTime is the settlement instant in whole minutes since
	// the Unix epoch; zero means no settlement window.
	EstimatedTotalTime int64 `json:"estimated_total_time" validate:"gte=0"`

	LastTransactionDate time.Time `json:"last_transaction_date"`
	Audit
}

// StockTransaction is a single movement on a stock account.
type StockTransaction struct {
	ID             string          `json:"id,omitempty"`
	StockAccountID string          `json:"stock_account_id" validate:"required"`
	Date           time.Time       `json:"date"`
	Type           TransactionType `json:"type" validate:"omitempty,oneof=INCREASE DECREASE"`
	Description    string          `json:"description" validate:"required"`
	Amount         decimal.Decimal `json:"amount"`
	Audit
}

// UserProfile holds personal and banking details for a directory user.
// At most one profile exists per UserID.
type UserProfile struct {
	ID          string `json:"id,omitempty"`
	UserID      string `json:"user_id"`
	Name        string `json:"name" validate:"required"`
	IC          string `json:"ic"`
	BankAccount string `json:"bank_account"`
	BankName    string `json:"bank_name"`
	Email       string `json:"email" validate:"required"`
	Phone       string `json:"phone"`
	Audit
}

// Time fields per collection that are held as store timestamps.
var (
	AccountTimeFields     = []string{"last_transaction_date"}
	TransactionTimeFields = []string{"date"}
)

//-------------------------------------------------------------------------
//
// pgEdge Brokerage Admin
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package resolver joins accounts and transactions with the CDS records
// and directory users they reference. Unresolvable references render as
// sentinels; rows are never dropped.
package resolver

import (
	"sort"

	"github.com/pgEdge/pgedge-brokeradmin/internal/directory"
	"github.com/pgEdge/pgedge-brokeradmin/internal/domain"
)

// Sentinels rendered in place of unresolved references.
const (
	UnknownCDS     = "Unknown CDS"
	UnknownUser    = "Unknown User"
	UnknownAccount = "Unknown Account"
	Loading        = "Loading..."
)

// AccountRow is an account joined with its CDS name and owner email.
type AccountRow struct {
	domain.StockAccount
	CDSName   string `json:"cds_name"`
	UserEmail string `json:"user_email"`
}

// TransactionRow is a transaction joined with its account's client code
// and owner email.
type TransactionRow struct {
	domain.StockTransaction
	ClientCode string `json:"client_code"`
	UserEmail  string `json:"user_email"`
}

// SelectableUsers returns the users that can own an account: not
// disabled and with an email, sorted by email ascending. The input is
// not modified.
func SelectableUsers(users []directory.User) []directory.User {
	out := make([]directory.User, 0, len(users))
	for _, u := range users {
		if u.Disabled || u.Email == "" {
			continue
		}
		out = append(out, u)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Email < out[j].Email
	})
	return out
}

// Accounts joins every account with its CDS name and owner email. Owners
// are looked up among SelectableUsers(users). A nil cds or users slice
// means that set has not been loaded yet and renders as Loading; a loaded
// set without the referenced ID renders as UnknownCDS or UnknownUser.
func Accounts(accounts []domain.StockAccount, cds []domain.CDS, users []directory.User) []AccountRow {
	cdsNames := cdsIndex(cds)
	emails := userIndex(users)

	rows := make([]AccountRow, 0, len(accounts))
	for _, a := range accounts {
		rows = append(rows, AccountRow{
			StockAccount: a,
			CDSName:      lookup(cdsNames, a.CDSID, UnknownCDS),
			UserEmail:    lookup(emails, a.UserID, UnknownUser),
		})
	}
	return rows
}

// Transactions joins every transaction with its account's client code and
// the account owner's email, following the same nil-means-loading rule as
// Accounts.
func Transactions(txs []domain.StockTransaction, accounts []domain.StockAccount, users []directory.User) []TransactionRow {
	var byID map[string]domain.StockAccount
	if accounts != nil {
		byID = make(map[string]domain.StockAccount, len(accounts))
		for _, a := range accounts {
			byID[a.ID] = a
		}
	}
	emails := userIndex(users)

	rows := make([]TransactionRow, 0, len(txs))
	for _, tx := range txs {
		row := TransactionRow{StockTransaction: tx, ClientCode: Loading, UserEmail: Loading}
		if byID != nil {
			account, ok := byID[tx.StockAccountID]
			if !ok {
				row.ClientCode = UnknownAccount
				row.UserEmail = UnknownUser
			} else {
				row.ClientCode = account.ClientCode
				row.UserEmail = lookup(emails, account.UserID, UnknownUser)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func cdsIndex(cds []domain.CDS) map[string]string {
	if cds == nil {
		return nil
	}
	m := make(map[string]string, len(cds))
	for _, c := range cds {
		m[c.ID] = c.Name
	}
	return m
}

// userIndex maps the selectable users to their emails. Disabled and
// email-less users are left out, so their accounts render as UnknownUser.
func userIndex(users []directory.User) map[string]string {
	if users == nil {
		return nil
	}
	selectable := SelectableUsers(users)
	m := make(map[string]string, len(selectable))
	for _, u := range selectable {
		m[u.ID] = u.Email
	}
	return m
}

func lookup(index map[string]string, key, unknown string) string {
	if index == nil {
		return Loading
	}
	if v, ok := index[key]; ok && v != "" {
		return v
	}
	return unknown
}

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

	"github.com/pgEdge/pgedge-brokeradmin/internal/apperrors"
	"github.com/pgEdge/pgedge-brokeradmin/internal/domain"
	"github.com/pgEdge/pgedge-brokeradmin/internal/resolver"
	"github.com/pgEdge/pgedge-brokeradmin/internal/valuation"
)

// Dashboard is the account owner's view: their first account, its CDS,
// recent transactions and the displayed valuation.
type Dashboard struct {
	Account      *domain.StockAccount      `json:"account"`
	CDSName      string                    `json:"cds_name"`
	CDS          *domain.CDS               `json:"cds,omitempty"`
	Transactions []domain.StockTransaction `json:"transactions"`
	Valuation    *valuation.Snapshot       `json:"valuation,omitempty"`
}

// Dashboard assembles the dashboard of userID. A user without accounts
// gets an empty dashboard. A missing CDS renders as the unknown sentinel.
// The valuation is sampled once at call time; nothing is written back.
func (s *Service) Dashboard(ctx context.Context, userID string, txLimit int) (*Dashboard, error) {
	d := &Dashboard{Transactions: []domain.StockTransaction{}}

	accounts, err := s.accounts.ByUser(ctx, userID, 1)
	if err != nil {
		return d, err
	}
	if len(accounts) == 0 {
		return d, nil
	}
	account := accounts[0]
	d.Account = &account

	d.CDSName = resolver.UnknownCDS
	cds, err := s.cds.Get(ctx, account.CDSID)
	switch {
	case err == nil:
		d.CDS = cds
		d.CDSName = cds.Name
	case !errors.Is(err, apperrors.ErrNotFound):
		return d, err
	}

	txs, err := s.transactions.ByAccount(ctx, account.ID, txLimit)
	if err != nil {
		return d, err
	}
	d.Transactions = txs

	animator := valuation.New(valuation.BaselineOf(account), s.valuation)
	snap := animator.Tick(s.now())
	d.Valuation = &snap
	return d, nil
}

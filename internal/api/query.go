//-------------------------------------------------------------------------
//
// pgEdge Brokerage Admin
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package api

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-brokeradmin/internal/apperrors"
	"github.com/pgEdge/pgedge-brokeradmin/internal/domain"
)

// queryParser reads optional query parameters. A parameter that is
// present but empty is kept as a pointer to the empty string. The first
// malformed value is remembered in err.
type queryParser struct {
	c     *gin.Context
	found bool
	err   error
}

func (p *queryParser) str(name string) *string {
	v, ok := p.c.GetQuery(name)
	if !ok {
		return nil
	}
	p.found = true
	return &v
}

func (p *queryParser) dec(name string) *decimal.Decimal {
	s := p.str(name)
	if s == nil {
		return nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		p.fail(name, *s)
		return nil
	}
	return &d
}

// date accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
func (p *queryParser) date(name string) *time.Time {
	s := p.str(name)
	if s == nil {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(layout, *s); err == nil {
			return &t
		}
	}
	p.fail(name, *s)
	return nil
}

func (p *queryParser) fail(name, value string) {
	if p.err == nil {
		p.err = apperrors.Validation(fmt.Sprintf("invalid %s: %q", name, value))
	}
}

// limit reads the limit parameter. Absent or malformed means 0, which the
// repositories turn into their default.
func limit(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		return 0
	}
	return n
}

func accountFilter(c *gin.Context) (domain.AccountFilter, bool, error) {
	p := &queryParser{c: c}
	f := domain.AccountFilter{
		ClientCode: p.str("client_code"),
		CDSID:      p.str("cds_id"),
		UserID:     p.str("user_id"),
		MinCapital: p.dec("min_capital"),
		MaxCapital: p.dec("max_capital"),
		Limit:      limit(c),
	}
	if s := p.str("type"); s != nil {
		t := domain.AccountType(*s)
		f.Type = &t
	}
	if s := p.str("status"); s != nil {
		st := domain.AccountStatus(*s)
		f.Status = &st
	}
	return f, p.found, p.err
}

func transactionFilter(c *gin.Context) (domain.TransactionFilter, bool, error) {
	p := &queryParser{c: c}
	f := domain.TransactionFilter{
		StockAccountID: p.str("stock_account_id"),
		StartDate:      p.date("start_date"),
		EndDate:        p.date("end_date"),
		MinAmount:      p.dec("min_amount"),
		MaxAmount:      p.dec("max_amount"),
		Description:    p.str("description"),
		Limit:          limit(c),
	}
	if s := p.str("type"); s != nil {
		t := domain.TransactionType(*s)
		f.Type = &t
	}
	return f, p.found, p.err
}

func profileFilter(c *gin.Context) (domain.ProfileFilter, bool) {
	p := &queryParser{c: c}
	f := domain.ProfileFilter{
		Name:     p.str("name"),
		IC:       p.str("ic"),
		Email:    p.str("email"),
		BankName: p.str("bank_name"),
		Limit:    limit(c),
	}
	return f, p.found
}

func cdsFilter(c *gin.Context) (domain.CDSFilter, bool) {
	p := &queryParser{c: c}
	f := domain.CDSFilter{
		Name:    p.str("name"),
		SSTReg:  p.str("sst_reg"),
		Website: p.str("website"),
		Limit:   limit(c),
	}
	return f, p.found
}

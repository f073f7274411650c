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
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-brokeradmin/internal/domain"
	"github.com/pgEdge/pgedge-brokeradmin/internal/logging"
)

// SeedCounts configures how much demo data to generate.
type SeedCounts struct {
	// CDS is the number of depository records.
	CDS int

	// Users is the number of directory users, each with one profile.
	Users int

	// AccountsPerUser is the number of stock accounts per user.
	AccountsPerUser int

	// TransactionsPerAccount is the number of transactions per account.
	TransactionsPerAccount int

	// ProgressInterval is how often to log progress (in records).
	ProgressInterval int64
}

// DefaultSeedCounts returns a small demo data set.
func DefaultSeedCounts() SeedCounts {
	return SeedCounts{
		CDS:                    5,
		Users:                  10,
		AccountsPerUser:        2,
		TransactionsPerAccount: 5,
		ProgressInterval:       25,
	}
}

// Total returns the number of records the counts produce.
func (c SeedCounts) Total() int64 {
	accounts := int64(c.Users) * int64(c.AccountsPerUser)
	return int64(c.CDS) + int64(c.Users)*2 + accounts + accounts*int64(c.TransactionsPerAccount)
}

var bankNames = []string{
	"Maybank", "CIMB Bank", "Public Bank", "RHB Bank",
	"Hong Leong Bank", "AmBank", "Bank Islam", "OCBC Bank",
}

// Ranges for generated money values.
var (
	minCapital     = decimal.NewFromInt(1000)
	maxCapital     = decimal.NewFromInt(250000)
	minProfitRatio = decimal.RequireFromString("-0.1")
	maxProfitRatio = decimal.RequireFromString("0.3")
	minAmount      = decimal.NewFromInt(10)
	maxAmount      = decimal.NewFromInt(20000)
)

// Generator produces brokerage entities populated with fake data.
type Generator struct {
	faker *Faker
	now   func() time.Time
}

// NewGenerator creates a generator that draws from faker.
func NewGenerator(faker *Faker) *Generator {
	return &Generator{faker: faker, now: time.Now}
}

// CDS generates a depository record.
func (g *Generator) CDS() domain.CDS {
	company := g.faker.Company()
	return domain.CDS{
		Name:    company + " Depository",
		Addres:  g.faker.Address(),
		Website: g.faker.Website(),
		SSTReg:  fmt.Sprintf("W10-%s-%s", g.faker.Digits(4), g.faker.Digits(8)),
	}
}

// Account generates a stock account held at cdsID and owned by userID.
// Statuses favour ACTIVE and about a third of accounts get a settlement
// window up to two hours ahead.
func (g *Generator) Account(cdsID, userID string) domain.StockAccount {
	capital := g.faker.Money(minCapital, maxCapital)
	profit := g.faker.Money(capital.Mul(minProfitRatio), capital.Mul(maxProfitRatio))
	now := g.now()

	account := domain.StockAccount{
		ClientCode:   g.faker.ClientCode(),
		RemisterCode: g.faker.RemisterCode(),
		CDSNo:        g.faker.CDSNo(),
		CDSID:        cdsID,
		UserID:       userID,
		Type:         Choose(g.faker, domain.AccountTypes),
		Status: ChooseWeighted(g.faker, domain.AccountStatuses,
			[]int{70, 10, 15, 5}),
		Capital:             capital,
		Profit:              profit,
		EstimatedTotal:      capital.Add(profit),
		LastTransactionDate: g.faker.DateRange(now.AddDate(0, -6, 0), now),
	}
	if g.faker.Int(1, 3) == 1 {
		target := now.Add(time.Duration(g.faker.Int(5, 120)) * time.Minute)
		account.EstimatedTotalTime = target.Unix() / 60
	}
	return account
}

// Transaction generates a movement on accountID dated within the last
// six months.
func (g *Generator) Transaction(accountID string) domain.StockTransaction {
	now := g.now()
	txType := ChooseWeighted(g.faker,
		[]domain.TransactionType{domain.TransactionIncrease, domain.TransactionDecrease},
		[]int{60, 40})
	return domain.StockTransaction{
		StockAccountID: accountID,
		Date:           g.faker.DateRange(now.AddDate(0, -6, 0), now),
		Type:           txType,
		Description:    g.faker.Description(4),
		Amount:         g.faker.Money(minAmount, maxAmount),
	}
}

// Profile generates a profile for userID using email as the contact address.
func (g *Generator) Profile(userID, email string) domain.UserProfile {
	return domain.UserProfile{
		UserID:      userID,
		Name:        g.faker.Name(),
		IC:          fmt.Sprintf("%s-%s-%s", g.faker.Digits(6), g.faker.Digits(2), g.faker.Digits(4)),
		BankAccount: g.faker.Digits(12),
		BankName:    Choose(g.faker, bankNames),
		Email:       email,
		Phone:       g.faker.Phone(),
	}
}

// ProgressReporter tracks and reports seeding progress.
type ProgressReporter struct {
	entity           string
	total            int64
	current          int64
	progressInterval int64
}

// NewProgressReporter creates a new progress reporter.
func NewProgressReporter(entity string, total int64, interval int64) *ProgressReporter {
	if interval <= 0 {
		interval = 1
	}
	return &ProgressReporter{
		entity:           entity,
		total:            total,
		progressInterval: interval,
	}
}

// Update records created records and logs when an interval is crossed.
func (p *ProgressReporter) Update(created int64) {
	old := p.current
	p.current += created

	if p.current/p.progressInterval > old/p.progressInterval {
		pct := 100.0
		if p.total > 0 {
			pct = float64(p.current) / float64(p.total) * 100
		}
		logging.Info().
			Str("entity", p.entity).
			Int64("records", p.current).
			Int64("total", p.total).
			Float64("percent", pct).
			Msg("Seeding data")
	}
}

// Current returns the number of records reported so far.
func (p *ProgressReporter) Current() int64 {
	return p.current
}

// Done logs completion.
func (p *ProgressReporter) Done() {
	logging.Info().
		Str("entity", p.entity).
		Int64("records", p.current).
		Msg("Seeding complete")
}

//-------------------------------------------------------------------------
//
// pgEdge Brokerage Admin
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package seed populates a store and directory with demo brokerage data.
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pgEdge/pgedge-brokeradmin/internal/apperrors"
	"github.com/pgEdge/pgedge-brokeradmin/internal/datagen"
	"github.com/pgEdge/pgedge-brokeradmin/internal/directory"
	"github.com/pgEdge/pgedge-brokeradmin/internal/logging"
	"github.com/pgEdge/pgedge-brokeradmin/internal/repository"
	"github.com/pgEdge/pgedge-brokeradmin/internal/store"
)

// Options controls what Seed creates.
type Options struct {
	Counts datagen.SeedCounts

	// Password is given to every seeded directory user.
	Password string

	// AdminEmail, when set, gets a directory user holding AdminRole.
	AdminEmail string
	AdminRole  string
}

// Result counts what Seed created.
type Result struct {
	AdminID      string
	CDS          int
	Users        int
	Profiles     int
	Accounts     int
	Transactions int
}

// Seeder writes generated entities through the repositories.
type Seeder struct {
	dir          directory.Directory
	faker        *datagen.Faker
	gen          *datagen.Generator
	cds          *repository.CDSRepository
	accounts     *repository.AccountRepository
	transactions *repository.TransactionRepository
	profiles     *repository.ProfileRepository
}

// New creates a Seeder writing to st and dir. A nil faker draws from an
// unseeded source.
func New(st store.Store, dir directory.Directory, faker *datagen.Faker) *Seeder {
	if faker == nil {
		faker = datagen.NewFaker()
	}
	return &Seeder{
		dir:          dir,
		faker:        faker,
		gen:          datagen.NewGenerator(faker),
		cds:          repository.NewCDSRepository(st),
		accounts:     repository.NewAccountRepository(st),
		transactions: repository.NewTransactionRepository(st),
		profiles:     repository.NewProfileRepository(st),
	}
}

// Seed creates the admin user, then the CDS records, then users with
// their profiles, accounts and transactions.
func (s *Seeder) Seed(ctx context.Context, opts Options) (*Result, error) {
	counts := opts.Counts
	res := &Result{}

	logging.Info().
		Int("cds", counts.CDS).
		Int("users", counts.Users).
		Int("accounts_per_user", counts.AccountsPerUser).
		Int("transactions_per_account", counts.TransactionsPerAccount).
		Msg("Generating brokerage data")

	if opts.AdminEmail != "" {
		id, err := s.seedAdmin(ctx, opts)
		if err != nil {
			return res, fmt.Errorf("failed to create admin user: %w", err)
		}
		res.AdminID = id
	}

	progress := datagen.NewProgressReporter("brokerage", counts.Total(), counts.ProgressInterval)
	defer progress.Done()

	cdsIDs := make([]string, 0, counts.CDS)
	for i := 0; i < counts.CDS; i++ {
		c := s.gen.CDS()
		id, err := s.cds.Create(ctx, &c)
		if err != nil {
			return res, fmt.Errorf("failed to generate CDS: %w", err)
		}
		cdsIDs = append(cdsIDs, id)
		res.CDS++
		progress.Update(1)
	}

	for i := 1; i <= counts.Users; i++ {
		email := fmt.Sprintf("investor%d.%s", i, s.faker.Email())
		u, err := s.dir.CreateUser(ctx, email, opts.Password)
		if err != nil {
			if errors.Is(err, apperrors.ErrAlreadyExists) {
				logging.Warn().Str("email", email).Msg("Skipping existing user")
				continue
			}
			return res, fmt.Errorf("failed to generate user: %w", err)
		}
		res.Users++

		p := s.gen.Profile(u.ID, u.Email)
		if _, err := s.profiles.Create(ctx, &p); err != nil {
			return res, fmt.Errorf("failed to generate profile: %w", err)
		}
		res.Profiles++
		progress.Update(2)

		if len(cdsIDs) == 0 {
			continue
		}
		if err := s.seedAccounts(ctx, u.ID, cdsIDs, counts, res, progress); err != nil {
			return res, err
		}
	}

	return res, nil
}

func (s *Seeder) seedAccounts(ctx context.Context, userID string, cdsIDs []string,
	counts datagen.SeedCounts, res *Result, progress *datagen.ProgressReporter) error {
	for j := 0; j < counts.AccountsPerUser; j++ {
		a := s.gen.Account(datagen.Choose(s.faker, cdsIDs), userID)
		accountID, err := s.accounts.Create(ctx, &a)
		if err != nil {
			return fmt.Errorf("failed to generate account: %w", err)
		}
		res.Accounts++
		progress.Update(1)

		for k := 0; k < counts.TransactionsPerAccount; k++ {
			t := s.gen.Transaction(accountID)
			if _, err := s.transactions.Create(ctx, &t); err != nil {
				return fmt.Errorf("failed to generate transaction: %w", err)
			}
			res.Transactions++
			progress.Update(1)
		}
	}
	return nil
}

// seedAdmin creates the admin user, or promotes it when the email is
// already registered.
func (s *Seeder) seedAdmin(ctx context.Context, opts Options) (string, error) {
	role := opts.AdminRole
	u, err := s.dir.CreateUser(ctx, opts.AdminEmail, opts.Password)
	if errors.Is(err, apperrors.ErrAlreadyExists) {
		found, serr := directory.SearchByEmail(ctx, s.dir, opts.AdminEmail)
		if serr != nil {
			return "", serr
		}
		for i := range found {
			if strings.EqualFold(found[i].Email, opts.AdminEmail) {
				u, err = &found[i], nil
				break
			}
		}
	}
	if err != nil {
		return "", err
	}
	if _, err := s.dir.UpdateUser(ctx, u.ID, directory.UserUpdate{Role: &role}); err != nil {
		return "", err
	}
	logging.Info().Str("email", opts.AdminEmail).Str("role", role).Msg("Admin user ready")
	return u.ID, nil
}

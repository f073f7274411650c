//-------------------------------------------------------------------------
//
// pgEdge Brokerage Admin
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package service implements the admin and account-owner operations on
// top of the repositories and the identity directory. Input validation
// happens here, before any store call.
package service

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/pgEdge/pgedge-brokeradmin/internal/datagen"
	"github.com/pgEdge/pgedge-brokeradmin/internal/directory"
	"github.com/pgEdge/pgedge-brokeradmin/internal/repository"
	"github.com/pgEdge/pgedge-brokeradmin/internal/store"
	"github.com/pgEdge/pgedge-brokeradmin/internal/valuation"
)

// Config holds the dependencies of a Service.
type Config struct {
	Store     store.Store
	Directory directory.Directory

	// Faker generates account codes. Defaults to a randomly seeded one.
	Faker *datagen.Faker

	// Now is the clock used for default dates. Defaults to time.Now.
	Now func() time.Time

	// Valuation configures the dashboard valuation snapshot.
	Valuation valuation.Options
}

// Service bundles the repositories and the directory.
type Service struct {
	cds          *repository.CDSRepository
	accounts     *repository.AccountRepository
	transactions *repository.TransactionRepository
	profiles     *repository.ProfileRepository
	dir          directory.Directory

	faker     *datagen.Faker
	now       func() time.Time
	valuation valuation.Options
	validate  *validator.Validate
}

// New creates a Service.
func New(cfg Config) *Service {
	faker := cfg.Faker
	if faker == nil {
		faker = datagen.NewFaker()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	vopts := cfg.Valuation
	if vopts.Now == nil {
		vopts.Now = now
	}

	return &Service{
		cds:          repository.NewCDSRepository(cfg.Store),
		accounts:     repository.NewAccountRepository(cfg.Store),
		transactions: repository.NewTransactionRepository(cfg.Store),
		profiles:     repository.NewProfileRepository(cfg.Store),
		dir:          cfg.Directory,
		faker:        faker,
		now:          now,
		valuation:    vopts,
		validate:     newValidator(),
	}
}

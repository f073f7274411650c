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

	"github.com/pgEdge/pgedge-brokeradmin/internal/apperrors"
	"github.com/pgEdge/pgedge-brokeradmin/internal/directory"
	"github.com/pgEdge/pgedge-brokeradmin/internal/logging"
	"github.com/pgEdge/pgedge-brokeradmin/internal/resolver"
)

// MsgPasswordLength is reported for passwords below the minimum length.
const MsgPasswordLength = "Password must be at least 6 characters long"

func checkPassword(password string) error {
	if len(password) < directory.MinPasswordLength {
		return apperrors.Validation(MsgPasswordLength)
	}
	return nil
}

// ListUsers returns up to max directory users.
func (s *Service) ListUsers(ctx context.Context, max int) ([]directory.User, error) {
	return s.dir.ListUsers(ctx, max)
}

// SelectableUsers returns the users that can own an account, sorted by
// email.
func (s *Service) SelectableUsers(ctx context.Context, max int) ([]directory.User, error) {
	users, err := s.dir.ListUsers(ctx, max)
	if err != nil {
		return []directory.User{}, err
	}
	return resolver.SelectableUsers(users), nil
}

// GetUser returns a directory user.
func (s *Service) GetUser(ctx context.Context, id string) (*directory.User, error) {
	return s.dir.GetUser(ctx, id)
}

// SearchUsers returns users whose email contains term, ignoring case.
func (s *Service) SearchUsers(ctx context.Context, term string) ([]directory.User, error) {
	return directory.SearchByEmail(ctx, s.dir, term)
}

// CreateUser registers a directory user.
func (s *Service) CreateUser(ctx context.Context, email, password string) (*directory.User, error) {
	if email == "" || password == "" {
		return nil, apperrors.Validation(MsgRequiredFields)
	}
	if err := checkPassword(password); err != nil {
		return nil, err
	}

	u, err := s.dir.CreateUser(ctx, email, password)
	if err != nil {
		return nil, err
	}
	logging.Info().Str("uid", u.ID).Msg("Created user")
	return u, nil
}

// UpdateUser changes a directory user. An email, when supplied, must not
// be empty; a password, when supplied, must meet the length rule.
func (s *Service) UpdateUser(ctx context.Context, id string, upd directory.UserUpdate) (*directory.User, error) {
	if upd.Email != nil && *upd.Email == "" {
		return nil, apperrors.Validation("Email is required")
	}
	if upd.Password != nil {
		if err := checkPassword(*upd.Password); err != nil {
			return nil, err
		}
	}
	return s.dir.UpdateUser(ctx, id, upd)
}

// DeleteUser removes a directory user. Accounts and profiles that
// reference the user are kept.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	return s.dir.DeleteUser(ctx, id)
}

// Authenticate checks an email and password against the directory.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*directory.User, error) {
	return s.dir.VerifyPassword(ctx, email, password)
}

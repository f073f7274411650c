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
)

// MsgNameAndEmail is reported when a profile lacks a name or email.
const MsgNameAndEmail = "Name and email are required"

func (s *Service) checkProfile(p domain.UserProfile) error {
	if p.Name == "" || p.Email == "" {
		return apperrors.Validation(MsgNameAndEmail)
	}
	return s.check(p)
}

// CreateProfile stores a new profile. A second profile for the same user
// fails with AlreadyExists.
func (s *Service) CreateProfile(ctx context.Context, p domain.UserProfile) (string, error) {
	if err := s.checkProfile(p); err != nil {
		return "", err
	}
	return s.profiles.Create(ctx, &p)
}

// SaveProfile creates the profile of p.UserID, or updates it when one
// already exists. It returns the profile ID.
func (s *Service) SaveProfile(ctx context.Context, p domain.UserProfile) (string, error) {
	if err := s.checkProfile(p); err != nil {
		return "", err
	}
	if p.UserID == "" {
		return s.profiles.Create(ctx, &p)
	}

	existing, err := s.profiles.GetByUserID(ctx, p.UserID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return s.profiles.Create(ctx, &p)
	}
	if err != nil {
		return "", err
	}

	patch := domain.ProfilePatch{
		Name:        &p.Name,
		IC:          &p.IC,
		BankAccount: &p.BankAccount,
		BankName:    &p.BankName,
		Email:       &p.Email,
		Phone:       &p.Phone,
	}
	if err := s.profiles.Update(ctx, existing.ID, patch); err != nil {
		return "", err
	}
	return existing.ID, nil
}

// GetProfile returns a profile by ID.
func (s *Service) GetProfile(ctx context.Context, id string) (*domain.UserProfile, error) {
	return s.profiles.Get(ctx, id)
}

// GetProfileByUserID returns the profile of a directory user.
func (s *Service) GetProfileByUserID(ctx context.Context, userID string) (*domain.UserProfile, error) {
	return s.profiles.GetByUserID(ctx, userID)
}

// UpdateProfile applies a partial update to a profile.
func (s *Service) UpdateProfile(ctx context.Context, id string, patch domain.ProfilePatch) error {
	if (patch.Name != nil && *patch.Name == "") || (patch.Email != nil && *patch.Email == "") {
		return apperrors.Validation(MsgNameAndEmail)
	}
	return s.profiles.Update(ctx, id, patch)
}

// DeleteProfile removes a profile.
func (s *Service) DeleteProfile(ctx context.Context, id string) error {
	return s.profiles.Delete(ctx, id)
}

// ListProfiles returns up to limit profiles, newest first.
func (s *Service) ListProfiles(ctx context.Context, limit int) ([]domain.UserProfile, error) {
	return s.profiles.List(ctx, limit)
}

// FilterProfiles returns profiles matching f.
func (s *Service) FilterProfiles(ctx context.Context, f domain.ProfileFilter) ([]domain.UserProfile, error) {
	return s.profiles.Filter(ctx, f)
}

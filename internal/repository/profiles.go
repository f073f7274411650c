//-------------------------------------------------------------------------
//
// pgEdge Brokerage Admin
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package repository

import (
	"context"

	"github.com/pgEdge/pgedge-brokeradmin/internal/apperrors"
	"github.com/pgEdge/pgedge-brokeradmin/internal/domain"
	"github.com/pgEdge/pgedge-brokeradmin/internal/filter"
	"github.com/pgEdge/pgedge-brokeradmin/internal/store"
)

type profileRule = filter.Rule[domain.ProfileFilter]

var profileFilter = filter.New(domain.CollectionProfiles,
	profileRule{Field: "name", Op: filter.Prefix,
		Value: filter.Param(func(f domain.ProfileFilter) *string { return f.Name })},
	profileRule{Field: "ic", Op: filter.Equal,
		Value: filter.Param(func(f domain.ProfileFilter) *string { return f.IC })},
	profileRule{Field: "email", Op: filter.Contains,
		Value: filter.Param(func(f domain.ProfileFilter) *string { return f.Email })},
	profileRule{Field: "bank_name", Op: filter.Contains,
		Value: filter.Param(func(f domain.ProfileFilter) *string { return f.BankName })},
)

// ErrProfileExists is returned when creating a second profile for a user.
var ErrProfileExists = apperrors.ErrAlreadyExists.WithMessage("User profile with this user_id already exists")

// ProfileRepository stores user profiles.
type ProfileRepository struct {
	*Repository[domain.UserProfile]
}

// NewProfileRepository creates a ProfileRepository backed by st.
func NewProfileRepository(st store.Store) *ProfileRepository {
	return &ProfileRepository{newRepository[domain.UserProfile](st, domain.CollectionProfiles, "UserProfile", nil)}
}

// Create stores a new profile unless one already exists for p.UserID.
// The check and the insert are not atomic; two concurrent creates for the
// same user can both succeed.
func (r *ProfileRepository) Create(ctx context.Context, p *domain.UserProfile) (string, error) {
	if p.UserID != "" {
		existing, err := r.findOne(ctx, "user_id", p.UserID)
		if err != nil {
			return "", err
		}
		if existing != nil {
			return "", ErrProfileExists
		}
	}
	return r.Repository.Create(ctx, p)
}

// GetByUserID returns the profile of a directory user.
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*domain.UserProfile, error) {
	p, err := r.findOne(ctx, "user_id", userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperrors.NotFound("UserProfile")
	}
	return p, nil
}

// Filter returns profiles matching f.
func (r *ProfileRepository) Filter(ctx context.Context, f domain.ProfileFilter) ([]domain.UserProfile, error) {
	return runFilter(ctx, r.Repository, profileFilter, f, f.Limit)
}

// SearchByName returns profiles whose name starts with prefix.
func (r *ProfileRepository) SearchByName(ctx context.Context, prefix string, limit int) ([]domain.UserProfile, error) {
	return r.Filter(ctx, domain.ProfileFilter{Name: &prefix, Limit: limit})
}

// SearchByEmail returns profiles whose email contains term, ignoring case.
func (r *ProfileRepository) SearchByEmail(ctx context.Context, term string, limit int) ([]domain.UserProfile, error) {
	return r.Filter(ctx, domain.ProfileFilter{Email: &term, Limit: limit})
}

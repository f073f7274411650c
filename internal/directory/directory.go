//-------------------------------------------------------------------------
//
// pgEdge Brokerage Admin
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package directory is the identity directory: the system of record for
// user accounts (email, password, disabled flag, role). Profiles and stock
// accounts refer to directory users by ID.
package directory

import (
	"context"
	"strings"
	"time"

	"github.com/pgEdge/pgedge-brokeradmin/internal/apperrors"
)

// MinPasswordLength is the shortest password the directory accepts.
const MinPasswordLength = 6

// SearchScanLimit caps how many users an email search inspects.
const SearchScanLimit = 1000

// DefaultListLimit is used by ListUsers when max is not positive.
const DefaultListLimit = 100

// User is a directory account.
type User struct {
	ID            string     `json:"uid"`
	Email         string     `json:"email"`
	DisplayName   string     `json:"displayName"`
	PhoneNumber   string     `json:"phoneNumber"`
	EmailVerified bool       `json:"emailVerified"`
	Disabled      bool       `json:"disabled"`
	Role          string     `json:"role,omitempty"`
	CreatedAt     time.Time  `json:"creationTime"`
	LastSignInAt  *time.Time `json:"lastSignInTime,omitempty"`
}

// UserUpdate changes selected attributes of a user; nil fields are kept.
type UserUpdate struct {
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
	Disabled *bool   `json:"disabled,omitempty"`
	Role     *string `json:"role,omitempty"`
}

// Directory manages user accounts.
type Directory interface {
	// ListUsers returns up to max users ordered by creation time.
	ListUsers(ctx context.Context, max int) ([]User, error)

	// GetUser returns one user or a NotFound error.
	GetUser(ctx context.Context, id string) (*User, error)

	// CreateUser registers a new user.
	CreateUser(ctx context.Context, email, password string) (*User, error)

	// UpdateUser applies u and returns the updated user.
	UpdateUser(ctx context.Context, id string, u UserUpdate) (*User, error)

	// DeleteUser removes a user.
	DeleteUser(ctx context.Context, id string) error

	// VerifyPassword returns the user with the given email if password
	// matches, or an Unauthorized error.
	VerifyPassword(ctx context.Context, email, password string) (*User, error)
}

// SearchByEmail lists up to SearchScanLimit users and keeps those whose
// email contains term, ignoring case.
func SearchByEmail(ctx context.Context, d Directory, term string) ([]User, error) {
	users, err := d.ListUsers(ctx, SearchScanLimit)
	if err != nil {
		return []User{}, err
	}
	term = strings.ToLower(term)
	out := make([]User, 0)
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.Email), term) {
			out = append(out, u)
		}
	}
	return out, nil
}

// ValidatePassword enforces the directory's password rule.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return apperrors.Validation("Password must be at least 6 characters")
	}
	return nil
}

// ValidateEmail performs the minimal shape check the directory applies.
func ValidateEmail(email string) error {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return apperrors.Validation("Invalid email address: " + email)
	}
	return nil
}

func errUserNotFound() error {
	return apperrors.NotFound("User")
}

func errEmailExists(email string) error {
	return apperrors.ErrAlreadyExists.WithMessage("The email address is already in use: " + email)
}

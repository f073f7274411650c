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
	"github.com/pgEdge/pgedge-brokeradmin/internal/directory"
)

// DefaultAdminRole is the role claim that grants admin access.
const DefaultAdminRole = "admin"

// Principal identifies the caller of an operation.
type Principal struct {
	UserID string
	Email  string
}

// Authorizer decides whether a principal may use the admin operations.
type Authorizer interface {
	IsAdmin(ctx context.Context, p Principal) (bool, error)
}

// RoleAuthorizer grants admin access to enabled directory users whose
// role claim equals Role.
type RoleAuthorizer struct {
	Directory directory.Directory
	Role      string
}

// NewRoleAuthorizer creates a RoleAuthorizer. An empty role means
// DefaultAdminRole.
func NewRoleAuthorizer(dir directory.Directory, role string) *RoleAuthorizer {
	if role == "" {
		role = DefaultAdminRole
	}
	return &RoleAuthorizer{Directory: dir, Role: role}
}

// IsAdmin implements Authorizer.
func (a *RoleAuthorizer) IsAdmin(ctx context.Context, p Principal) (bool, error) {
	if p.UserID == "" {
		return false, nil
	}
	u, err := a.Directory.GetUser(ctx, p.UserID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !u.Disabled && u.Role == a.Role, nil
}

// AuthorizerFunc adapts a function to Authorizer.
type AuthorizerFunc func(ctx context.Context, p Principal) (bool, error)

// IsAdmin implements Authorizer.
func (f AuthorizerFunc) IsAdmin(ctx context.Context, p Principal) (bool, error) {
	return f(ctx, p)
}

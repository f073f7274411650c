//-------------------------------------------------------------------------
//
// pgEdge Brokerage Admin
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package directory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/pgEdge/pgedge-brokeradmin/internal/apperrors"
)

// MemoryDirectory keeps users in process.
type MemoryDirectory struct {
	mu       sync.RWMutex
	users    map[string]*memUser
	order    []string
	now      func() time.Time
	hashCost int
}

type memUser struct {
	User
	passwordHash []byte
}

// Option configures a directory implementation.
type Option func(*options)

type options struct {
	now      func() time.Time
	hashCost int
}

// WithClock sets the clock used for creation times.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithHashCost sets the bcrypt cost for password hashes.
func WithHashCost(cost int) Option {
	return func(o *options) { o.hashCost = cost }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, hashCost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewMemoryDirectory creates an empty in-memory directory.
func NewMemoryDirectory(opts ...Option) *MemoryDirectory {
	o := buildOptions(opts)
	return &MemoryDirectory{
		users:    make(map[string]*memUser),
		now:      o.now,
		hashCost: o.hashCost,
	}
}

var _ Directory = (*MemoryDirectory)(nil)

// ListUsers implements Directory.
func (d *MemoryDirectory) ListUsers(ctx context.Context, max int) ([]User, error) {
	if err := ctx.Err(); err != nil {
		return []User{}, apperrors.DirectoryFailed("failed to list users", err)
	}
	if max <= 0 {
		max = DefaultListLimit
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]User, 0, min(max, len(d.order)))
	for _, id := range d.order {
		if len(out) == max {
			break
		}
		out = append(out, d.users[id].User)
	}
	return out, nil
}

// GetUser implements Directory.
func (d *MemoryDirectory) GetUser(ctx context.Context, id string) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.DirectoryFailed("failed to get user", err)
	}
	d.mu.RLock()
	defer d.mu.RUnlock()

	u, ok := d.users[id]
	if !ok {
		return nil, errUserNotFound()
	}
	user := u.User
	return &user, nil
}

// CreateUser implements Directory.
func (d *MemoryDirectory) CreateUser(ctx context.Context, email, password string) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.DirectoryFailed("failed to create user", err)
	}
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), d.hashCost)
	if err != nil {
		return nil, apperrors.DirectoryFailed("failed to hash password", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.emailTaken(email, "") {
		return nil, errEmailExists(email)
	}

	now := d.now()
	u := &memUser{
		User: User{
			ID:        ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
			Email:     email,
			CreatedAt: now.UTC(),
		},
		passwordHash: hash,
	}
	d.users[u.ID] = u
	d.order = append(d.order, u.ID)

	user := u.User
	return &user, nil
}

// UpdateUser implements Directory.
func (d *MemoryDirectory) UpdateUser(ctx context.Context, id string, upd UserUpdate) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.DirectoryFailed("failed to update user", err)
	}
	if upd.Email != nil {
		if err := ValidateEmail(*upd.Email); err != nil {
			return nil, err
		}
	}
	var hash []byte
	if upd.Password != nil {
		if err := ValidatePassword(*upd.Password); err != nil {
			return nil, err
		}
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(*upd.Password), d.hashCost)
		if err != nil {
			return nil, apperrors.DirectoryFailed("failed to hash password", err)
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	u, ok := d.users[id]
	if !ok {
		return nil, errUserNotFound()
	}
	if upd.Email != nil {
		if d.emailTaken(*upd.Email, id) {
			return nil, errEmailExists(*upd.Email)
		}
		u.Email = *upd.Email
	}
	if hash != nil {
		u.passwordHash = hash
	}
	if upd.Disabled != nil {
		u.Disabled = *upd.Disabled
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}

	user := u.User
	return &user, nil
}

// DeleteUser implements Directory.
func (d *MemoryDirectory) DeleteUser(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return apperrors.DirectoryFailed("failed to delete user", err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.users[id]; !ok {
		return errUserNotFound()
	}
	delete(d.users, id)
	for i, existing := range d.order {
		if existing == id {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return nil
}

// VerifyPassword implements Directory.
func (d *MemoryDirectory) VerifyPassword(ctx context.Context, email, password string) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.DirectoryFailed("failed to verify password", err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, id := range d.order {
		u := d.users[id]
		if !strings.EqualFold(u.Email, email) {
			continue
		}
		if u.Disabled || bcrypt.CompareHashAndPassword(u.passwordHash, []byte(password)) != nil {
			break
		}
		signedIn := d.now().UTC()
		u.LastSignInAt = &signedIn
		user := u.User
		return &user, nil
	}
	return nil, apperrors.ErrUnauthorized.WithMessage("invalid email or password")
}

// emailTaken must be called with d.mu held.
func (d *MemoryDirectory) emailTaken(email, exceptID string) bool {
	for id, u := range d.users {
		if id != exceptID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

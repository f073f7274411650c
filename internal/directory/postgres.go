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
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/pgEdge/pgedge-brokeradmin/internal/apperrors"
	"github.com/pgEdge/pgedge-brokeradmin/internal/logging"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

const userColumns = `id, email, display_name, phone_number, email_verified,
    disabled, role, created_at, last_sign_in_at`

// PostgresDirectory stores users in the directory_users table.
type PostgresDirectory struct {
	pool     *pgxpool.Pool
	hashCost int
}

// NewPostgresDirectory creates a directory backed by pool.
func NewPostgresDirectory(pool *pgxpool.Pool, opts ...Option) *PostgresDirectory {
	o := buildOptions(opts)
	return &PostgresDirectory{pool: pool, hashCost: o.hashCost}
}

var _ Directory = (*PostgresDirectory)(nil)

// ListUsers implements Directory.
func (d *PostgresDirectory) ListUsers(ctx context.Context, max int) ([]User, error) {
	if max <= 0 {
		max = DefaultListLimit
	}
	rows, err := d.pool.Query(ctx, `
        SELECT `+userColumns+`
        FROM directory_users
        ORDER BY created_at, id
        LIMIT $1
    `, max)
	if err != nil {
		return []User{}, apperrors.DirectoryFailed("failed to list users", err)
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return []User{}, apperrors.DirectoryFailed("failed to read user", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return []User{}, apperrors.DirectoryFailed("failed to list users", err)
	}
	return users, nil
}

// GetUser implements Directory.
func (d *PostgresDirectory) GetUser(ctx context.Context, id string) (*User, error) {
	row := d.pool.QueryRow(ctx, `
        SELECT `+userColumns+` FROM directory_users WHERE id = $1
    `, id)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errUserNotFound()
	}
	if err != nil {
		return nil, apperrors.DirectoryFailed("failed to get user", err)
	}
	return u, nil
}

// CreateUser implements Directory.
func (d *PostgresDirectory) CreateUser(ctx context.Context, email, password string) (*User, error) {
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

	id := ulid.MustNew(ulid.Timestamp(time.Now()), ulid.DefaultEntropy()).String()
	row := d.pool.QueryRow(ctx, `
        INSERT INTO directory_users (id, email, password_hash)
        VALUES ($1, $2, $3)
        RETURNING `+userColumns, id, strings.ToLower(email), string(hash))
	u, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, errEmailExists(email)
		}
		return nil, apperrors.DirectoryFailed("failed to create user", err)
	}

	logging.Info().Str("uid", u.ID).Str("email", u.Email).Msg("Created directory user")
	return u, nil
}

// UpdateUser implements Directory.
func (d *PostgresDirectory) UpdateUser(ctx context.Context, id string, upd UserUpdate) (*User, error) {
	var hash *string
	if upd.Email != nil {
		if err := ValidateEmail(*upd.Email); err != nil {
			return nil, err
		}
		lower := strings.ToLower(*upd.Email)
		upd.Email = &lower
	}
	if upd.Password != nil {
		if err := ValidatePassword(*upd.Password); err != nil {
			return nil, err
		}
		h, err := bcrypt.GenerateFromPassword([]byte(*upd.Password), d.hashCost)
		if err != nil {
			return nil, apperrors.DirectoryFailed("failed to hash password", err)
		}
		s := string(h)
		hash = &s
	}

	row := d.pool.QueryRow(ctx, `
        UPDATE directory_users SET
            email         = COALESCE($2, email),
            password_hash = COALESCE($3, password_hash),
            disabled      = COALESCE($4, disabled),
            role          = COALESCE($5, role)
        WHERE id = $1
        RETURNING `+userColumns, id, upd.Email, hash, upd.Disabled, upd.Role)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errUserNotFound()
	}
	if err != nil {
		if isUniqueViolation(err) {
			return nil, errEmailExists(*upd.Email)
		}
		return nil, apperrors.DirectoryFailed("failed to update user", err)
	}
	return u, nil
}

// DeleteUser implements Directory.
func (d *PostgresDirectory) DeleteUser(ctx context.Context, id string) error {
	tag, err := d.pool.Exec(ctx, `DELETE FROM directory_users WHERE id = $1`, id)
	if err != nil {
		return apperrors.DirectoryFailed("failed to delete user", err)
	}
	if tag.RowsAffected() == 0 {
		return errUserNotFound()
	}
	return nil
}

// VerifyPassword implements Directory. A successful check records the
// sign-in time.
func (d *PostgresDirectory) VerifyPassword(ctx context.Context, email, password string) (*User, error) {
	var (
		id   string
		hash string
	)
	err := d.pool.QueryRow(ctx, `
        SELECT id, password_hash FROM directory_users WHERE email = $1 AND NOT disabled
    `, strings.ToLower(email)).Scan(&id, &hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrUnauthorized.WithMessage("invalid email or password")
	}
	if err != nil {
		return nil, apperrors.DirectoryFailed("failed to verify password", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, apperrors.ErrUnauthorized.WithMessage("invalid email or password")
	}

	row := d.pool.QueryRow(ctx, `
        UPDATE directory_users SET last_sign_in_at = now() WHERE id = $1
        RETURNING `+userColumns, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, apperrors.DirectoryFailed("failed to record sign-in", err)
	}
	return u, nil
}

func scanUser(row pgx.Row) (*User, error) {
	var (
		u          User
		lastSignIn *time.Time
	)
	err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.PhoneNumber, &u.EmailVerified,
		&u.Disabled, &u.Role, &u.CreatedAt, &lastSignIn)
	if err != nil {
		return nil, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	if lastSignIn != nil {
		t := lastSignIn.UTC()
		u.LastSignInAt = &t
	}
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

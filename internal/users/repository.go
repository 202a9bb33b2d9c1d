package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/odyssey-erp/backoffice/internal/platform/db"
	"github.com/odyssey-erp/backoffice/internal/shared"
)

// Repository defines persistence operations for users.
type Repository interface {
	Get(ctx context.Context, id int64) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Exists(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context) ([]User, error)
	Create(ctx context.Context, input NewUser) (*User, error)
	UpdateProfile(ctx context.Context, id int64, input ProfileUpdate, clearVerification bool) error
	Delete(ctx context.Context, id int64) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	db db.Querier
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(q db.Querier) *PGRepository {
	return &PGRepository{db: q}
}

const userColumns = `id, name, email, password_hash, email_verified_at, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.EmailVerifiedAt, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Get loads a user by id.
func (r *PGRepository) Get(ctx context.Context, id int64) (*User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("users: get %d: %w", id, err)
	}
	return u, nil
}

// FindByEmail loads a user by case-insensitive e-mail.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, strings.TrimSpace(email)))
	if err != nil {
		return nil, fmt.Errorf("users: find by email: %w", err)
	}
	return u, nil
}

// Exists reports whether id resolves to a user.
func (r *PGRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("users: exists: %w", err)
	}
	return exists, nil
}

// List returns all users ordered by name.
func (r *PGRepository) List(ctx context.Context) ([]User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("users: list: %w", err)
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("users: scan: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("users: list rows: %w", err)
	}
	return users, nil
}

// Create inserts a user.
func (r *PGRepository) Create(ctx context.Context, input NewUser) (*User, error) {
	var verifiedAt *time.Time
	if input.Verified {
		now := time.Now().UTC()
		verifiedAt = &now
	}
	u, err := scanUser(r.db.QueryRow(ctx, `INSERT INTO users (name, email, password_hash, email_verified_at)
VALUES ($1, $2, $3, $4) RETURNING `+userColumns, input.Name, input.Email, input.PasswordHash, verifiedAt))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, fmt.Errorf("users: create: email %s: %w", input.Email, shared.ErrConflict)
		}
		return nil, fmt.Errorf("users: create: %w", err)
	}
	return u, nil
}

// UpdateProfile stores name and e-mail, optionally resetting verification.
func (r *PGRepository) UpdateProfile(ctx context.Context, id int64, input ProfileUpdate, clearVerification bool) error {
	query := db.Builder.Update("users").
		Set("name", input.Name).
		Set("email", input.Email).
		Set("updated_at", time.Now().UTC()).
		Where("id = ?", id)
	if clearVerification {
		query = query.Set("email_verified_at", nil)
	}
	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("users: build update: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("users: update: email %s: %w", input.Email, shared.ErrConflict)
		}
		return fmt.Errorf("users: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("users: update %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

// Delete removes a user.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("users: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("users: delete %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)

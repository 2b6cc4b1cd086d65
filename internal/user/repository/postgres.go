package repository

import (
	"context"
	"database/sql"
	"errors"

	"user-management-backend/internal/user/domain"
)

const userColumns = "id, email, password_hash, name, lastname, role_id, created_at, updated_at"

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a user repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the user for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
	return scanUser(row)
}

// GetByEmail returns the user with the given email, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", email)
	return scanUser(row)
}

// List returns users ordered by creation time, newest first.
func (r *PostgresRepository) List(ctx context.Context, offset, limit int) ([]*domain.User, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at DESC, id OFFSET $1 LIMIT $2",
		offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Count returns the total number of users.
func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, "SELECT count(*) FROM users").Scan(&n)
	return n, err
}

// CountByRole returns the number of users currently holding the role.
func (r *PostgresRepository) CountByRole(ctx context.Context, roleID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, "SELECT count(*) FROM users WHERE role_id = $1", roleID).Scan(&n)
	return n, err
}

// Create persists the user to the database. The user must have ID set; it is not assigned by this method.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, name, lastname, role_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.Email, u.PasswordHash, u.Name, u.Lastname, roleToNull(u.RoleID), u.CreatedAt, u.UpdatedAt)
	return err
}

// Update updates the existing user record. Missing rows are not an error.
func (r *PostgresRepository) Update(ctx context.Context, u *domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET email = $2, password_hash = $3, name = $4, lastname = $5, updated_at = $6
		 WHERE id = $1`,
		u.ID, u.Email, u.PasswordHash, u.Name, u.Lastname, u.UpdatedAt)
	return err
}

// Delete removes the user row. Sessions are revoked via the FK cascade.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id)
	return err
}

// SetRole assigns the role to the user; a nil roleID clears it.
func (r *PostgresRepository) SetRole(ctx context.Context, userID string, roleID *string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET role_id = $2, updated_at = now() WHERE id = $1",
		userID, roleToNull(roleID))
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	var roleID sql.NullString
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Lastname, &roleID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if roleID.Valid {
		u.RoleID = &roleID.String
	}
	return &u, nil
}

func roleToNull(roleID *string) sql.NullString {
	if roleID == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *roleID, Valid: true}
}

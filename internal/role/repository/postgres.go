package repository

import (
	"context"
	"database/sql"
	"errors"

	"user-management-backend/internal/role/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a role repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the role for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, name, description, created_at FROM roles WHERE id = $1", id)
	return scanRole(row)
}

// GetByName returns the role with the given name, or nil if not found.
func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, name, description, created_at FROM roles WHERE name = $1", name)
	return scanRole(row)
}

// List returns all roles ordered by name.
func (r *PostgresRepository) List(ctx context.Context) ([]*domain.Role, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, description, created_at FROM roles ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, role)
	}
	return out, rows.Err()
}

// Create persists the role. The role must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, role *domain.Role) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO roles (id, name, description, created_at) VALUES ($1, $2, $3, $4)",
		role.ID, role.Name, role.Description, role.CreatedAt)
	return err
}

// Update updates the role's name and description.
func (r *PostgresRepository) Update(ctx context.Context, role *domain.Role) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE roles SET name = $2, description = $3 WHERE id = $1",
		role.ID, role.Name, role.Description)
	return err
}

// Delete removes the role row. Callers must check assignment first; the users
// FK is ON DELETE SET NULL, so this never fails on assigned users.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM roles WHERE id = $1", id)
	return err
}

// ListPermissions returns the full permission catalog ordered by name.
func (r *PostgresRepository) ListPermissions(ctx context.Context) ([]*domain.Permission, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, description FROM permissions ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPermissions(rows)
}

// GetPermissionsByIDs returns the permissions matching ids; missing ids are
// simply absent from the result.
func (r *PostgresRepository) GetPermissionsByIDs(ctx context.Context, ids []string) ([]*domain.Permission, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, description FROM permissions WHERE id = ANY($1) ORDER BY name", ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPermissions(rows)
}

// PermissionsOf returns the permissions granted by the role via an explicit
// join on role_permissions.
func (r *PostgresRepository) PermissionsOf(ctx context.Context, roleID string) ([]*domain.Permission, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT p.id, p.name, p.description
		 FROM permissions p
		 JOIN role_permissions rp ON rp.permission_id = p.id
		 WHERE rp.role_id = $1
		 ORDER BY p.name`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPermissions(rows)
}

// SetPermissions replaces the role's permission set in one transaction.
func (r *PostgresRepository) SetPermissions(ctx context.Context, roleID string, permissionIDs []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM role_permissions WHERE role_id = $1", roleID); err != nil {
		return err
	}
	for _, pid := range permissionIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2)", roleID, pid); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// CreatePermission persists the permission. The permission must have ID set.
func (r *PostgresRepository) CreatePermission(ctx context.Context, p *domain.Permission) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO permissions (id, name, description) VALUES ($1, $2, $3)",
		p.ID, p.Name, p.Description)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRole(row rowScanner) (*domain.Role, error) {
	var role domain.Role
	err := row.Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

func collectPermissions(rows *sql.Rows) ([]*domain.Permission, error) {
	var out []*domain.Permission
	for rows.Next() {
		var p domain.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Description); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

package repository

import (
	"context"

	"user-management-backend/internal/role/domain"
)

// Repository defines persistence for roles and permissions.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Role, error)
	GetByName(ctx context.Context, name string) (*domain.Role, error)
	List(ctx context.Context) ([]*domain.Role, error)
	Create(ctx context.Context, r *domain.Role) error
	Update(ctx context.Context, r *domain.Role) error
	Delete(ctx context.Context, id string) error

	ListPermissions(ctx context.Context) ([]*domain.Permission, error)
	GetPermissionsByIDs(ctx context.Context, ids []string) ([]*domain.Permission, error)
	// PermissionsOf returns the permissions granted by the role. The lookup is
	// an explicit join; callers never traverse relations implicitly.
	PermissionsOf(ctx context.Context, roleID string) ([]*domain.Permission, error)
	// SetPermissions replaces the role's permission set.
	SetPermissions(ctx context.Context, roleID string, permissionIDs []string) error
	CreatePermission(ctx context.Context, p *domain.Permission) error
}

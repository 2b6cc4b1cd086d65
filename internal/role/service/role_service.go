package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"user-management-backend/internal/role/domain"
	userdomain "user-management-backend/internal/user/domain"
)

// Sentinel errors for the role service; the handler maps them to HTTP statuses.
var (
	ErrRoleNotFound       = errors.New("role not found")
	ErrRoleNameTaken      = errors.New("role name already exists")
	ErrRoleInUse          = errors.New("role is assigned to users")
	ErrPermissionNotFound = errors.New("permission not found")
	// ErrValidation wraps input validation failures; inspect with errors.Is.
	ErrValidation = errors.New("invalid input")
)

const (
	cacheSize = 8
	cacheTTL  = time.Hour

	rolesCacheKey       = "roles"
	permissionsCacheKey = "permissions"
)

// RoleWithPermissions is a role together with its resolved permission set.
type RoleWithPermissions struct {
	Role        *domain.Role
	Permissions []*domain.Permission
}

// RolePatch is the allow-listed set of updatable role fields. A nil field is
// left unchanged; a non-nil PermissionIDs replaces the whole permission set.
type RolePatch struct {
	Name          *string
	Description   *string
	PermissionIDs *[]string
}

// Repo is the role repository needed by the role service.
type Repo interface {
	GetByID(ctx context.Context, id string) (*domain.Role, error)
	GetByName(ctx context.Context, name string) (*domain.Role, error)
	List(ctx context.Context) ([]*domain.Role, error)
	Create(ctx context.Context, r *domain.Role) error
	Update(ctx context.Context, r *domain.Role) error
	Delete(ctx context.Context, id string) error
	ListPermissions(ctx context.Context) ([]*domain.Permission, error)
	GetPermissionsByIDs(ctx context.Context, ids []string) ([]*domain.Permission, error)
	PermissionsOf(ctx context.Context, roleID string) ([]*domain.Permission, error)
	SetPermissions(ctx context.Context, roleID string, permissionIDs []string) error
}

// UserRepo is the minimal user repository needed by the role service.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
	CountByRole(ctx context.Context, roleID string) (int64, error)
	SetRole(ctx context.Context, userID string, roleID *string) error
}

// RoleService implements role CRUD, assignment, and permission checks. Role
// and permission listings are read-mostly and served through a small expiring
// cache that every mutation purges.
type RoleService struct {
	repo      Repo
	userRepo  UserRepo
	roleCache *expirable.LRU[string, []*RoleWithPermissions]
	permCache *expirable.LRU[string, []*domain.Permission]
}

// NewRoleService returns a RoleService with the given dependencies.
func NewRoleService(repo Repo, userRepo UserRepo) *RoleService {
	return &RoleService{
		repo:      repo,
		userRepo:  userRepo,
		roleCache: expirable.NewLRU[string, []*RoleWithPermissions](cacheSize, nil, cacheTTL),
		permCache: expirable.NewLRU[string, []*domain.Permission](cacheSize, nil, cacheTTL),
	}
}

// List returns all roles with their permission sets, cached.
func (s *RoleService) List(ctx context.Context) ([]*RoleWithPermissions, error) {
	if cached, ok := s.roleCache.Get(rolesCacheKey); ok {
		return cached, nil
	}
	roles, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*RoleWithPermissions, 0, len(roles))
	for _, r := range roles {
		perms, err := s.repo.PermissionsOf(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, &RoleWithPermissions{Role: r, Permissions: perms})
	}
	s.roleCache.Add(rolesCacheKey, out)
	return out, nil
}

// ListPermissions returns the permission catalog, cached.
func (s *RoleService) ListPermissions(ctx context.Context) ([]*domain.Permission, error) {
	if cached, ok := s.permCache.Get(permissionsCacheKey); ok {
		return cached, nil
	}
	perms, err := s.repo.ListPermissions(ctx)
	if err != nil {
		return nil, err
	}
	s.permCache.Add(permissionsCacheKey, perms)
	return perms, nil
}

// Get returns the role with its permission set or ErrRoleNotFound.
func (s *RoleService) Get(ctx context.Context, id string) (*RoleWithPermissions, error) {
	role, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, ErrRoleNotFound
	}
	perms, err := s.repo.PermissionsOf(ctx, role.ID)
	if err != nil {
		return nil, err
	}
	return &RoleWithPermissions{Role: role, Permissions: perms}, nil
}

// Create creates a role with the given permission set. Duplicate names return
// ErrRoleNameTaken; unknown permission ids return ErrPermissionNotFound.
func (s *RoleService) Create(ctx context.Context, name, description string, permissionIDs []string) (*RoleWithPermissions, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: role name is required", ErrValidation)
	}
	existing, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrRoleNameTaken
	}
	perms, uniqueIDs, err := s.resolvePermissions(ctx, permissionIDs)
	if err != nil {
		return nil, err
	}
	role := &domain.Role{
		ID:          uuid.New().String(),
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, role); err != nil {
		return nil, err
	}
	if len(uniqueIDs) > 0 {
		if err := s.repo.SetPermissions(ctx, role.ID, uniqueIDs); err != nil {
			return nil, err
		}
	}
	s.purgeCaches()
	return &RoleWithPermissions{Role: role, Permissions: perms}, nil
}

// Update applies the allow-listed patch to the role.
func (s *RoleService) Update(ctx context.Context, id string, patch RolePatch) (*RoleWithPermissions, error) {
	role, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, ErrRoleNotFound
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: role name is required", ErrValidation)
		}
		if name != role.Name {
			existing, err := s.repo.GetByName(ctx, name)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				return nil, ErrRoleNameTaken
			}
			role.Name = name
		}
	}
	if patch.Description != nil {
		role.Description = strings.TrimSpace(*patch.Description)
	}
	if err := s.repo.Update(ctx, role); err != nil {
		return nil, err
	}
	if patch.PermissionIDs != nil {
		_, uniqueIDs, err := s.resolvePermissions(ctx, *patch.PermissionIDs)
		if err != nil {
			return nil, err
		}
		if err := s.repo.SetPermissions(ctx, role.ID, uniqueIDs); err != nil {
			return nil, err
		}
	}
	perms, err := s.repo.PermissionsOf(ctx, role.ID)
	if err != nil {
		return nil, err
	}
	s.purgeCaches()
	return &RoleWithPermissions{Role: role, Permissions: perms}, nil
}

// Delete removes an unassigned role. Returns ErrRoleInUse while any user
// still holds it.
func (s *RoleService) Delete(ctx context.Context, id string) error {
	role, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if role == nil {
		return ErrRoleNotFound
	}
	n, err := s.userRepo.CountByRole(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrRoleInUse
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.purgeCaches()
	return nil
}

// Assign sets the user's role.
func (s *RoleService) Assign(ctx context.Context, userID, roleID string) error {
	role, err := s.repo.GetByID(ctx, roleID)
	if err != nil {
		return err
	}
	if role == nil {
		return ErrRoleNotFound
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("%w: user %s", ErrValidation, userID)
	}
	return s.userRepo.SetRole(ctx, userID, &roleID)
}

// HasPermission reports whether the user's role grants the named permission.
// Users without a role hold no permissions.
func (s *RoleService) HasPermission(ctx context.Context, userID, permission string) (bool, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if user == nil || user.RoleID == nil {
		return false, nil
	}
	perms, err := s.repo.PermissionsOf(ctx, *user.RoleID)
	if err != nil {
		return false, err
	}
	for _, p := range perms {
		if p.Name == permission {
			return true, nil
		}
	}
	return false, nil
}

// HasRole reports whether the user holds the named role.
func (s *RoleService) HasRole(ctx context.Context, userID, roleName string) (bool, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if user == nil || user.RoleID == nil {
		return false, nil
	}
	role, err := s.repo.GetByID(ctx, *user.RoleID)
	if err != nil {
		return false, err
	}
	return role != nil && role.Name == roleName, nil
}

// resolvePermissions checks that every id names an existing permission and
// returns the resolved set together with the deduplicated id list. Repeated
// ids are harmless, not unknown.
func (s *RoleService) resolvePermissions(ctx context.Context, ids []string) ([]*domain.Permission, []string, error) {
	if len(ids) == 0 {
		return nil, nil, nil
	}
	seen := make(map[string]struct{}, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	perms, err := s.repo.GetPermissionsByIDs(ctx, unique)
	if err != nil {
		return nil, nil, err
	}
	if len(perms) != len(unique) {
		return nil, nil, ErrPermissionNotFound
	}
	return perms, unique, nil
}

func (s *RoleService) purgeCaches() {
	s.roleCache.Purge()
	s.permCache.Purge()
}

// Package rbac holds the authorization guards handlers call before admin
// operations. Authorization is set membership over the caller's role and its
// permissions; there is no policy language.
package rbac

import (
	"context"
	"errors"

	"user-management-backend/internal/server/middleware"
)

var (
	// ErrUnauthenticated means no authenticated caller is in the context.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden means the caller is authenticated but lacks the role or
	// permission.
	ErrForbidden = errors.New("permission denied")
)

// Checker resolves a caller's role and permission membership. Implemented by
// the role service.
type Checker interface {
	HasRole(ctx context.Context, userID, roleName string) (bool, error)
	HasPermission(ctx context.Context, userID, permission string) (bool, error)
}

// RequireRole ensures the caller is authenticated and holds the named role.
// Returns the caller's user id on success.
func RequireRole(ctx context.Context, checker Checker, roleName string) (string, error) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok || userID == "" {
		return "", ErrUnauthenticated
	}
	has, err := checker.HasRole(ctx, userID, roleName)
	if err != nil {
		return "", err
	}
	if !has {
		return "", ErrForbidden
	}
	return userID, nil
}

// RequirePermission ensures the caller is authenticated and their role grants
// the named permission. Returns the caller's user id on success.
func RequirePermission(ctx context.Context, checker Checker, permission string) (string, error) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok || userID == "" {
		return "", ErrUnauthenticated
	}
	has, err := checker.HasPermission(ctx, userID, permission)
	if err != nil {
		return "", err
	}
	if !has {
		return "", ErrForbidden
	}
	return userID, nil
}

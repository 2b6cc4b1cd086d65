package repository

import (
	"context"

	"user-management-backend/internal/user/domain"
)

// Repository defines persistence for users.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// List returns users ordered by creation time, newest first.
	List(ctx context.Context, offset, limit int) ([]*domain.User, error)
	Count(ctx context.Context) (int64, error)
	// CountByRole returns the number of users currently holding the role.
	CountByRole(ctx context.Context, roleID string) (int64, error)
	Create(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id string) error
	// SetRole assigns the role to the user; a nil roleID clears it.
	SetRole(ctx context.Context, userID string, roleID *string) error
}

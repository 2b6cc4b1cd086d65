package repository

import (
	"context"
	"time"

	"user-management-backend/internal/session/domain"
)

// Repository defines persistence for sessions. Sessions are never deleted;
// revocation is a flag flip.
type Repository interface {
	Create(ctx context.Context, s *domain.Session) error
	// GetByID returns the session for id, or nil if not found.
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	// GetByTokenHash returns the session whose stored refresh hash matches,
	// revoked or not, or nil if not found.
	GetByTokenHash(ctx context.Context, hash string) (*domain.Session, error)
	// ListByUser returns the user's non-revoked sessions, newest first.
	// Expired-but-unrevoked sessions are included; callers filter.
	ListByUser(ctx context.Context, userID string) ([]*domain.Session, error)
	// ClaimForRefresh atomically stamps last_used_at on the matching valid
	// session (not revoked, not expired) and returns it. Returns nil when no
	// valid session matches, so a concurrent revoke can never be undone.
	ClaimForRefresh(ctx context.Context, hash string, at time.Time) (*domain.Session, error)
	// Rotate swaps the stored refresh hash for an existing session.
	Rotate(ctx context.Context, id, newHash string) error
	// Revoke flips is_revoked for the session if it belongs to userID and is
	// not already revoked. Returns true when a row was flipped.
	Revoke(ctx context.Context, id, userID string) (bool, error)
	// RevokeAllByUser flips is_revoked on every active session of the user.
	// Idempotent; returns the number of sessions newly revoked.
	RevokeAllByUser(ctx context.Context, userID string) (int64, error)
	// CountActive returns the number of non-revoked, unexpired sessions
	// across all users.
	CountActive(ctx context.Context, at time.Time) (int64, error)
	// Touch sets last_used_at without any validity check.
	Touch(ctx context.Context, id string, at time.Time) error
}

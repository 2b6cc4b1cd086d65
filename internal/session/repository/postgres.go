package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"user-management-backend/internal/session/domain"
)

const sessionColumns = "id, user_id, refresh_token_hash, device_info, ip_address, is_revoked, expires_at, created_at, last_used_at"

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a session repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the session. The session must have ID and refresh hash set.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, refresh_token_hash, device_info, ip_address, is_revoked, expires_at, created_at, last_used_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		s.ID, s.UserID, s.RefreshTokenHash, s.DeviceInfo, s.IPAddress, s.IsRevoked, s.ExpiresAt, s.CreatedAt, timeToNullTime(s.LastUsedAt))
	return err
}

// GetByID returns the session for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+sessionColumns+" FROM sessions WHERE id = $1", id)
	return scanSession(row)
}

// GetByTokenHash returns the session with the given refresh hash, revoked or
// not, or nil if not found.
func (r *PostgresRepository) GetByTokenHash(ctx context.Context, hash string) (*domain.Session, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+sessionColumns+" FROM sessions WHERE refresh_token_hash = $1", hash)
	return scanSession(row)
}

// ListByUser returns the user's non-revoked sessions, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Session, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE user_id = $1 AND NOT is_revoked ORDER BY created_at DESC, id",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ClaimForRefresh atomically stamps last_used_at on the matching valid session
// and returns it. The WHERE clause is the validity check; a session revoked by
// a concurrent request can never be claimed.
func (r *PostgresRepository) ClaimForRefresh(ctx context.Context, hash string, at time.Time) (*domain.Session, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE sessions SET last_used_at = $2
		 WHERE refresh_token_hash = $1 AND NOT is_revoked AND expires_at > $2
		 RETURNING `+sessionColumns,
		hash, at)
	return scanSession(row)
}

// Rotate swaps the stored refresh hash for the session.
func (r *PostgresRepository) Rotate(ctx context.Context, id, newHash string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE sessions SET refresh_token_hash = $2 WHERE id = $1", id, newHash)
	return err
}

// Revoke flips is_revoked for the session if it belongs to userID and is not
// already revoked. Returns true when a row was flipped.
func (r *PostgresRepository) Revoke(ctx context.Context, id, userID string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE sessions SET is_revoked = TRUE WHERE id = $1 AND user_id = $2 AND NOT is_revoked",
		id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RevokeAllByUser flips is_revoked on every active session of the user.
// Idempotent; returns the number of sessions newly revoked.
func (r *PostgresRepository) RevokeAllByUser(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE sessions SET is_revoked = TRUE WHERE user_id = $1 AND NOT is_revoked", userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountActive returns the number of non-revoked, unexpired sessions.
func (r *PostgresRepository) CountActive(ctx context.Context, at time.Time) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sessions WHERE NOT is_revoked AND expires_at > $1", at).Scan(&n)
	return n, err
}

// Touch sets last_used_at without any validity check.
func (r *PostgresRepository) Touch(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, "UPDATE sessions SET last_used_at = $2 WHERE id = $1", id, at)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*domain.Session, error) {
	var s domain.Session
	var lastUsed sql.NullTime
	err := row.Scan(&s.ID, &s.UserID, &s.RefreshTokenHash, &s.DeviceInfo, &s.IPAddress, &s.IsRevoked, &s.ExpiresAt, &s.CreatedAt, &lastUsed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	s.LastUsedAt = nullTimeToPtr(lastUsed)
	return &s, nil
}

func timeToNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullTimeToPtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

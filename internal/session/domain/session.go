package domain

import "time"

// Session is a refresh-token session. Rows are never deleted; revocation
// flips IsRevoked so the history of issued sessions is preserved.
type Session struct {
	ID               string
	UserID           string
	RefreshTokenHash string // SHA-256 hex of the opaque refresh secret
	DeviceInfo       string
	IPAddress        string
	IsRevoked        bool
	ExpiresAt        time.Time
	CreatedAt        time.Time
	LastUsedAt       *time.Time
}

// IsValid reports whether the session can still be used to refresh:
// not revoked and not past its expiry.
func (s *Session) IsValid(now time.Time) bool {
	return !s.IsRevoked && s.ExpiresAt.After(now)
}

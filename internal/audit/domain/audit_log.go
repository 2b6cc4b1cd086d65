package domain

import "time"

// AuditLog represents an audit event.
type AuditLog struct {
	ID        string
	UserID    string // empty for events with no resolved user (e.g. failed login)
	Action    string
	Resource  string
	IP        string
	Metadata  string // JSON blob
	CreatedAt time.Time
}

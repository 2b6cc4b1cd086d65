package domain

import (
	"errors"
	"time"
)

// Permission is a named capability granted through roles.
type Permission struct {
	ID          string
	Name        string
	Description string
}

// Role groups a set of permissions. A user holds at most one role.
type Role struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}

// Validate validates the role for persistence.
func (r *Role) Validate() error {
	if r.Name == "" {
		return errors.New("role name is required")
	}
	return nil
}

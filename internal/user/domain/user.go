package domain

import (
	"errors"
	"time"
)

// User is the core user entity. PasswordHash is the bcrypt hash; the
// plaintext password never reaches this type.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Lastname     string
	RoleID       *string // nil when the user holds no role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if u.Email == "" {
		return errors.New("email is required")
	}
	if u.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	return nil
}

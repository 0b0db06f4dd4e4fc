package models

import "time"

// User is the slice of the application's user record the engine cares
// about: identity for notifications, email for dispatch, and the role used
// to authorize manual reconciliation triggers.
type User struct {
	ID           string     `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	DisplayName  string     `json:"display_name" db:"display_name"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Role         string     `json:"role" db:"role"`
	LastLogin    *time.Time `json:"last_login,omitempty" db:"last_login"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// RoleAdmin is the role required to trigger a reconciliation run manually.
const RoleAdmin = "admin"

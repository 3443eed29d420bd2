// Package model defines the data structures used throughout the application.
package model

import "time"

// Roles a user account can hold. Every account starts as RoleUser;
// promotion to RoleAdmin is a manual administrative action.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered user account.
//
// Accounts are created on first OAuth sign-in and keyed by email — the
// UNIQUE constraint on email in the DB ensures one identity per address.
// We still generate our own internal string ID (xid) so primary keys are
// not tied to a third-party identity provider's numbering scheme.
//
// Provider records which OAuth provider vouched for this account
// (currently always "google"). Accounts are never deleted by this system.
type User struct {
	ID        string    `json:"id"        db:"id"`
	Email     string    `json:"email"     db:"email"`
	Username  string    `json:"username"  db:"username"` // display name from the provider profile
	Image     string    `json:"image"     db:"image"`    // avatar URL (may be empty)
	Provider  string    `json:"provider"  db:"provider"`
	Role      string    `json:"role"      db:"role"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

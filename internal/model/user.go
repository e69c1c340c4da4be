// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// The username is the primary external identifier: it is chosen at
// registration, unique across the system, and immutable afterwards. We still
// generate an internal string ID (xid) so our primary keys aren't coupled to
// a user-chosen value.
//
// PasswordHash holds the bcrypt hash of the user's password — never the
// plaintext. The json:"-" tag makes sure it can never leak into an API
// response, no matter which handler serializes the struct.
type User struct {
	ID           string    `json:"-"         db:"id"`
	Username     string    `json:"username"  db:"username"`
	FullName     string    `json:"full_name" db:"full_name"`
	Email        string    `json:"email"     db:"email"`
	PasswordHash string    `json:"-"         db:"password_hash"`
	Disabled     bool      `json:"disabled"  db:"disabled"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// PublicUser is the subset of a profile that any authenticated user may see
// about anyone else. Only the profile owner receives the full User record.
type PublicUser struct {
	Username string `json:"username"`
}

// Public returns the publicly visible subset of the user's profile.
func (u *User) Public() PublicUser {
	return PublicUser{Username: u.Username}
}

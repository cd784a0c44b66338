// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is the identity record owned by the credential store.
//
// Username is unique and derived from first+last name with a numeric suffix
// on collision. RefreshTokenHash and RefreshTokenExpiresAt form the single
// active refresh-token slot: both are set together on login and cleared
// together on revocation, never updated independently.
type User struct {
	ID        string
	Username  string
	Email     string
	FirstName string
	LastName  string
	Gender    string

	// PasswordHash is the bcrypt digest of the password. It never leaves the
	// store layer; projections built for callers exclude it.
	PasswordHash string

	// Roles assigned to the user, embedded in access-token claims.
	Roles []string

	// RefreshTokenHash holds base64(sha256(plaintext)) of the active refresh
	// token, nil when no session is active.
	RefreshTokenHash      *string
	RefreshTokenExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasActiveRefreshToken reports whether a refresh-token slot is populated.
func (u *User) HasActiveRefreshToken() bool {
	return u.RefreshTokenHash != nil && u.RefreshTokenExpiresAt != nil
}

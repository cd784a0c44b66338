// Package users declares the credential-store contract for user records and
// provides its PostgreSQL implementation plus profile-level operations.
package users

import (
	"context"
	"time"

	"github.com/mkravets/authvault/internal/server/models"
)

// Repository is the persistence boundary for user records. Implementations
// return common.ErrNotFound when a lookup matches nothing and
// common.ErrConflict when a unique constraint (email, username) is violated.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByRefreshTokenHash finds the user whose stored refresh-token hash
	// matches exactly. The hash column is unique, so at most one row matches.
	GetByRefreshTokenHash(ctx context.Context, hash string) (*models.User, error)

	// UsernameExists reports whether a username is taken, case-insensitively.
	UsernameExists(ctx context.Context, username string) (bool, error)

	// UpdateProfile loads the user, applies mutate, and persists the profile
	// fields (names, email, gender, roles) plus the update timestamp,
	// atomically with respect to concurrent profile updates. Refresh-token
	// fields are NOT touched here.
	UpdateProfile(ctx context.Context, id string, mutate func(*models.User)) (*models.User, error)

	// UpdateRefreshToken overwrites the refresh-token slot as a whole. Both
	// nil clears the slot; both set replaces it.
	UpdateRefreshToken(ctx context.Context, userID string, hash *string, expiresAt *time.Time) error

	Delete(ctx context.Context, id string) error
}

package users

import (
	"time"

	"github.com/mkravets/authvault/internal/server/models"
)

// Profile is the public projection of a user record. It is built explicitly,
// field by field, so the password hash and the refresh-token slot can never
// leak into a response by mapping accident.
type Profile struct {
	ID        string
	Username  string
	Email     string
	FirstName string
	LastName  string
	Gender    string
	Roles     []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewProfile projects a stored user into its public shape.
func NewProfile(u *models.User) *Profile {
	return &Profile{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Gender:    u.Gender,
		Roles:     u.Roles,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

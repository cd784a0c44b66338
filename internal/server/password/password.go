// Package password implements the password verifier: bcrypt hashing and
// verification plus a fixed strength check applied at account creation.
package password

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// minLength is the minimum accepted password length. The policy is fixed,
// not configurable.
const minLength = 6

// ErrMismatch is returned by Verify when the candidate does not match the
// stored hash.
var ErrMismatch = errors.New("password mismatch")

// Verifier hashes and verifies passwords with bcrypt.
type Verifier struct {
	cost int
}

// NewVerifier returns a Verifier using the default bcrypt cost.
func NewVerifier() *Verifier {
	return &Verifier{cost: bcrypt.DefaultCost}
}

// Hash returns the bcrypt digest of the password.
func (v *Verifier) Hash(plaintext string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plaintext), v.cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Verify compares a candidate against a stored hash. It returns ErrMismatch
// on mismatch and passes through any other bcrypt failure.
func (v *Verifier) Verify(hash, candidate string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatch
	}
	return err
}

// Validate checks the password against the strength policy and returns every
// violated rule, so callers can join the reasons into one message.
func Validate(plaintext string) []string {
	var reasons []string

	if len(plaintext) < minLength {
		reasons = append(reasons, "password must be at least 6 characters")
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range plaintext {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper {
		reasons = append(reasons, "password must contain an uppercase letter")
	}
	if !hasLower {
		reasons = append(reasons, "password must contain a lowercase letter")
	}
	if !hasDigit {
		reasons = append(reasons, "password must contain a digit")
	}
	if strings.TrimSpace(plaintext) != plaintext {
		reasons = append(reasons, "password must not start or end with whitespace")
	}

	return reasons
}

// Package common defines shared constants and sentinel errors used across
// authvault layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level error kinds. Services wrap these with fmt.Errorf("%w: ...")
	// so callers can branch with errors.Is instead of parsing messages.
	ErrValidation     = errors.New("validation failed")
	ErrConflict       = errors.New("already exists")
	ErrAuthentication = errors.New("authentication failed")
	ErrPersistence    = errors.New("persistence failed")
	ErrInternal       = errors.New("internal error")

	// Configuration errors are fatal at startup and never surfaced per-request.
	ErrConfiguration = errors.New("invalid configuration")

	// Access token errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// ErrRefreshTokenExpired is an internal reason: it is logged distinctly
	// but presented to callers behind ErrAuthentication, identical to an
	// unknown token, so the failure cause does not leak.
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)

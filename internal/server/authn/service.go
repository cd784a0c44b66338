// Package authn contains the authentication orchestrator. It coordinates the
// credential store, the password verifier, and the token issuer to implement
// registration, login, refresh, and revocation.
package authn

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mkravets/authvault/internal/common"
	"github.com/mkravets/authvault/internal/logging"
	"github.com/mkravets/authvault/internal/server/config"
	"github.com/mkravets/authvault/internal/server/models"
	"github.com/mkravets/authvault/internal/server/password"
	"github.com/mkravets/authvault/internal/server/tokens"
	"github.com/mkravets/authvault/internal/server/users"
)

// defaultRole is assigned to every newly registered user.
const defaultRole = "user"

// Session is returned by Register, Login, and Refresh. RefreshToken carries
// the plaintext refresh token and is set only by Login; it is the single
// moment the plaintext exists server-side.
type Session struct {
	User         *users.Profile
	AccessToken  string
	RefreshToken string
}

// RevokeResult reports the outcome of a revocation. A persistence failure is
// reported here as Revoked=false rather than as an error, so callers must
// branch on the field, not only on err.
type RevokeResult struct {
	Revoked bool
	Message string
}

// Service orchestrates the authentication flows. All collaborators are
// passed in explicitly; the service holds no ambient state.
type Service struct {
	repo            users.Repository
	verifier        *password.Verifier
	issuer          *tokens.Issuer
	refreshValidity time.Duration
	logger          logging.Logger
}

// NewService constructs the orchestrator from its collaborators and config.
func NewService(repo users.Repository, verifier *password.Verifier, issuer *tokens.Issuer, cfg *config.Config, logger logging.Logger) *Service {
	return &Service{
		repo:            repo,
		verifier:        verifier,
		issuer:          issuer,
		refreshValidity: cfg.RefreshTokenValidityDuration,
		logger:          logger.With("module", "authn"),
	}
}

// Register creates a user account and returns its profile together with a
// first access token. A duplicate email yields common.ErrConflict; a weak
// password yields common.ErrValidation with the violated rules joined.
func (s *Service) Register(ctx context.Context, firstName, lastName, email, plaintext string) (*Session, error) {
	s.logger.Info(ctx, "registering user", "email", email)

	_, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		s.logger.Warn(ctx, "registration rejected: email already exists", "email", email)
		return nil, fmt.Errorf("%w: email already exists", common.ErrConflict)
	case errors.Is(err, common.ErrNotFound):
		// free to register
	default:
		return nil, common.ErrInternal
	}

	if reasons := password.Validate(plaintext); len(reasons) > 0 {
		return nil, fmt.Errorf("%w: %s", common.ErrValidation, strings.Join(reasons, ", "))
	}

	username, err := s.generateUsername(ctx, firstName, lastName)
	if err != nil {
		return nil, common.ErrInternal
	}

	hash, err := s.verifier.Hash(plaintext)
	if err != nil {
		return nil, common.ErrInternal
	}

	user, err := s.repo.Create(ctx, &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		Roles:        []string{defaultRole},
	})
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, err
		}
		s.logger.Error(ctx, "failed to create user", "error", err.Error())
		return nil, fmt.Errorf("%w: %s", common.ErrPersistence, err)
	}

	accessToken, err := s.issuer.AccessToken(user)
	if err != nil {
		return nil, common.ErrInternal
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID, "username", user.Username)
	return &Session{User: users.NewProfile(user), AccessToken: accessToken}, nil
}

// Login verifies credentials and mints a token pair. An unknown email and a
// wrong password produce the same error, so callers cannot probe for account
// existence. The refresh-token digest and expiry are persisted before the
// plaintext is returned.
func (s *Service) Login(ctx context.Context, email, plaintext string) (*Session, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.logger.Warn(ctx, "login rejected: unknown email")
			return nil, fmt.Errorf("%w: invalid email or password", common.ErrAuthentication)
		}
		return nil, common.ErrInternal
	}

	if err := s.verifier.Verify(user.PasswordHash, plaintext); err != nil {
		s.logger.Warn(ctx, "login rejected: password mismatch", "user_id", user.ID)
		return nil, fmt.Errorf("%w: invalid email or password", common.ErrAuthentication)
	}

	accessToken, err := s.issuer.AccessToken(user)
	if err != nil {
		return nil, common.ErrInternal
	}

	refreshToken, err := s.issuer.RefreshToken()
	if err != nil {
		return nil, common.ErrInternal
	}

	hash := s.issuer.HashRefreshToken(refreshToken)
	expiresAt := time.Now().Add(s.refreshValidity)

	// Full overwrite of the single refresh slot: a concurrent login for the
	// same user silently invalidates the other session's refresh token.
	if err := s.repo.UpdateRefreshToken(ctx, user.ID, &hash, &expiresAt); err != nil {
		s.logger.Error(ctx, "failed to store refresh token", "user_id", user.ID, "error", err.Error())
		return nil, fmt.Errorf("%w: %s", common.ErrPersistence, err)
	}
	user.RefreshTokenHash = &hash
	user.RefreshTokenExpiresAt = &expiresAt

	s.logger.Info(ctx, "user logged in", "user_id", user.ID)
	return &Session{
		User:         users.NewProfile(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh exchanges a valid refresh token for a new access token. The stored
// refresh token is left in place until its original expiry or explicit
// revocation; it is not rotated on use.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	user, err := s.lookupByRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.issuer.AccessToken(user)
	if err != nil {
		return nil, common.ErrInternal
	}

	s.logger.Info(ctx, "access token refreshed", "user_id", user.ID)
	return &Session{User: users.NewProfile(user), AccessToken: accessToken}, nil
}

// Revoke clears the refresh-token slot of the presented token's owner. The
// token is unusable from the moment this returns Revoked=true. A store
// failure after a successful lookup is reported in the result, not as an
// error.
func (s *Service) Revoke(ctx context.Context, refreshToken string) (*RevokeResult, error) {
	user, err := s.lookupByRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateRefreshToken(ctx, user.ID, nil, nil); err != nil {
		s.logger.Error(ctx, "failed to revoke refresh token", "user_id", user.ID, "error", err.Error())
		return &RevokeResult{Revoked: false, Message: "failed to revoke refresh token"}, nil
	}

	s.logger.Info(ctx, "refresh token revoked", "user_id", user.ID)
	return &RevokeResult{Revoked: true, Message: "refresh token revoked successfully"}, nil
}

// lookupByRefreshToken hashes the presented token, finds its owner, and
// enforces expiry. No-match and expired carry distinguishable wrapped reasons
// for logging while both match common.ErrAuthentication.
func (s *Service) lookupByRefreshToken(ctx context.Context, refreshToken string) (*models.User, error) {
	hash := s.issuer.HashRefreshToken(refreshToken)

	user, err := s.repo.GetByRefreshTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.logger.Warn(ctx, "refresh token rejected: no matching hash")
			return nil, fmt.Errorf("%w: invalid refresh token", common.ErrAuthentication)
		}
		return nil, common.ErrInternal
	}

	// Expired strictly before now: a token presented exactly at its expiry
	// instant is still valid.
	if !user.HasActiveRefreshToken() || user.RefreshTokenExpiresAt.Before(time.Now()) {
		s.logger.Warn(ctx, "refresh token rejected: expired", "user_id", user.ID)
		return nil, fmt.Errorf("%w: %w", common.ErrAuthentication, common.ErrRefreshTokenExpired)
	}

	s.logger.Debug(ctx, "refresh token accepted", "user_id", user.ID)
	return user, nil
}

// generateUsername derives lower(first+last) and, on collision, appends the
// smallest unused positive integer suffix. The check-then-create window is
// unsynchronized; a lost race is caught by the store's unique constraint.
func (s *Service) generateUsername(ctx context.Context, firstName, lastName string) (string, error) {
	base := strings.ToLower(firstName + lastName)

	candidate := base
	for i := 1; ; i++ {
		exists, err := s.repo.UsernameExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
}

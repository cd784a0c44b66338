package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkravets/authvault/internal/common"
	"github.com/mkravets/authvault/internal/logging"
	"github.com/mkravets/authvault/internal/server/models"
	"github.com/mkravets/authvault/internal/server/tokens"
)

// Service provides profile-level operations over user records:
// lookup by id, lookup by access-token subject, update, and delete.
type Service struct {
	repo   Repository
	issuer *tokens.Issuer
	logger logging.Logger
}

// NewService constructs a user Service.
func NewService(repo Repository, issuer *tokens.Issuer, logger logging.Logger) *Service {
	return &Service{
		repo:   repo,
		issuer: issuer,
		logger: logger.With("module", "users"),
	}
}

// GetByID returns the profile of the user with the given id, or
// common.ErrNotFound.
func (s *Service) GetByID(ctx context.Context, id string) (*Profile, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %s", common.ErrNotFound, id)
		}
		return nil, common.ErrInternal
	}
	return NewProfile(user), nil
}

// GetCurrentUser resolves the caller's identity from the access token's
// subject claim and returns the matching profile. A bad or expired token
// yields common.ErrAuthentication; a valid token whose subject no longer
// exists yields common.ErrNotFound.
func (s *Service) GetCurrentUser(ctx context.Context, accessToken string) (*Profile, error) {
	userID, err := s.issuer.Subject(accessToken)
	if err != nil {
		s.logger.Warn(ctx, "access token rejected", "reason", err.Error())
		return nil, fmt.Errorf("%w: %w", common.ErrAuthentication, err)
	}
	return s.GetByID(ctx, userID)
}

// Update replaces the mutable profile fields (names, email, gender) and
// stamps the update timestamp. The read-modify-write runs atomically in the
// store, so two concurrent updates cannot interleave.
func (s *Service) Update(ctx context.Context, id, firstName, lastName, email, gender string) (*Profile, error) {
	user, err := s.repo.UpdateProfile(ctx, id, func(u *models.User) {
		u.FirstName = firstName
		u.LastName = lastName
		u.Email = email
		u.Gender = gender
	})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %s", common.ErrNotFound, id)
		}
		if errors.Is(err, common.ErrConflict) {
			return nil, err
		}
		s.logger.Error(ctx, "failed to update user", "user_id", id, "error", err.Error())
		return nil, fmt.Errorf("%w: %s", common.ErrPersistence, err)
	}

	s.logger.Info(ctx, "user updated", "user_id", id)
	return NewProfile(user), nil
}

// Delete removes the user with the given id, or returns common.ErrNotFound.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("%w: user %s", common.ErrNotFound, id)
		}
		s.logger.Error(ctx, "failed to delete user", "user_id", id, "error", err.Error())
		return fmt.Errorf("%w: %s", common.ErrPersistence, err)
	}

	s.logger.Info(ctx, "user deleted", "user_id", id)
	return nil
}

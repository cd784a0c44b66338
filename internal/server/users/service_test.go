package users

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/mkravets/authvault/internal/common"
	"github.com/mkravets/authvault/internal/logging"
	"github.com/mkravets/authvault/internal/server/config"
	"github.com/mkravets/authvault/internal/server/models"
	"github.com/mkravets/authvault/internal/server/tokens"
)

// fakeRepo implements Repository over a map, enough for service tests.
type fakeRepo struct {
	byID      map[string]*models.User
	updateErr error
}

func newFakeRepo(users ...*models.User) *fakeRepo {
	m := make(map[string]*models.User, len(users))
	for _, u := range users {
		m[u.ID] = u
	}
	return &fakeRepo{byID: m}
}

func (f *fakeRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	f.byID[user.ID] = user
	return user, nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakeRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeRepo) GetByRefreshTokenHash(ctx context.Context, hash string) (*models.User, error) {
	return nil, common.ErrNotFound
}

func (f *fakeRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	return false, nil
}

func (f *fakeRepo) UpdateProfile(ctx context.Context, id string, mutate func(*models.User)) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	mutate(u)
	return u, nil
}

func (f *fakeRepo) UpdateRefreshToken(ctx context.Context, userID string, hash *string, expiresAt *time.Time) error {
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return common.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func newTestService(t *testing.T, repo Repository) (*Service, *tokens.Issuer) {
	t.Helper()
	cfg := &config.Config{
		JWTKey:                      "test-secret",
		JWTIssuer:                   "authvault-test",
		JWTAudience:                 "test-clients",
		AccessTokenValidityDuration: time.Hour,
	}
	issuer, err := tokens.NewIssuer(cfg)
	if err != nil {
		t.Fatalf("NewIssuer error: %v", err)
	}
	logger := logging.NewSlogLogger(slog.New(slog.DiscardHandler))
	return NewService(repo, issuer, logger), issuer
}

func storedUser() *models.User {
	now := time.Now()
	return &models.User{
		ID:           "id-1",
		Username:     "adalovelace",
		Email:        "a@x.com",
		PasswordHash: "$2a$10$hash",
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Roles:        []string{"user"},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestGetByID_ProjectsWithoutSecrets(t *testing.T) {
	u := storedUser()
	hash := "refresh-hash"
	u.RefreshTokenHash = &hash
	svc, _ := newTestService(t, newFakeRepo(u))

	p, err := svc.GetByID(context.Background(), "id-1")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if p.ID != "id-1" || p.Username != "adalovelace" || p.Email != "a@x.com" {
		t.Fatalf("unexpected profile: %+v", p)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	svc, _ := newTestService(t, newFakeRepo())

	_, err := svc.GetByID(context.Background(), "ghost")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestGetCurrentUser_FromAccessToken(t *testing.T) {
	u := storedUser()
	svc, issuer := newTestService(t, newFakeRepo(u))

	token, err := issuer.AccessToken(u)
	if err != nil {
		t.Fatalf("AccessToken error: %v", err)
	}

	p, err := svc.GetCurrentUser(context.Background(), token)
	if err != nil {
		t.Fatalf("GetCurrentUser error: %v", err)
	}
	if p.ID != u.ID {
		t.Fatalf("subject mismatch: %+v", p)
	}
}

func TestGetCurrentUser_BadToken(t *testing.T) {
	svc, _ := newTestService(t, newFakeRepo())

	_, err := svc.GetCurrentUser(context.Background(), "garbage")
	if !errors.Is(err, common.ErrAuthentication) {
		t.Fatalf("want common.ErrAuthentication, got %v", err)
	}
}

func TestGetCurrentUser_SubjectGone(t *testing.T) {
	u := storedUser()
	repo := newFakeRepo(u)
	svc, issuer := newTestService(t, repo)

	token, _ := issuer.AccessToken(u)
	delete(repo.byID, u.ID)

	_, err := svc.GetCurrentUser(context.Background(), token)
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestUpdate_ReplacesProfileFields(t *testing.T) {
	u := storedUser()
	repo := newFakeRepo(u)
	svc, _ := newTestService(t, repo)

	p, err := svc.Update(context.Background(), "id-1", "Augusta", "King", "ada@x.com", "female")
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if p.FirstName != "Augusta" || p.LastName != "King" || p.Email != "ada@x.com" || p.Gender != "female" {
		t.Fatalf("profile not updated: %+v", p)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _ := newTestService(t, newFakeRepo())

	_, err := svc.Update(context.Background(), "ghost", "A", "B", "e@x.com", "")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	u := storedUser()
	repo := newFakeRepo(u)
	svc, _ := newTestService(t, repo)

	if err := svc.Delete(context.Background(), "id-1"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if err := svc.Delete(context.Background(), "id-1"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("second delete must be not-found, got %v", err)
	}
}

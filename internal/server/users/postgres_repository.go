package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mkravets/authvault/internal/common"
	"github.com/mkravets/authvault/internal/dbx"
	"github.com/mkravets/authvault/internal/server/models"
)

// pgUniqueViolation is the PostgreSQL error code for unique_violation.
const pgUniqueViolation = "23505"

// PostgresRepository implements Repository. Single-statement operations run
// on h, which is the bare connection outside a transaction; UpdateProfile
// opens a transaction on db and rebinds h to it.
type PostgresRepository struct {
	db *sql.DB
	h  dbx.DBTX
}

// NewPostgresRepository constructs a repository over the given database.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db, h: db}
}

// withHandle returns a copy of the repository bound to the given handle,
// used to run operations inside a transaction.
func (r *PostgresRepository) withHandle(h dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: r.db, h: h}
}

const userColumns = `id, username, email, password_hash, first_name, last_name, gender, roles,
	       refresh_token_hash, refresh_token_expires_at, created_at, updated_at`

// Create inserts a new user record, assigning a fresh uuid and stamping both
// timestamps. A duplicate email or username surfaces as common.ErrConflict.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (id, username, email, password_hash, first_name, last_name, gender, roles, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		RETURNING created_at, updated_at
	`

	user.ID = uuid.NewString()
	now := time.Now()

	err := r.h.QueryRowContext(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash,
		user.FirstName, user.LastName, user.Gender, joinRoles(user.Roles), now,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: user with the same email or username", common.ErrConflict)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

// GetByID returns the user with the given id or common.ErrNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.h.QueryRowContext(ctx, query, id))
}

// GetByEmail returns the user with the given email or common.ErrNotFound.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(r.h.QueryRowContext(ctx, query, email))
}

// GetByRefreshTokenHash returns the user holding the given refresh-token
// hash. The column is unique, so the store performs the comparison against a
// single stored value, never by trial over users.
func (r *PostgresRepository) GetByRefreshTokenHash(ctx context.Context, hash string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE refresh_token_hash = $1`
	return r.scanUser(r.h.QueryRowContext(ctx, query, hash))
}

// UsernameExists reports whether a username is taken, case-insensitively.
func (r *PostgresRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE lower(username) = lower($1))`

	var exists bool
	if err := r.h.QueryRowContext(ctx, query, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

// UpdateProfile loads the user, applies mutate, and persists the profile
// fields, all inside one transaction so concurrent updates cannot interleave
// between the read and the write.
func (r *PostgresRepository) UpdateProfile(ctx context.Context, id string, mutate func(*models.User)) (*models.User, error) {
	var user *models.User

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		txRepo := r.withHandle(tx)

		u, err := txRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		mutate(u)

		if err := txRepo.update(ctx, u); err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// update persists profile fields and stamps updated_at. Refresh-token fields
// are excluded; UpdateRefreshToken owns them.
func (r *PostgresRepository) update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET username = $2, email = $3, first_name = $4, last_name = $5, gender = $6, roles = $7, updated_at = $8
		WHERE id = $1
	`

	user.UpdatedAt = time.Now()
	res, err := r.h.ExecContext(ctx, query,
		user.ID, user.Username, user.Email, user.FirstName, user.LastName,
		user.Gender, joinRoles(user.Roles), user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: user with the same email or username", common.ErrConflict)
		}
		return fmt.Errorf("db error: %w", err)
	}
	return requireRow(res)
}

// UpdateRefreshToken overwrites the refresh-token slot as a whole: both
// columns are always written together so a hash without an expiry can never
// be observed.
func (r *PostgresRepository) UpdateRefreshToken(ctx context.Context, userID string, hash *string, expiresAt *time.Time) error {
	query := `
		UPDATE users
		SET refresh_token_hash = $2, refresh_token_expires_at = $3, updated_at = $4
		WHERE id = $1
	`

	res, err := r.h.ExecContext(ctx, query, userID, hash, expiresAt, time.Now())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRow(res)
}

// Delete removes a user by id, returning common.ErrNotFound when no row
// matched.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM users WHERE id = $1`

	res, err := r.h.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRow(res)
}

func (r *PostgresRepository) scanUser(row *sql.Row) (*models.User, error) {
	var (
		user      models.User
		roles     string
		tokenHash sql.NullString
		tokenExp  sql.NullTime
	)

	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.FirstName, &user.LastName, &user.Gender, &roles,
		&tokenHash, &tokenExp, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.Roles = splitRoles(roles)
	if tokenHash.Valid {
		user.RefreshTokenHash = &tokenHash.String
	}
	if tokenExp.Valid {
		user.RefreshTokenExpiresAt = &tokenExp.Time
	}

	return &user, nil
}

// requireRow converts a zero-row update/delete into common.ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// Roles are stored in a single text column as a comma-separated list, which
// keeps database/sql scanning free of driver-specific array types.

func joinRoles(roles []string) string {
	return strings.Join(roles, ",")
}

func splitRoles(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

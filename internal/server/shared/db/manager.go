// Package db wires the credential store: it opens the database, runs
// migrations, and hands out repositories.
package db

import (
	"context"
	"database/sql"

	"github.com/mkravets/authvault/internal/server/users"
)

// RepositoryManager owns the database handle and the repositories built on it.
type RepositoryManager interface {
	RunMigrations(context.Context) error
	Conn() *sql.DB
	Users() users.Repository
	Close() error
}

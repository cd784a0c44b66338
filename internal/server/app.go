// Package server initializes and runs the main application. It validates
// configuration, wires the credential store, password verifier, and token
// issuer into the services, and handles graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mkravets/authvault/internal/logging"
	"github.com/mkravets/authvault/internal/server/authn"
	"github.com/mkravets/authvault/internal/server/config"
	"github.com/mkravets/authvault/internal/server/password"
	"github.com/mkravets/authvault/internal/server/shared/db"
	"github.com/mkravets/authvault/internal/server/tokens"
	"github.com/mkravets/authvault/internal/server/users"
)

// App bundles the configured services. The transport layer wrapping them is
// an external concern; AuthService and UserService are the boundary handed
// to it.
type App struct {
	config      *config.Config
	logger      logging.Logger
	store       db.RepositoryManager
	AuthService *authn.Service
	UserService *users.Service
}

// NewApp validates configuration and wires all collaborators explicitly.
// A configuration error aborts startup; nothing is retried.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	issuer, err := tokens.NewIssuer(cfg)
	if err != nil {
		return nil, err
	}

	store, err := db.NewPostgresRepositoryManager(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	verifier := password.NewVerifier()

	return &App{
		config:      cfg,
		logger:      logger,
		store:       store,
		AuthService: authn.NewService(store.Users(), verifier, issuer, cfg, logger),
		UserService: users.NewService(store.Users(), issuer, logger),
	}, nil
}

// Run blocks until the context is cancelled or a termination signal arrives,
// then closes the store.
func (app *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app.initSignalHandler(cancel)

	app.logger.Info(ctx, "authvault started", "addr", app.config.EndpointAddr)

	<-ctx.Done()

	app.logger.Info(ctx, "shutting down")
	if err := app.store.Close(); err != nil {
		app.logger.Error(ctx, "error closing store", "error", err.Error())
	}
}

func (app *App) initSignalHandler(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancel()
	}()
}

// Command authctl is an operator tool for managing authvault accounts
// directly against the database, bypassing the transport layer. Its first
// use is bootstrapping an account on a fresh deployment.
//
// Usage:
//
//	authctl -first Ada -last Lovelace -email a@x.com [-d <dsn>] [-c conf.json]
//
// The password is prompted on the terminal without echo. Database and token
// settings come from the regular server configuration layers.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/mkravets/authvault/internal/common"
	"github.com/mkravets/authvault/internal/flagx"
	"github.com/mkravets/authvault/internal/logging"
	"github.com/mkravets/authvault/internal/server/authn"
	"github.com/mkravets/authvault/internal/server/config"
	"github.com/mkravets/authvault/internal/server/password"
	"github.com/mkravets/authvault/internal/server/shared/db"
	"github.com/mkravets/authvault/internal/server/tokens"
)

func main() {
	var firstName, lastName, email string

	args := flagx.FilterArgs(os.Args[1:], []string{"-first", "-last", "-email"})

	fs := flag.NewFlagSet("authctl", flag.ExitOnError)
	fs.StringVar(&firstName, "first", "", "first name")
	fs.StringVar(&lastName, "last", "", "last name")
	fs.StringVar(&email, "email", "", "email address")
	_ = fs.Parse(args)

	if firstName == "" || lastName == "" || email == "" {
		fs.Usage()
		os.Exit(2)
	}

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("%v", err)
	}

	pw, err := readPassword()
	if err != nil {
		log.Fatalf("reading password: %v", err)
	}
	defer common.WipeByteArray(pw)

	ctx := context.Background()

	store, err := db.NewPostgresRepositoryManager(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	defer store.Close()

	issuer, err := tokens.NewIssuer(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	svc := authn.NewService(store.Users(), password.NewVerifier(), issuer, cfg, logger)

	sess, err := svc.Register(ctx, firstName, lastName, email, string(pw))
	if err != nil {
		log.Fatalf("registration failed: %v", err)
	}

	fmt.Printf("registered %s (%s)\n", sess.User.Username, sess.User.ID)
}

// readPassword prompts on stderr and reads the password from the terminal
// without echo.
func readPassword() ([]byte, error) {
	fmt.Fprint(os.Stderr, "Enter password: ")
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

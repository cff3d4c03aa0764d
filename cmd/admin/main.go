package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"horizon/internal/infrastructure/crypto"
	"horizon/internal/infrastructure/postgres"
	"horizon/internal/shared/config"
	"horizon/internal/shared/logging"
)

const usage = `Horizon Admin CLI - Management commands for the Horizon API

Usage:
  admin <command> [options]

Commands:
  migrate          Create the Postgres tables used by the postgres identity backend
  purge-sessions   Delete expired sessions from the postgres identity backend
  sharable-id      Encode an account id as a sharable id, or decode one

Examples:
  admin migrate
  admin purge-sessions --timeout=1m
  admin sharable-id BxBXxLj1m4HMXBm9WZZmCWVbPjX16EHwv99vp
  admin sharable-id --decode 3q2-7w...
`

var errUsage = errors.New("invalid usage")

func main() {
	logging.Setup(logging.Config{Level: os.Getenv("LOG_LEVEL")})

	if err := run(os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, errUsage) {
			log.Error().Err(err).Msg("command failed")
		}
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprintln(out, usage)
		return errUsage
	}

	switch args[0] {
	case "migrate":
		return runMigrate(args[1:])
	case "purge-sessions":
		return runPurgeSessions(args[1:])
	case "sharable-id":
		return runSharableID(args[1:], out)
	case "help", "-h", "--help":
		fmt.Fprintln(out, usage)
		return nil
	default:
		fmt.Fprintf(out, "Unknown command: %s\n\n", args[0])
		fmt.Fprintln(out, usage)
		return errUsage
	}
}

func runMigrate(args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	timeout := fs.Duration("timeout", 30*time.Second, "Timeout for the operation")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	db, err := connect()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := db.Migrate(ctx); err != nil {
		return err
	}
	log.Info().Msg("schema applied")
	return nil
}

func runPurgeSessions(args []string) error {
	fs := flag.NewFlagSet("purge-sessions", flag.ContinueOnError)
	timeout := fs.Duration("timeout", 5*time.Minute, "Timeout for the operation")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	db, err := connect()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	n, err := postgres.NewIdentityStore(db).PurgeExpiredSessions(ctx)
	if err != nil {
		return err
	}
	log.Info().Int64("deleted", n).Msg("expired sessions purged")
	return nil
}

// runSharableID only needs ENCRYPTION_KEY, so it works against either
// identity backend.
func runSharableID(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("sharable-id", flag.ContinueOnError)
	decode := fs.Bool("decode", false, "Decode a sharable id back to the account id")
	fs.SetOutput(out)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(out, "Usage: admin sharable-id [--decode] <value>")
		return errUsage
	}

	encryptor, err := crypto.NewEncryptor(os.Getenv("ENCRYPTION_KEY"))
	if err != nil {
		return err
	}

	var result string
	if *decode {
		result, err = encryptor.Decrypt(fs.Arg(0))
	} else {
		result, err = encryptor.Encrypt(fs.Arg(0))
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(out, result)
	return nil
}

func connect() (*postgres.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Identity.Backend != config.IdentityBackendPostgres {
		return nil, fmt.Errorf("command requires IDENTITY_BACKEND=%s", config.IdentityBackendPostgres)
	}

	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}
	log.Info().Str("database", cfg.Database.DBName).Msg("connected to database")
	return db, nil
}

// Command credctl holds operator tasks for the certhub credential store.
//
//	credctl migrate-passwords [-d dsn] [-k cost]   rehash stored plaintext passwords
//	credctl hash-password [-k cost]                print the digest of a password read from the terminal
//
// Configuration is loaded exactly as for the server (-c file, CERTHUB_*
// environment, flags).
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dmitrijs2005/certhub/internal/flagx"
	"github.com/dmitrijs2005/certhub/internal/logging"
	"github.com/dmitrijs2005/certhub/internal/server/config"
	"github.com/dmitrijs2005/certhub/internal/server/passwords"
	"github.com/dmitrijs2005/certhub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/certhub/internal/server/services"
	"golang.org/x/term"
)

const usage = "usage: credctl <migrate-passwords|hash-password> [flags]"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd, _ := flagx.Command(os.Args[1:])
	if cmd == "" {
		log.Fatal(usage)
	}

	cfg := config.LoadConfig()

	if err := run(ctx, cmd, cfg, os.Stdin, os.Stdout); err != nil {
		log.Fatalf("%s: %v", cmd, err)
	}
}

func run(ctx context.Context, cmd string, cfg *config.Config, in *os.File, out io.Writer) error {
	switch cmd {
	case "migrate-passwords":
		return migratePasswords(ctx, cfg, out)
	case "hash-password":
		return hashPassword(cfg, terminalPassword(in, out), out)
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}

func migratePasswords(ctx context.Context, cfg *config.Config, out io.Writer) error {
	if cfg.DatabaseDSN == "" {
		return errors.New("database DSN is required (-d or CERTHUB_DATABASE_DSN)")
	}

	logger, err := logging.New(cfg.LogBackend, cfg.LogLevel, os.Stderr)
	if err != nil {
		return err
	}

	hasher, err := passwords.NewBcryptHasher(cfg.BcryptCost)
	if err != nil {
		return err
	}

	db, err := repomanager.OpenPostgres(ctx, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("db migration error: %w", err)
	}

	report, err := services.NewCredentialMigrator(db, rm, hasher, logger).Run(ctx)
	if err != nil {
		return err
	}

	return writeReport(out, report)
}

func writeReport(out io.Writer, r *services.MigrationReport) error {
	_, err := fmt.Fprintf(out, "credentials: %d, rehashed: %d, already hashed: %d, changed concurrently: %d\n",
		r.Total, r.Rehashed, r.AlreadyHashed, r.Changed)
	return err
}

// passwordSource returns one password.
type passwordSource func() (string, error)

// terminalPassword reads without echo from a terminal, or a single line when
// input is piped.
func terminalPassword(in *os.File, prompt io.Writer) passwordSource {
	return func() (string, error) {
		fd := int(in.Fd())
		if term.IsTerminal(fd) {
			fmt.Fprint(prompt, "Password: ")
			b, err := term.ReadPassword(fd)
			fmt.Fprintln(prompt)
			if err != nil {
				return "", err
			}
			return string(b), nil
		}
		return readLine(in)
	}
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func hashPassword(cfg *config.Config, read passwordSource, out io.Writer) error {
	hasher, err := passwords.NewBcryptHasher(cfg.BcryptCost)
	if err != nil {
		return err
	}

	pw, err := read()
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	if pw == "" {
		return errors.New("empty password")
	}

	digest, err := hasher.Hash(pw)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, digest)
	return err
}

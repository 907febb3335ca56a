package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/certhub/internal/dbx"
	"github.com/dmitrijs2005/certhub/internal/logging"
	"github.com/dmitrijs2005/certhub/internal/server/passwords"
	"github.com/dmitrijs2005/certhub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/certhub/internal/server/repositories/users"
)

// MigrationReport summarises a legacy password migration run.
type MigrationReport struct {
	Total         int
	AlreadyHashed int
	Rehashed      int
	Changed       int // rows modified concurrently and left untouched
}

// CredentialMigrator rehashes stored plaintext passwords. It is an operator
// batch job and is never invoked on the login path.
type CredentialMigrator struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      passwords.Hasher
	logger      logging.Logger
}

func NewCredentialMigrator(db *sql.DB, m repomanager.RepositoryManager, hasher passwords.Hasher, logger logging.Logger) *CredentialMigrator {
	return &CredentialMigrator{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		logger:      logger.With("module", "credential_migrator"),
	}
}

// Run migrates every credential. With a database handle the whole batch runs
// in one transaction; without one (in-memory store) it runs directly.
func (m *CredentialMigrator) Run(ctx context.Context) (*MigrationReport, error) {
	if m.db == nil {
		return m.migrate(ctx, m.repomanager.Users(nil))
	}

	var report *MigrationReport
	err := dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		report, err = m.migrate(ctx, m.repomanager.Users(tx))
		return err
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (m *CredentialMigrator) migrate(ctx context.Context, repo users.Repository) (*MigrationReport, error) {
	creds, err := repo.ListCredentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}

	report := &MigrationReport{Total: len(creds)}

	for _, c := range creds {
		if m.hasher.IsHashed(c.PasswordHash) {
			report.AlreadyHashed++
			continue
		}

		digest, err := m.hasher.Hash(c.PasswordHash)
		if err != nil {
			return nil, fmt.Errorf("hash credential of user %s: %w", c.UserID, err)
		}

		updated, err := repo.UpdatePasswordHash(ctx, c.UserID, c.PasswordHash, digest)
		if err != nil {
			return nil, fmt.Errorf("update credential of user %s: %w", c.UserID, err)
		}
		if !updated {
			report.Changed++
			m.logger.Warn(ctx, "credential changed during migration, skipped", "user_id", c.UserID)
			continue
		}
		report.Rehashed++
	}

	m.logger.Info(ctx, "credential migration finished",
		"total", report.Total,
		"already_hashed", report.AlreadyHashed,
		"rehashed", report.Rehashed,
		"changed", report.Changed,
	)

	return report, nil
}

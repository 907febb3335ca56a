// Package repomanager vends repository implementations bound to a database
// handle, and runs schema migrations for the backing store.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/certhub/internal/dbx"
	"github.com/dmitrijs2005/certhub/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
}

// MemoryRepositoryManager serves a single shared in-memory credential store.
// The db handle passed to Users is ignored.
type MemoryRepositoryManager struct {
	users *users.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{users: users.NewMemoryRepository()}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *MemoryRepositoryManager) Users(dbx.DBTX) users.Repository { return m.users }

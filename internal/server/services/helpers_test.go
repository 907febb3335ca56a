package services

import (
	"context"
	"database/sql"
	"io"
	"sync"
	"testing"

	"github.com/dmitrijs2005/certhub/internal/common"
	"github.com/dmitrijs2005/certhub/internal/dbx"
	"github.com/dmitrijs2005/certhub/internal/logging"
	"github.com/dmitrijs2005/certhub/internal/server/models"
	"github.com/dmitrijs2005/certhub/internal/server/oracle"
	"github.com/dmitrijs2005/certhub/internal/server/passwords"
	"github.com/dmitrijs2005/certhub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/certhub/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- helpers ---

func newTestLogger() logging.Logger {
	return logging.NewSlogJSONLogger(io.Discard, "debug")
}

func newTestHasher(t *testing.T) *passwords.BcryptHasher {
	t.Helper()
	h, err := passwords.NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

type fakeOracle struct {
	mu    sync.Mutex
	out   oracle.Signal
	err   error
	calls []string
}

func (f *fakeOracle) Check(_ context.Context, identifier string) (oracle.Signal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, identifier)
	if f.err != nil {
		return oracle.Unknown, f.err
	}
	return f.out, nil
}

func (f *fakeOracle) called() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// fakeUsersRepo returns canned results; a nil out with nil err means
// "not found" for lookups.
type fakeUsersRepo struct {
	createOut *models.User
	createErr error

	getOut *models.User
	getErr error

	getByIDOut *models.User
	getByIDErr error

	bindOut bool
	bindErr error

	listOut []models.Credential
	listErr error

	updateOut bool
	updateErr error
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	return u, nil
}

func (f *fakeUsersRepo) lookup() (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.getOut == nil {
		return nil, common.ErrorNotFound
	}
	c := *f.getOut
	return &c, nil
}

func (f *fakeUsersRepo) GetByEmail(context.Context, string) (*models.User, error) { return f.lookup() }
func (f *fakeUsersRepo) GetByPhone(context.Context, string) (*models.User, error) { return f.lookup() }

func (f *fakeUsersRepo) GetByID(context.Context, string) (*models.User, error) {
	if f.getByIDErr != nil {
		return nil, f.getByIDErr
	}
	if f.getByIDOut == nil {
		return nil, common.ErrorNotFound
	}
	return f.getByIDOut, nil
}

func (f *fakeUsersRepo) BindPrimaryIdentifier(context.Context, string, models.PrimaryIdentifier) (bool, error) {
	return f.bindOut, f.bindErr
}

func (f *fakeUsersRepo) ListCredentials(context.Context) ([]models.Credential, error) {
	return f.listOut, f.listErr
}

func (f *fakeUsersRepo) UpdatePasswordHash(context.Context, string, string, string) (bool, error) {
	return f.updateOut, f.updateErr
}

type fakeManager struct {
	repo users.Repository
}

func (m *fakeManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeManager) Users(dbx.DBTX) users.Repository             { return m.repo }

var _ repomanager.RepositoryManager = (*fakeManager)(nil)

func strPtr(s string) *string { return &s }

// seedUser stores an account with a hashed password and, optionally, an
// already bound primary identifier.
func seedUser(t *testing.T, m repomanager.RepositoryManager, h passwords.Hasher, id, email, phone, password string, primary models.PrimaryIdentifier) *models.User {
	t.Helper()
	ctx := context.Background()

	digest, err := h.Hash(password)
	require.NoError(t, err)

	u := &models.User{ID: id, Name: "Test " + id, Address: "Riga", Role: "user", PasswordHash: digest}
	if email != "" {
		u.Email = strPtr(email)
	}
	if phone != "" {
		u.Phone = strPtr(phone)
	}

	repo := m.Users(nil)
	_, err = repo.Create(ctx, u)
	require.NoError(t, err)

	if primary.IsSet() {
		ok, err := repo.BindPrimaryIdentifier(ctx, id, primary)
		require.NoError(t, err)
		require.True(t, ok)
	}

	stored, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	return stored
}

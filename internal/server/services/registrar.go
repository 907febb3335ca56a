package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/certhub/internal/common"
	"github.com/dmitrijs2005/certhub/internal/logging"
	"github.com/dmitrijs2005/certhub/internal/server/models"
	"github.com/dmitrijs2005/certhub/internal/server/passwords"
	"github.com/dmitrijs2005/certhub/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// RegisterRequest carries signup input as submitted.
type RegisterRequest struct {
	Name     string
	Email    string
	Phone    string
	Password string
	Address  string
}

// existenceChecker is the part of IdentityResolver the Registrar needs.
type existenceChecker interface {
	Resolve(ctx context.Context, id models.Identifier) (*Resolution, error)
}

// Registrar validates and creates new accounts.
type Registrar struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	resolver    existenceChecker
	hasher      passwords.Hasher
	logger      logging.Logger
	newID       func() string
}

func NewRegistrar(db *sql.DB, m repomanager.RepositoryManager, resolver existenceChecker, hasher passwords.Hasher, logger logging.Logger) *Registrar {
	return &Registrar{
		db:          db,
		repomanager: m,
		resolver:    resolver,
		hasher:      hasher,
		logger:      logger.With("module", "registrar"),
		newID:       uuid.NewString,
	}
}

// Register creates an account with an unset primary identifier and the
// default role. Existing identifiers (local or per the oracle) yield
// common.ErrorDuplicateUser, as does losing an insert race to a concurrent
// signup.
func (r *Registrar) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	id, err := validateRegistration(req)
	if err != nil {
		return nil, err
	}

	res, err := r.resolver.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.Exists {
		r.logger.Info(ctx, "signup rejected, identifier exists", "kind", id.Kind().String())
		return nil, common.ErrorDuplicateUser
	}

	digest, err := r.hasher.Hash(req.Password)
	if err != nil {
		if errors.Is(err, passwords.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: password is too long", common.ErrorValidation)
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	user := &models.User{
		ID:           r.newID(),
		Name:         strings.TrimSpace(req.Name),
		Email:        id.EmailPtr(),
		Phone:        id.PhonePtr(),
		PasswordHash: digest,
		Address:      strings.TrimSpace(req.Address),
		Role:         common.DefaultRole,
	}

	created, err := r.repomanager.Users(r.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			r.logger.Info(ctx, "signup lost insert race", "kind", id.Kind().String())
			return nil, common.ErrorDuplicateUser
		}
		r.logger.Error(ctx, "user insert failed", "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrorStorage, err)
	}

	r.logger.Info(ctx, "user registered", "user_id", created.ID)

	return created.Sanitized(), nil
}

func validateRegistration(req RegisterRequest) (models.Identifier, error) {
	var missing []string
	if strings.TrimSpace(req.Name) == "" {
		missing = append(missing, "name")
	}
	if req.Password == "" {
		missing = append(missing, "password")
	}
	if strings.TrimSpace(req.Address) == "" {
		missing = append(missing, "address")
	}

	id, idErr := models.NewIdentifier(req.Email, req.Phone)
	if idErr != nil {
		missing = append(missing, "email or phone")
	}

	if len(missing) > 0 {
		return models.Identifier{}, fmt.Errorf("%w: missing %s", common.ErrorValidation, strings.Join(missing, ", "))
	}
	return id, nil
}

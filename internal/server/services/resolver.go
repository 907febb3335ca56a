// Package services contains the identity core: existence resolution,
// authentication with first-login binding, registration, and the one-off
// legacy password migration.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/certhub/internal/common"
	"github.com/dmitrijs2005/certhub/internal/logging"
	"github.com/dmitrijs2005/certhub/internal/server/models"
	"github.com/dmitrijs2005/certhub/internal/server/oracle"
	"github.com/dmitrijs2005/certhub/internal/server/repositories/repomanager"
)

// Resolution is the outcome of an existence check. User is the matching
// local record, or nil when existence (if any) comes from the oracle alone.
type Resolution struct {
	Exists bool
	User   *models.User
}

// IdentityResolver combines the local credential store with the external
// identity oracle into a single existence decision.
type IdentityResolver struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	oracle      oracle.Client
	logger      logging.Logger
}

func NewIdentityResolver(db *sql.DB, m repomanager.RepositoryManager, oc oracle.Client, logger logging.Logger) *IdentityResolver {
	return &IdentityResolver{
		db:          db,
		repomanager: m,
		oracle:      oc,
		logger:      logger.With("module", "resolver"),
	}
}

// CheckUserExists validates the raw email/phone pair and resolves it.
func (r *IdentityResolver) CheckUserExists(ctx context.Context, email, phone string) (*Resolution, error) {
	id, err := models.NewIdentifier(email, phone)
	if err != nil {
		return nil, err
	}
	return r.Resolve(ctx, id)
}

// Resolve decides whether id belongs to an existing account.
//
// A local match or an oracle "exists" answer means exists. An oracle
// "not exists" answer with no local match means absent. Anything else falls
// back to the local result. Oracle failures are logged and never returned;
// storage failures are returned wrapped in common.ErrorStorage.
func (r *IdentityResolver) Resolve(ctx context.Context, id models.Identifier) (*Resolution, error) {
	local, err := r.lookupLocal(ctx, id)
	if err != nil {
		return nil, err
	}

	signal := r.askOracle(ctx, id)

	res := &Resolution{Exists: decideExists(local != nil, signal)}
	if local != nil {
		res.User = local.Sanitized()
	}

	r.logger.Debug(ctx, "identity resolved",
		"kind", id.Kind().String(),
		"local", local != nil,
		"oracle", signal.String(),
		"exists", res.Exists,
	)

	return res, nil
}

// decideExists is the resolution table. Either source saying "exists" wins;
// an inconclusive oracle falls back to the local answer.
func decideExists(localExists bool, signal oracle.Signal) bool {
	switch {
	case signal == oracle.Exists || localExists:
		return true
	case signal == oracle.NotExists:
		return false
	default:
		return localExists
	}
}

// lookupLocal matches by email, then by phone. Either match counts.
func (r *IdentityResolver) lookupLocal(ctx context.Context, id models.Identifier) (*models.User, error) {
	repo := r.repomanager.Users(r.db)

	if email, ok := id.Email(); ok {
		u, err := findOne(ctx, repo.GetByEmail, email)
		if err != nil || u != nil {
			return u, err
		}
	}
	if phone, ok := id.Phone(); ok {
		return findOne(ctx, repo.GetByPhone, phone)
	}
	return nil, nil
}

func (r *IdentityResolver) askOracle(ctx context.Context, id models.Identifier) oracle.Signal {
	signal, err := r.oracle.Check(ctx, id.OracleValue())
	if err != nil {
		r.logger.Warn(ctx, "identity oracle degraded, using local data only",
			"kind", id.Kind().String(),
			"reason", err.Error(),
		)
		return oracle.Unknown
	}
	return signal
}

// findOne runs a single-record lookup, mapping not-found to (nil, nil) and
// any other failure to common.ErrorStorage.
func findOne(ctx context.Context, get func(context.Context, string) (*models.User, error), key string) (*models.User, error) {
	u, err := get(ctx, key)
	switch {
	case err == nil:
		return u, nil
	case errors.Is(err, common.ErrorNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %v", common.ErrorStorage, err)
	}
}

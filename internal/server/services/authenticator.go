package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/certhub/internal/common"
	"github.com/dmitrijs2005/certhub/internal/logging"
	"github.com/dmitrijs2005/certhub/internal/server/models"
	"github.com/dmitrijs2005/certhub/internal/server/passwords"
	"github.com/dmitrijs2005/certhub/internal/server/repositories/repomanager"
)

// Authenticator verifies login attempts and enforces the identifier lock.
type Authenticator struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      passwords.Hasher
	logger      logging.Logger

	// dummyDigest is compared against when no account matches, so unknown
	// identifiers cost the same bcrypt work as wrong passwords.
	dummyDigest string
}

func NewAuthenticator(db *sql.DB, m repomanager.RepositoryManager, hasher passwords.Hasher, logger logging.Logger) (*Authenticator, error) {
	dummy, err := hasher.Hash("certhub/no-such-account")
	if err != nil {
		return nil, fmt.Errorf("init authenticator: %w", err)
	}
	return &Authenticator{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		logger:      logger.With("module", "authenticator"),
		dummyDigest: dummy,
	}, nil
}

// Login validates raw input and authenticates it.
func (a *Authenticator) Login(ctx context.Context, email, phone, password string) (*models.User, error) {
	id, err := models.NewIdentifier(email, phone)
	if err != nil {
		return nil, err
	}
	return a.Authenticate(ctx, id, password)
}

// Authenticate looks the account up through the identifier's channel (email
// wins when both are given), enforces the primary identifier lock, verifies
// the password and, on the first success, binds the channel as primary.
//
// Every authentication failure is common.ErrorInvalidCredentials. The
// returned user never carries the password hash.
func (a *Authenticator) Authenticate(ctx context.Context, id models.Identifier, password string) (*models.User, error) {
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", common.ErrorValidation)
	}

	channel := id.Channel()
	if !channel.IsSet() {
		return nil, fmt.Errorf("%w: email or phone is required", common.ErrorValidation)
	}

	repo := a.repomanager.Users(a.db)

	get := repo.GetByEmail
	if channel == models.PrimaryPhone {
		get = repo.GetByPhone
	}

	user, err := findOne(ctx, get, id.ChannelValue())
	if err != nil {
		a.logger.Error(ctx, "login lookup failed", "channel", string(channel), "error", err)
		return nil, err
	}
	if user == nil {
		a.hasher.Verify(password, a.dummyDigest)
		return nil, a.reject(ctx, channel, "", "no_match")
	}

	if user.PrimaryIdentifier.IsSet() && user.PrimaryIdentifier != channel {
		a.hasher.Verify(password, a.dummyDigest)
		return nil, a.reject(ctx, channel, user.ID, "identifier_locked")
	}

	if !a.hasher.Verify(password, user.PasswordHash) {
		return nil, a.reject(ctx, channel, user.ID, "wrong_password")
	}

	if !user.PrimaryIdentifier.IsSet() {
		bound, err := a.bind(ctx, user.ID, channel)
		if err != nil {
			a.logger.Error(ctx, "primary identifier bind failed", "user_id", user.ID, "error", err)
			return nil, err
		}
		user.PrimaryIdentifier = bound
	}

	a.logger.Info(ctx, "login succeeded", "user_id", user.ID, "channel", string(channel))

	return user.Sanitized(), nil
}

// bind sets the primary identifier if it is still unset and returns the
// value actually persisted. When a concurrent login won the race, the stored
// value is re-read rather than trusting this request's stale view.
func (a *Authenticator) bind(ctx context.Context, userID string, channel models.PrimaryIdentifier) (models.PrimaryIdentifier, error) {
	repo := a.repomanager.Users(a.db)

	won, err := repo.BindPrimaryIdentifier(ctx, userID, channel)
	if err != nil {
		return models.PrimaryUnset, fmt.Errorf("%w: %v", common.ErrorStorage, err)
	}
	if won {
		a.logger.Info(ctx, "primary identifier bound", "user_id", userID, "channel", string(channel))
		return channel, nil
	}

	fresh, err := findOne(ctx, repo.GetByID, userID)
	if err != nil {
		return models.PrimaryUnset, err
	}
	if fresh == nil {
		return models.PrimaryUnset, fmt.Errorf("%w: user %s vanished during bind", common.ErrorStorage, userID)
	}

	a.logger.Warn(ctx, "primary identifier bind lost race",
		"user_id", userID,
		"attempted", string(channel),
		"persisted", string(fresh.PrimaryIdentifier),
	)
	return fresh.PrimaryIdentifier, nil
}

func (a *Authenticator) reject(ctx context.Context, channel models.PrimaryIdentifier, userID, reason string) error {
	a.logger.Warn(ctx, "login rejected", "channel", string(channel), "user_id", userID, "reason", reason)
	return common.ErrorInvalidCredentials
}

// Package users is the credential store: persistence of user records keyed by
// id, email and phone.
package users

import (
	"context"

	"github.com/dmitrijs2005/certhub/internal/server/models"
)

// Repository is the credential store contract.
//
// Lookups return common.ErrorNotFound when nothing matches. Create returns an
// error wrapping common.ErrorAlreadyExists when the email or phone is already
// taken; uniqueness is enforced by the store itself, not by callers.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)

	// BindPrimaryIdentifier sets the primary identifier only if it is still
	// unset. It reports whether this call performed the write.
	BindPrimaryIdentifier(ctx context.Context, id string, channel models.PrimaryIdentifier) (bool, error)

	// ListCredentials returns the stored password value of every user.
	ListCredentials(ctx context.Context) ([]models.Credential, error)

	// UpdatePasswordHash replaces the stored password only if it still equals
	// oldHash. It reports whether the row was updated.
	UpdatePasswordHash(ctx context.Context, id, oldHash, newHash string) (bool, error)
}

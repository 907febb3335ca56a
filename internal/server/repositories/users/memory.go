package users

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/certhub/internal/common"
	"github.com/dmitrijs2005/certhub/internal/server/models"
)

// MemoryRepository is an in-process credential store. It enforces the same
// uniqueness and conditional-update rules as the PostgreSQL schema and is
// used for local development and tests.
type MemoryRepository struct {
	mu      sync.Mutex
	byID    map[string]*models.User
	byEmail map[string]string
	byPhone map[string]string
	now     func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]*models.User),
		byEmail: make(map[string]string),
		byPhone: make(map[string]string),
		now:     time.Now,
	}
}

func (r *MemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if user.Email == nil && user.Phone == nil {
		return nil, fmt.Errorf("db error: users_contact_present violated")
	}
	if _, ok := r.byID[user.ID]; ok {
		return nil, fmt.Errorf("%w: users_pkey", common.ErrorAlreadyExists)
	}
	if user.Email != nil {
		if _, ok := r.byEmail[*user.Email]; ok {
			return nil, fmt.Errorf("%w: users_email_key", common.ErrorAlreadyExists)
		}
	}
	if user.Phone != nil {
		if _, ok := r.byPhone[*user.Phone]; ok {
			return nil, fmt.Errorf("%w: users_phone_key", common.ErrorAlreadyExists)
		}
	}

	now := r.now()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.PrimaryIdentifier = models.PrimaryUnset

	stored := cloneUser(user)
	r.byID[stored.ID] = stored
	if stored.Email != nil {
		r.byEmail[*stored.Email] = stored.ID
	}
	if stored.Phone != nil {
		r.byPhone[*stored.Phone] = stored.ID
	}

	return user, nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return cloneUser(u), nil
}

func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getByIndex(ctx, r.byEmail, email)
}

func (r *MemoryRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	return r.getByIndex(ctx, r.byPhone, phone)
}

func (r *MemoryRepository) getByIndex(ctx context.Context, index map[string]string, key string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := index[key]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return cloneUser(r.byID[id]), nil
}

func (r *MemoryRepository) BindPrimaryIdentifier(ctx context.Context, id string, channel models.PrimaryIdentifier) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if channel != models.PrimaryEmail && channel != models.PrimaryPhone {
		return false, fmt.Errorf("db error: users_primary_identifier_check violated")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok || u.PrimaryIdentifier.IsSet() {
		return false, nil
	}
	u.PrimaryIdentifier = channel
	u.UpdatedAt = r.now()
	return true, nil
}

func (r *MemoryRepository) ListCredentials(ctx context.Context) ([]models.Credential, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	creds := make([]models.Credential, 0, len(r.byID))
	for _, u := range r.byID {
		creds = append(creds, models.Credential{UserID: u.ID, PasswordHash: u.PasswordHash})
	}
	sort.Slice(creds, func(i, j int) bool { return creds[i].UserID < creds[j].UserID })
	return creds, nil
}

func (r *MemoryRepository) UpdatePasswordHash(ctx context.Context, id, oldHash, newHash string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok || u.PasswordHash != oldHash {
		return false, nil
	}
	u.PasswordHash = newHash
	u.UpdatedAt = r.now()
	return true, nil
}

func cloneUser(u *models.User) *models.User {
	c := *u
	if u.Email != nil {
		e := *u.Email
		c.Email = &e
	}
	if u.Phone != nil {
		p := *u.Phone
		c.Phone = &p
	}
	return &c
}

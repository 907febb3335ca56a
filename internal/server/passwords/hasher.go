// Package passwords hashes and verifies user passwords with bcrypt.
package passwords

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher computes and verifies self-describing salted password digests.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
	IsHashed(value string) bool
}

// ErrPasswordTooLong is returned by Hash for passwords bcrypt cannot accept.
var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

// BcryptHasher implements Hasher with a fixed bcrypt work factor.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher using cost, or bcrypt.DefaultCost when
// cost is zero. Costs outside bcrypt's accepted range are rejected.
func NewBcryptHasher(cost int) (*BcryptHasher, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &BcryptHasher{cost: cost}, nil
}

func (h *BcryptHasher) Cost() int { return h.cost }

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// Verify always treats digest as a bcrypt hash. A stored plaintext value
// never verifies.
func (h *BcryptHasher) Verify(plaintext, digest string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
	return err == nil
}

// IsHashed reports whether value is structurally a bcrypt digest: a $2a$,
// $2b$ or $2y$ prefix followed by a cost bcrypt accepts. It exists for the
// one-off legacy migration and must not be consulted during login.
func (h *BcryptHasher) IsHashed(value string) bool {
	if len(value) != bcryptDigestLen {
		return false
	}
	switch value[:4] {
	case "$2a$", "$2b$", "$2y$":
	default:
		return false
	}
	_, err := bcrypt.Cost([]byte(value))
	return err == nil
}

const bcryptDigestLen = 60

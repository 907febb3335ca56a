// Package models holds the domain types shared by the certhub server layers.
package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// PrimaryIdentifier is the channel an account is canonically bound to.
// The zero value means the account has not been bound yet.
type PrimaryIdentifier string

const (
	PrimaryUnset PrimaryIdentifier = ""
	PrimaryEmail PrimaryIdentifier = "email"
	PrimaryPhone PrimaryIdentifier = "phone"
)

// IsSet reports whether the identifier has been bound.
func (p PrimaryIdentifier) IsSet() bool { return p != PrimaryUnset }

// Valid reports whether p is one of the three allowed values.
func (p PrimaryIdentifier) Valid() bool {
	switch p {
	case PrimaryUnset, PrimaryEmail, PrimaryPhone:
		return true
	}
	return false
}

// MarshalJSON renders the unset value as null.
func (p PrimaryIdentifier) MarshalJSON() ([]byte, error) {
	if p == PrimaryUnset {
		return []byte("null"), nil
	}
	return json.Marshal(string(p))
}

func (p *PrimaryIdentifier) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v := PrimaryUnset
	if s != nil {
		v = PrimaryIdentifier(*s)
	}
	if !v.Valid() {
		return fmt.Errorf("invalid primary identifier %q", v)
	}
	*p = v
	return nil
}

// User is an account record. Profile fields (Name, Address, Role) are carried
// as opaque payload; identity logic only reads Email, Phone, PasswordHash and
// PrimaryIdentifier.
type User struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Email             *string           `json:"email"`
	Phone             *string           `json:"phone"`
	PasswordHash      string            `json:"-"`
	PrimaryIdentifier PrimaryIdentifier `json:"primaryIdentifier"`
	Address           string            `json:"address"`
	Role              string            `json:"role"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// Sanitized returns a copy of u with the password hash cleared.
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.PasswordHash = ""
	return &c
}

// HasEmail reports whether the account carries an email address.
func (u *User) HasEmail() bool { return u.Email != nil && *u.Email != "" }

// HasPhone reports whether the account carries a phone number.
func (u *User) HasPhone() bool { return u.Phone != nil && *u.Phone != "" }

// Credential is the minimal projection used by the password migration.
type Credential struct {
	UserID       string
	PasswordHash string
}

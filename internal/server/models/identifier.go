package models

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/certhub/internal/common"
)

// IdentifierKind tells which contact fields an Identifier carries.
type IdentifierKind int

const (
	KindEmail IdentifierKind = iota + 1
	KindPhone
	KindBoth
)

func (k IdentifierKind) String() string {
	switch k {
	case KindEmail:
		return "email"
	case KindPhone:
		return "phone"
	case KindBoth:
		return "both"
	}
	return "unknown"
}

// Identifier is a validated email and/or phone as submitted by a client.
// Construct it with NewIdentifier; the zero value is not valid.
type Identifier struct {
	kind  IdentifierKind
	email string
	phone string
}

// NewIdentifier trims both inputs and builds an Identifier. Blank values are
// treated as absent. At least one must remain, otherwise the returned error
// wraps common.ErrorValidation.
func NewIdentifier(email, phone string) (Identifier, error) {
	email = strings.TrimSpace(email)
	phone = strings.TrimSpace(phone)

	switch {
	case email != "" && phone != "":
		return Identifier{kind: KindBoth, email: email, phone: phone}, nil
	case email != "":
		return Identifier{kind: KindEmail, email: email}, nil
	case phone != "":
		return Identifier{kind: KindPhone, phone: phone}, nil
	default:
		return Identifier{}, fmt.Errorf("%w: email or phone is required", common.ErrorValidation)
	}
}

// EmailIdentifier is shorthand for an email-only identifier.
func EmailIdentifier(email string) (Identifier, error) { return NewIdentifier(email, "") }

// PhoneIdentifier is shorthand for a phone-only identifier.
func PhoneIdentifier(phone string) (Identifier, error) { return NewIdentifier("", phone) }

func (i Identifier) Kind() IdentifierKind { return i.kind }

// Email returns the email and whether one is present.
func (i Identifier) Email() (string, bool) { return i.email, i.email != "" }

// Phone returns the phone and whether one is present.
func (i Identifier) Phone() (string, bool) { return i.phone, i.phone != "" }

// Channel is the login channel selected by this identifier. Email wins when
// both are present; the phone is then ignored for authentication.
func (i Identifier) Channel() PrimaryIdentifier {
	switch i.kind {
	case KindEmail, KindBoth:
		return PrimaryEmail
	case KindPhone:
		return PrimaryPhone
	}
	return PrimaryUnset
}

// ChannelValue returns the value for Channel.
func (i Identifier) ChannelValue() string {
	if i.Channel() == PrimaryEmail {
		return i.email
	}
	return i.phone
}

// OracleValue is the single identifier forwarded to the identity oracle
// (email preferred).
func (i Identifier) OracleValue() string { return i.ChannelValue() }

// EmailPtr returns a pointer to the email, or nil when absent.
func (i Identifier) EmailPtr() *string {
	if i.email == "" {
		return nil
	}
	v := i.email
	return &v
}

// PhonePtr returns a pointer to the phone, or nil when absent.
func (i Identifier) PhonePtr() *string {
	if i.phone == "" {
		return nil
	}
	v := i.phone
	return &v
}

func (i Identifier) String() string {
	switch i.kind {
	case KindEmail:
		return "email:" + i.email
	case KindPhone:
		return "phone:" + i.phone
	case KindBoth:
		return "email:" + i.email + ",phone:" + i.phone
	}
	return "<none>"
}

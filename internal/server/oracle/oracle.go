// Package oracle asks the external identity service whether an email or
// phone is already registered somewhere in the wider ecosystem.
//
// Every failure mode (transport error, timeout, non-2xx response, body that
// does not match the expected schema) collapses into Unknown. Check still
// returns the cause as an error so callers can log the degradation, but
// callers must never fail a request because of it.
package oracle

import (
	"context"
	"errors"
)

// Signal is the ternary answer of the oracle.
type Signal int

const (
	Unknown Signal = iota
	Exists
	NotExists
)

func (s Signal) String() string {
	switch s {
	case Exists:
		return "exists"
	case NotExists:
		return "not_exists"
	default:
		return "unknown"
	}
}

// Client checks a single identifier. Implementations return Unknown together
// with a non-nil error when the oracle could not be asked or understood, and
// Unknown with a nil error when it answered with an inconclusive code.
type Client interface {
	Check(ctx context.Context, identifier string) (Signal, error)
}

// ErrUnrecognizedResponse marks a response body that does not match the
// expected {"statusCode": <int>} schema.
var ErrUnrecognizedResponse = errors.New("unrecognized oracle response")

// Disabled is used when no oracle is configured. It always answers Unknown
// without error, so resolution runs on local data only.
type Disabled struct{}

func (Disabled) Check(context.Context, string) (Signal, error) { return Unknown, nil }

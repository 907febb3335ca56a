// Package common defines shared constants and sentinel errors used across
// the certhub server and tools. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors surfaced to callers.
	ErrorValidation         = errors.New("validation error")
	ErrorInvalidCredentials = errors.New("invalid credentials")
	ErrorDuplicateUser      = errors.New("user already exists")

	// Infrastructure errors.
	ErrorStorage           = errors.New("storage error")
	ErrorOracleUnavailable = errors.New("identity oracle unavailable")
	ErrorInternal          = errors.New("internal error")

	// Service token errors.
	ErrorInvalidToken = errors.New("invalid token")
	ErrorTokenExpired = errors.New("token expired")
)

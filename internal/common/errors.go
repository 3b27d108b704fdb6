// Package common defines shared constants and sentinel errors used across
// the sharebox server and CLI. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Lookup errors.
	ErrorNotFound = errors.New("not found")

	// Write errors.
	ErrorConflict = errors.New("name conflict")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")

	// The profile selected by the client no longer exists.
	ErrorUnknownProfile = errors.New("unknown profile")

	// Configuration errors (a required setting is absent).
	ErrorMissingSetting = errors.New("missing setting")

	// Auth errors (invalid or malformed session token).
	ErrInvalidToken = errors.New("invalid token")
)

// Package apperr defines the error taxonomy shared by services and the HTTP
// layer. Handlers map these sentinels to status codes; services wrap them with
// context via fmt.Errorf and %w.
package apperr

import "errors"

var (
	// ErrValidation covers malformed or missing input.
	ErrValidation = errors.New("validation error")

	// ErrNotFound covers absent entities, including entities that exist but
	// are not owned by the caller.
	ErrNotFound = errors.New("not found")

	// ErrConflict covers uniqueness violations, typically the loser of a
	// concurrent create racing to a unique index.
	ErrConflict = errors.New("conflict")

	// ErrExpired covers time-bound resources past their validity window.
	ErrExpired = errors.New("expired")

	// ErrAlreadyUsed covers one-shot resources that were already consumed.
	ErrAlreadyUsed = errors.New("already used")

	// ErrUnauthorized covers requests lacking a valid identity.
	ErrUnauthorized = errors.New("unauthorized")
)

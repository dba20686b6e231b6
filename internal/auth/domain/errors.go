package domain

import (
	"github.com/keywarden/keywarden/internal/errors"
)

// Authentication and authorization errors.
var (
	// ErrClientNotFound indicates a client with the specified ID was not found.
	ErrClientNotFound = errors.Wrap(errors.ErrNotFound, "client not found")

	// ErrInvalidCredentials is returned for every login failure: unknown name,
	// inactive client or wrong secret. The uniform message prevents client
	// name enumeration.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid credentials")

	// ErrInvalidToken indicates a bearer token that is missing, malformed,
	// expired or carries a bad signature.
	ErrInvalidToken = errors.Wrap(errors.ErrUnauthorized, "invalid token")
)

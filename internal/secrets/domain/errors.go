package domain

import (
	"github.com/keywarden/keywarden/internal/errors"
)

// Secret management errors.
var (
	// ErrSecretNotFound indicates the requested secret does not exist.
	ErrSecretNotFound = errors.Wrap(errors.ErrNotFound, "secret not found")
)

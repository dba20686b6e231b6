package domain

import (
	"github.com/keywarden/keywarden/internal/errors"
)

// Cryptographic operation error definitions.
var (
	// ErrUnsupportedAlgorithm indicates the envelope names an algorithm other
	// than the single live suite (AES-256-GCM).
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrUnsupportedVersion indicates the envelope format version is newer
	// than this build understands.
	ErrUnsupportedVersion = errors.Wrap(errors.ErrInvalidInput, "unsupported envelope version")

	// ErrInvalidKeySize indicates a key is not exactly 32 bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrMalformedCiphertext indicates a sealed payload is too short to hold
	// a nonce and an authentication tag.
	ErrMalformedCiphertext = errors.Wrap(errors.ErrInvalidInput, "malformed ciphertext")

	// ErrMalformedEnvelope indicates the encrypted package bytes cannot be decoded.
	ErrMalformedEnvelope = errors.Wrap(errors.ErrInvalidInput, "malformed envelope")

	// ErrDekMismatch indicates the DEK id embedded in an envelope header does
	// not match the id recorded on the secret row. This is a data-integrity
	// fault, not a user error.
	ErrDekMismatch = errors.New("envelope dek id does not match record")

	// ErrDekNotFound indicates a DEK with the specified id was not found.
	ErrDekNotFound = errors.Wrap(errors.ErrNotFound, "dek not found")

	// ErrDekInUse indicates a DEK cannot be deleted because secrets still
	// reference it.
	ErrDekInUse = errors.Wrap(errors.ErrConflict, "dek is referenced by existing secrets")
)

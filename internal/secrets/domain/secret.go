// Package domain defines the core domain models for secret management.
// Secret payloads are stored as self-describing encrypted packages whose
// header names the DEK that sealed them.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Secret represents an encrypted secret with metadata.
type Secret struct {
	// ID is the unique identifier for this secret.
	ID uuid.UUID
	// Name is the unique logical key used to access the secret.
	Name string
	// Data contains the encrypted package bytes (header + sealed payload).
	Data []byte
	// DekID references the DEK that sealed the current package. Must always
	// equal the dekId embedded in the package header.
	DekID uint32
	// FolderID optionally places the secret in a folder.
	FolderID *uuid.UUID
	// Plaintext holds the decrypted value in memory only; never persisted.
	Plaintext []byte `json:"-"`
	// LastRotation is the time of the last re-encryption under a newer DEK.
	LastRotation *time.Time
	// CreatedAt is the UTC timestamp when the secret was created.
	CreatedAt time.Time
	// UpdatedAt is the UTC timestamp of the last value or metadata change.
	UpdatedAt time.Time
}

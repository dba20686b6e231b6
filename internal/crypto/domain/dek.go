package domain

import (
	"time"
)

// Dek represents a Data Encryption Key used to encrypt secret payloads.
// The key material is stored wrapped by the KEK named in KekID; the plaintext
// DEK is unwrapped once at startup (or on creation) and held only in the
// in-memory keyring. It is never persisted and never logged.
type Dek struct {
	ID         uint32 // Monotonic identifier, starts at 1, immutable
	Name       string // Unique human-readable name
	WrappedKey []byte // The DEK wrapped by the KMS under KekID
	KekID      string // Identifier of the KEK that wrapped this DEK
	Version    uint   // Incremented on every KEK rotation rewrap
	IsActive   bool   // Inactive DEKs still decrypt but are never the default
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Header is the authenticated, unencrypted part of an encrypted package.
// Its canonical serialization doubles as the AEAD associated data, binding
// the algorithm, format version and DEK identity to the ciphertext.
type Header struct {
	Alg     Algorithm
	Version uint32
	DekID   uint32
}

// Package is the on-disk encrypted form of a secret: a header plus the AEAD
// output (nonce || ciphertext || tag).
type Package struct {
	Header  Header
	Payload []byte
}

// RotationFailure records a single DEK that could not be rewrapped during a
// KEK rotation batch.
type RotationFailure struct {
	DekID uint32 `json:"dekId"`
	Error string `json:"error"`
}

// RotationResult summarizes a KEK rotation batch. Failures never abort the
// batch; each DEK is rewrapped independently.
type RotationResult struct {
	Total    int               `json:"total"`
	Success  int               `json:"success"`
	Failures []RotationFailure `json:"failures"`
}

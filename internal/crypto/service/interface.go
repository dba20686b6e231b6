// Package service provides cryptographic services for envelope encryption:
// the AEAD primitive, the encrypted package codec, the KMS adapters that wrap
// and unwrap DEKs, and the in-memory DEK keyring.
package service

import (
	"context"

	cryptoDomain "github.com/keywarden/keywarden/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
// Sealed output is laid out as nonce(12) || ciphertext || tag(16).
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns the sealed bytes.
	Encrypt(plaintext, aad []byte) ([]byte, error)

	// Decrypt opens sealed bytes produced by Encrypt using the same AAD.
	Decrypt(sealed, aad []byte) ([]byte, error)
}

// AEADManager creates AEAD cipher instances for a key and algorithm.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// Envelope seals plaintexts into encrypted packages and opens them again.
// The package header is bound to the ciphertext as associated data.
type Envelope interface {
	// Seal encrypts plaintext under the DEK named by dekID and returns the
	// serialized encrypted package.
	Seal(plaintext []byte, dekID uint32) ([]byte, error)

	// Open decodes and decrypts an encrypted package. When expectedDekID is
	// non-nil, a header that names a different DEK is a data-integrity fault.
	// The header is returned so callers can observe the DEK used.
	Open(data []byte, expectedDekID *uint32) ([]byte, cryptoDomain.Header, error)
}

// KmsAdapter wraps and unwraps DEKs with a Key Encryption Key. Production
// implementations talk to an external KMS; the local implementation holds a
// development KEK in memory.
type KmsAdapter interface {
	// WrapDek wraps a plaintext DEK under the current KEK and reports the
	// KEK id it was wrapped with.
	WrapDek(ctx context.Context, plaintextKey []byte) (wrapped []byte, kekID string, err error)

	// UnwrapDek unwraps a DEK previously wrapped under the named KEK.
	UnwrapDek(ctx context.Context, wrappedKey []byte, kekID string) ([]byte, error)

	// ReencryptDek rewraps a DEK from oldKekID to newKekID without exposing
	// the plaintext key to the caller.
	ReencryptDek(ctx context.Context, wrappedKey []byte, oldKekID, newKekID string) ([]byte, error)

	// CurrentKekID returns the KEK id used for new wraps.
	CurrentKekID() string

	// RotateTo switches the KEK used for new wraps. Existing wrapped DEKs
	// remain readable via UnwrapDek with their recorded KEK id.
	RotateTo(kekID string)
}

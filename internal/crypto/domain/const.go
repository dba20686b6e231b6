// Package domain defines the core cryptographic domain models for envelope encryption.
//
// It implements a two-tier key hierarchy: KEK → DEK → Data. The KEK lives in an
// external KMS and wraps Data Encryption Keys; plaintext DEKs exist only in
// process memory. A single AEAD suite is live; the envelope header carries the
// algorithm identifier so other suites can be added without breaking layout.
package domain

// Algorithm represents the cryptographic algorithm used for encryption.
type Algorithm string

const (
	// AESGCM represents the AES-256-GCM authenticated encryption algorithm,
	// the single suite currently accepted by the envelope codec.
	//
	// Key features:
	//   - 256-bit key size
	//   - 12-byte nonce (96 bits), random per encryption
	//   - 16-byte authentication tag appended to the ciphertext
	AESGCM Algorithm = "AES-256-GCM"
)

const (
	// KeySize is the required size in bytes of every DEK and KEK.
	KeySize = 32

	// NonceSize is the AEAD nonce size in bytes.
	NonceSize = 12

	// TagSize is the AEAD authentication tag size in bytes.
	TagSize = 16

	// EnvelopeVersion is the current encrypted package format version.
	// Decoders reject anything newer.
	EnvelopeVersion uint32 = 1
)

// Package service provides technical services for authentication operations:
// client secret hashing and signed access token issuance.
package service

import (
	authDomain "github.com/keywarden/keywarden/internal/auth/domain"
)

// SecretService generates and verifies client secrets. The plain secret is
// shown once at registration; only the hash is ever stored.
type SecretService interface {
	// GenerateSecret returns a fresh random secret in plain and hashed form.
	GenerateSecret() (plainSecret, hashedSecret string, err error)

	// HashSecret hashes a caller-chosen secret for storage.
	HashSecret(plainSecret string) (hashedSecret string, err error)

	// CompareSecret reports whether plainSecret matches hashedSecret. The
	// comparison runs in constant time.
	CompareSecret(plainSecret string, hashedSecret string) bool
}

// TokenSigner issues and verifies signed access tokens. Tokens are
// self-contained: verification needs no database lookup.
type TokenSigner interface {
	// Sign issues a token for the given claims with the configured lifetime.
	Sign(claims authDomain.TokenClaims) (string, error)

	// Verify parses and validates a token. It rejects bad signatures, expired
	// tokens, tokens without an expiry, and unexpected signing algorithms.
	Verify(token string) (*authDomain.TokenClaims, error)
}

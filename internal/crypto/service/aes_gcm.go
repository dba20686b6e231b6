package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	cryptoDomain "github.com/keywarden/keywarden/internal/crypto/domain"
	apperrors "github.com/keywarden/keywarden/internal/errors"
)

// AESGCMCipher implements the AEAD interface using AES-256-GCM.
//
// Security properties:
//   - 256-bit key size
//   - 12-byte nonce, drawn from crypto/rand for every Encrypt call; reuse of
//     a (key, nonce) pair is a security fault, so nonces are never cached
//   - 16-byte authentication tag appended to the ciphertext
//
// The cipher instance is stateless and safe for concurrent use from multiple
// goroutines.
type AESGCMCipher struct {
	aead cipher.AEAD
}

// NewAESGCM creates a new AES-256-GCM cipher instance.
// The key must be exactly 32 bytes; keys should come from GenerateRandomKey.
func NewAESGCM(key []byte) (*AESGCMCipher, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &AESGCMCipher{aead: aead}, nil
}

// GenerateRandomKey returns a fresh 32-byte key from a CSPRNG.
func GenerateRandomKey() ([]byte, error) {
	key := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return key, nil
}

// Encrypt encrypts plaintext with optional additional authenticated data.
//
// A unique 12-byte nonce is generated per call and prefixed to the output, so
// the sealed bytes are self-contained: nonce(12) || ciphertext || tag(16).
// The AAD is authenticated but not encrypted; pass nil when there is none.
func (a *AESGCMCipher) Encrypt(plaintext, aad []byte) ([]byte, error) {
	nonce := make([]byte, a.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	// Seal appends to the nonce slice, producing nonce || ciphertext || tag.
	return a.aead.Seal(nonce, nonce, plaintext, aad), nil
}

// Decrypt opens sealed bytes produced by Encrypt with the same AAD.
//
// Returns ErrMalformedCiphertext when the input is too short to contain a
// nonce and a tag, and ErrAuthenticationFailure when tag verification fails
// (wrong key, wrong AAD, or tampered data).
func (a *AESGCMCipher) Decrypt(sealed, aad []byte) ([]byte, error) {
	if len(sealed) < cryptoDomain.NonceSize+cryptoDomain.TagSize {
		return nil, cryptoDomain.ErrMalformedCiphertext
	}

	nonce := sealed[:cryptoDomain.NonceSize]
	ciphertext := sealed[cryptoDomain.NonceSize:]

	plaintext, err := a.aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrAuthenticationFailure, "aead open")
	}
	return plaintext, nil
}

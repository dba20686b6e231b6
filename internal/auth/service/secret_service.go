package service

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/allisson/go-pwdhash"

	apperrors "github.com/keywarden/keywarden/internal/errors"
)

// generatedSecretBytes is the entropy of a generated client secret.
const generatedSecretBytes = 32

// secretService hashes client secrets with Argon2id.
type secretService struct {
	hasher *pwdhash.PasswordHasher
}

// GenerateSecret creates a fresh random client secret together with its hash.
// Only the hash is ever persisted; the plain form goes to the caller once.
func (s *secretService) GenerateSecret() (string, string, error) {
	entropy := make([]byte, generatedSecretBytes)
	if _, err := rand.Read(entropy); err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate random secret")
	}

	plain := base64.URLEncoding.EncodeToString(entropy)
	hashed, err := s.HashSecret(plain)
	if err != nil {
		return "", "", err
	}
	return plain, hashed, nil
}

// HashSecret hashes a plain text secret for storage.
func (s *secretService) HashSecret(plainSecret string) (string, error) {
	hashed, err := s.hasher.Hash([]byte(plainSecret))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash secret")
	}
	return hashed, nil
}

// CompareSecret reports whether the plain secret matches the stored hash.
// Malformed hashes compare as a mismatch rather than an error so login
// failures stay uniform.
func (s *secretService) CompareSecret(plainSecret string, hashedSecret string) bool {
	ok, err := s.hasher.Verify([]byte(plainSecret), hashedSecret)
	return err == nil && ok
}

// NewSecretService creates a SecretService with the moderate Argon2id policy,
// trading a little login latency for brute-force resistance.
func NewSecretService() SecretService {
	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyModerate))
	if err != nil {
		// Only reachable with an invalid policy constant.
		panic(err)
	}
	return &secretService{hasher: hasher}
}

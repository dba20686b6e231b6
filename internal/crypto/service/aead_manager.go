package service

import (
	cryptoDomain "github.com/keywarden/keywarden/internal/crypto/domain"
)

// cipherFactories maps each supported algorithm to its constructor. A single
// suite is live today; decrypting data sealed under a retired suite would
// only need a new entry here.
var cipherFactories = map[cryptoDomain.Algorithm]func(key []byte) (AEAD, error){
	cryptoDomain.AESGCM: func(key []byte) (AEAD, error) { return NewAESGCM(key) },
}

// AEADManagerService builds AEAD cipher instances by algorithm name.
type AEADManagerService struct{}

// NewAEADManager creates a new AEADManagerService.
func NewAEADManager() *AEADManagerService {
	return &AEADManagerService{}
}

// CreateCipher creates an AEAD cipher for the given algorithm. Returns
// ErrInvalidKeySize unless the key is exactly 32 bytes and
// ErrUnsupportedAlgorithm for any algorithm outside the registry.
func (am *AEADManagerService) CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	factory, ok := cipherFactories[alg]
	if !ok {
		return nil, cryptoDomain.ErrUnsupportedAlgorithm
	}
	return factory(key)
}

package service

import (
	"context"
	"sync/atomic"

	cryptoDomain "github.com/keywarden/keywarden/internal/crypto/domain"
	apperrors "github.com/keywarden/keywarden/internal/errors"
)

// LocalKmsAdapter is the development KMS: a locally configured 32-byte KEK
// used with the AEAD primitive directly. Wrapped DEKs are header-less because
// the KEK identity is implicit in configuration. Never use in production.
type LocalKmsAdapter struct {
	cipher *AESGCMCipher
	kekID  atomic.Value // string
}

// NewLocalKmsAdapter creates a development adapter around the given KEK.
func NewLocalKmsAdapter(kek []byte, kekID string) (*LocalKmsAdapter, error) {
	cipher, err := NewAESGCM(kek)
	if err != nil {
		return nil, err
	}

	a := &LocalKmsAdapter{cipher: cipher}
	a.kekID.Store(kekID)
	return a, nil
}

// WrapDek wraps a plaintext DEK under the local KEK.
func (a *LocalKmsAdapter) WrapDek(
	_ context.Context,
	plaintextKey []byte,
) ([]byte, string, error) {
	if len(plaintextKey) != cryptoDomain.KeySize {
		return nil, "", cryptoDomain.ErrInvalidKeySize
	}

	wrapped, err := a.cipher.Encrypt(plaintextKey, nil)
	if err != nil {
		return nil, "", err
	}
	return wrapped, a.CurrentKekID(), nil
}

// UnwrapDek unwraps a DEK. The development adapter holds a single KEK, so the
// kekID argument is informational only.
func (a *LocalKmsAdapter) UnwrapDek(
	_ context.Context,
	wrappedKey []byte,
	_ string,
) ([]byte, error) {
	key, err := a.cipher.Decrypt(wrappedKey, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to unwrap dek with local kek")
	}
	return key, nil
}

// ReencryptDek rewraps a DEK: with one local KEK the key material is
// unchanged, but the wrapped bytes are refreshed under a new nonce.
func (a *LocalKmsAdapter) ReencryptDek(
	ctx context.Context,
	wrappedKey []byte,
	oldKekID, _ string,
) ([]byte, error) {
	key, err := a.UnwrapDek(ctx, wrappedKey, oldKekID)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(key)

	rewrapped, err := a.cipher.Encrypt(key, nil)
	if err != nil {
		return nil, err
	}
	return rewrapped, nil
}

// CurrentKekID returns the configured KEK label.
func (a *LocalKmsAdapter) CurrentKekID() string {
	return a.kekID.Load().(string)
}

// RotateTo relabels the local KEK for subsequent wraps.
func (a *LocalKmsAdapter) RotateTo(kekID string) {
	a.kekID.Store(kekID)
}

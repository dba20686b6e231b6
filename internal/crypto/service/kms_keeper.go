package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gocloud.dev/secrets"

	cryptoDomain "github.com/keywarden/keywarden/internal/crypto/domain"
	apperrors "github.com/keywarden/keywarden/internal/errors"

	// Register KMS provider drivers selectable by URI scheme.
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// KeeperKmsAdapter wraps and unwraps DEKs through a gocloud.dev secrets
// keeper, addressing KEKs by URI (awskms://, azurekeyvault://, hashivault://,
// base64key://). These provider APIs carry no end-to-end CRC confirmation;
// integrity rides on the provider channel and the AEAD seal of the payload.
type KeeperKmsAdapter struct {
	timeout time.Duration

	mu      sync.Mutex
	keepers map[string]*secrets.Keeper
	current string
}

// NewKeeperKmsAdapter creates an adapter whose current KEK is the given URI.
// The keeper for each URI is opened lazily and cached.
func NewKeeperKmsAdapter(keyURI string, timeout time.Duration) *KeeperKmsAdapter {
	return &KeeperKmsAdapter{
		timeout: timeout,
		keepers: make(map[string]*secrets.Keeper),
		current: keyURI,
	}
}

// keeper returns (opening if needed) the cached keeper for a KEK URI.
func (a *KeeperKmsAdapter) keeper(ctx context.Context, keyURI string) (*secrets.Keeper, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if keeper, ok := a.keepers[keyURI]; ok {
		return keeper, nil
	}

	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper %q: %w", keyURI, err)
	}
	a.keepers[keyURI] = keeper
	return keeper, nil
}

// WrapDek wraps a plaintext DEK under the current KEK URI.
func (a *KeeperKmsAdapter) WrapDek(
	ctx context.Context,
	plaintextKey []byte,
) ([]byte, string, error) {
	if len(plaintextKey) != cryptoDomain.KeySize {
		return nil, "", cryptoDomain.ErrInvalidKeySize
	}

	kekID := a.CurrentKekID()
	keeper, err := a.keeper(ctx, kekID)
	if err != nil {
		return nil, "", err
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	wrapped, err := keeper.Encrypt(callCtx, plaintextKey)
	if err != nil {
		return nil, "", keeperError(err, "failed to wrap dek")
	}
	return wrapped, kekID, nil
}

// UnwrapDek unwraps a DEK under the named KEK URI.
func (a *KeeperKmsAdapter) UnwrapDek(
	ctx context.Context,
	wrappedKey []byte,
	kekID string,
) ([]byte, error) {
	keeper, err := a.keeper(ctx, kekID)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	key, err := keeper.Decrypt(callCtx, wrappedKey)
	if err != nil {
		return nil, keeperError(err, "failed to unwrap dek")
	}
	return key, nil
}

// ReencryptDek rewraps a DEK from one KEK URI to another.
func (a *KeeperKmsAdapter) ReencryptDek(
	ctx context.Context,
	wrappedKey []byte,
	oldKekID, newKekID string,
) ([]byte, error) {
	key, err := a.UnwrapDek(ctx, wrappedKey, oldKekID)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(key)

	keeper, err := a.keeper(ctx, newKekID)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	rewrapped, err := keeper.Encrypt(callCtx, key)
	if err != nil {
		return nil, keeperError(err, "failed to rewrap dek")
	}
	return rewrapped, nil
}

// CurrentKekID returns the KEK URI used for new wraps.
func (a *KeeperKmsAdapter) CurrentKekID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// RotateTo switches the KEK URI used for new wraps.
func (a *KeeperKmsAdapter) RotateTo(kekID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.current = kekID
}

// Close releases every opened keeper.
func (a *KeeperKmsAdapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var errs []error
	for uri, keeper := range a.keepers {
		if err := keeper.Close(); err != nil {
			errs = append(errs, fmt.Errorf("keeper %q: %w", uri, err))
		}
		delete(a.keepers, uri)
	}
	return errors.Join(errs...)
}

// keeperError classifies keeper failures into the transport error taxonomy.
func keeperError(err error, message string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Wrap(apperrors.ErrTransportTimeout, message)
	}
	return apperrors.Wrap(err, message)
}

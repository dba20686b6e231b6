package service

import (
	"context"
	"errors"
	"fmt"
	"hash/crc32"
	"sync"
	"time"

	kms "cloud.google.com/go/kms/apiv1"
	"cloud.google.com/go/kms/apiv1/kmspb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	cryptoDomain "github.com/keywarden/keywarden/internal/crypto/domain"
	apperrors "github.com/keywarden/keywarden/internal/errors"
)

// crc32cTable is the Castagnoli polynomial table used by Cloud KMS for
// end-to-end payload integrity.
var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// crc32c computes the CRC32C checksum the Cloud KMS API expects.
func crc32c(data []byte) int64 {
	return int64(crc32.Checksum(data, crc32cTable))
}

// GCPKmsAdapter wraps and unwraps DEKs with Google Cloud KMS.
//
// Every call carries a CRC32C of the payload sent and verifies both the
// server-side confirmation and a locally recomputed CRC of the payload
// received. Any mismatch is a fatal protocol error (transport corruption) and
// is never retried at this layer. Calls are bounded by a configurable timeout
// and surface transport timeouts distinctly so upper layers may retry
// idempotent operations.
type GCPKmsAdapter struct {
	client    *kms.KeyManagementClient
	projectID string
	location  string
	keyRing   string
	timeout   time.Duration

	mu    sync.Mutex
	kekID string
}

// NewGCPKmsAdapter creates an adapter bound to one key ring; kekID names the
// crypto key within that ring used for new wraps.
func NewGCPKmsAdapter(
	ctx context.Context,
	projectID, location, keyRing, kekID string,
	timeout time.Duration,
) (*GCPKmsAdapter, error) {
	client, err := kms.NewKeyManagementClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloud kms client: %w", err)
	}

	return &GCPKmsAdapter{
		client:    client,
		projectID: projectID,
		location:  location,
		keyRing:   keyRing,
		timeout:   timeout,
		kekID:     kekID,
	}, nil
}

// keyName builds the full Cloud KMS resource name for a KEK id.
func (a *GCPKmsAdapter) keyName(kekID string) string {
	return fmt.Sprintf(
		"projects/%s/locations/%s/keyRings/%s/cryptoKeys/%s",
		a.projectID, a.location, a.keyRing, kekID,
	)
}

// WrapDek wraps a plaintext DEK under the current KEK.
func (a *GCPKmsAdapter) WrapDek(
	ctx context.Context,
	plaintextKey []byte,
) ([]byte, string, error) {
	if len(plaintextKey) != cryptoDomain.KeySize {
		return nil, "", cryptoDomain.ErrInvalidKeySize
	}

	kekID := a.CurrentKekID()

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.client.Encrypt(callCtx, &kmspb.EncryptRequest{
		Name:            a.keyName(kekID),
		Plaintext:       plaintextKey,
		PlaintextCrc32C: wrapperspb.Int64(crc32c(plaintextKey)),
	})
	if err != nil {
		return nil, "", transportError(err, "kms encrypt")
	}
	if err := verifyEncryptIntegrity(resp); err != nil {
		return nil, "", err
	}

	return resp.Ciphertext, kekID, nil
}

// UnwrapDek unwraps a DEK under the named KEK.
func (a *GCPKmsAdapter) UnwrapDek(
	ctx context.Context,
	wrappedKey []byte,
	kekID string,
) ([]byte, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.client.Decrypt(callCtx, &kmspb.DecryptRequest{
		Name:             a.keyName(kekID),
		Ciphertext:       wrappedKey,
		CiphertextCrc32C: wrapperspb.Int64(crc32c(wrappedKey)),
	})
	if err != nil {
		return nil, transportError(err, "kms decrypt")
	}
	if err := verifyDecryptIntegrity(resp); err != nil {
		cryptoDomain.Zero(resp.Plaintext)
		return nil, err
	}

	return resp.Plaintext, nil
}

// ReencryptDek rewraps a DEK from oldKekID to newKekID via unwrap and wrap.
// The intermediate plaintext key is zeroed before returning.
func (a *GCPKmsAdapter) ReencryptDek(
	ctx context.Context,
	wrappedKey []byte,
	oldKekID, newKekID string,
) ([]byte, error) {
	key, err := a.UnwrapDek(ctx, wrappedKey, oldKekID)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(key)

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.client.Encrypt(callCtx, &kmspb.EncryptRequest{
		Name:            a.keyName(newKekID),
		Plaintext:       key,
		PlaintextCrc32C: wrapperspb.Int64(crc32c(key)),
	})
	if err != nil {
		return nil, transportError(err, "kms encrypt")
	}
	if err := verifyEncryptIntegrity(resp); err != nil {
		return nil, err
	}

	return resp.Ciphertext, nil
}

// CurrentKekID returns the crypto key id used for new wraps.
func (a *GCPKmsAdapter) CurrentKekID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.kekID
}

// RotateTo switches the crypto key id used for new wraps.
func (a *GCPKmsAdapter) RotateTo(kekID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.kekID = kekID
}

// Close releases the underlying client connection.
func (a *GCPKmsAdapter) Close() error {
	return a.client.Close()
}

// verifyEncryptIntegrity checks the end-to-end CRC confirmation on an Encrypt
// response: the server must confirm it saw the plaintext CRC we sent, and the
// ciphertext CRC it returned must match a locally recomputed one.
func verifyEncryptIntegrity(resp *kmspb.EncryptResponse) error {
	if !resp.VerifiedPlaintextCrc32C {
		return apperrors.Wrap(apperrors.ErrTransportCorruption, "kms did not verify plaintext crc")
	}
	if resp.CiphertextCrc32C == nil || crc32c(resp.Ciphertext) != resp.CiphertextCrc32C.Value {
		return apperrors.Wrap(apperrors.ErrTransportCorruption, "kms ciphertext crc mismatch")
	}
	return nil
}

// verifyDecryptIntegrity checks the returned plaintext against the CRC the
// server computed for it.
func verifyDecryptIntegrity(resp *kmspb.DecryptResponse) error {
	if resp.PlaintextCrc32C == nil || crc32c(resp.Plaintext) != resp.PlaintextCrc32C.Value {
		return apperrors.Wrap(apperrors.ErrTransportCorruption, "kms plaintext crc mismatch")
	}
	return nil
}

// transportError classifies Cloud KMS failures into the transport taxonomy.
func transportError(err error, operation string) error {
	if errors.Is(err, context.DeadlineExceeded) || status.Code(err) == codes.DeadlineExceeded {
		return apperrors.Wrap(apperrors.ErrTransportTimeout, operation)
	}
	return apperrors.Wrap(err, operation)
}

// Package usecase implements the business logic for DEK lifecycle management:
// loading the keyring at startup, creating and deleting DEKs, and rotating the
// KEK that protects them.
package usecase

import (
	"context"

	cryptoDomain "github.com/keywarden/keywarden/internal/crypto/domain"
)

// DekRepository defines the interface for DEK persistence.
//
// Implementations support transaction-aware operations through context
// propagation (via database.GetTx), so rotation updates can run atomically
// per row.
//
// Available implementations:
//   - PostgreSQLDekRepository: SERIAL ids and BYTEA wrapped keys
//   - MySQLDekRepository: AUTO_INCREMENT ids and BLOB wrapped keys
type DekRepository interface {
	// Create stores a new DEK and fills in its generated id.
	Create(ctx context.Context, dek *cryptoDomain.Dek) error

	// Get retrieves a DEK by its id. Returns ErrDekNotFound if missing.
	Get(ctx context.Context, dekID uint32) (*cryptoDomain.Dek, error)

	// GetByName retrieves a DEK by its unique name.
	GetByName(ctx context.Context, name string) (*cryptoDomain.Dek, error)

	// List retrieves all DEKs ordered by id ascending.
	List(ctx context.Context) ([]*cryptoDomain.Dek, error)

	// Update persists new wrapped key material, KEK reference and version.
	Update(ctx context.Context, dek *cryptoDomain.Dek) error

	// Delete removes a DEK by its id.
	Delete(ctx context.Context, dekID uint32) error
}

// SecretCounter reports how many secrets reference a DEK. Implemented by the
// secrets repository; used to refuse deleting a DEK that still protects data.
type SecretCounter interface {
	CountByDekID(ctx context.Context, dekID uint32) (int64, error)
}

// DekUseCase orchestrates the DEK lifecycle.
//
// Plaintext DEKs exist only inside the in-memory keyring; everything that
// leaves this layer is wrapped by the KMS adapter. LoadKeyring must succeed
// before the service accepts traffic: a DEK that cannot be unwrapped means
// secrets that cannot be decrypted.
type DekUseCase interface {
	// LoadKeyring unwraps every persisted DEK into the in-memory keyring and
	// points the default at the newest active DEK. Fails fast on the first
	// DEK that cannot be unwrapped.
	LoadKeyring(ctx context.Context) error

	// Create generates a fresh DEK, wraps it under the current KEK, persists
	// it and makes it the default for new encryptions.
	Create(ctx context.Context, name string) (*cryptoDomain.Dek, error)

	// Get retrieves a DEK record by id.
	Get(ctx context.Context, dekID uint32) (*cryptoDomain.Dek, error)

	// List retrieves all DEK records.
	List(ctx context.Context) ([]*cryptoDomain.Dek, error)

	// Delete removes a DEK that no secret references and that is not the
	// current default. Returns ErrDekInUse otherwise.
	Delete(ctx context.Context, dekID uint32) error

	// RotateKek rewraps DEKs under the named KEK. When oldKekID is non-empty
	// only rows currently wrapped under it are considered. Rows already
	// wrapped under newKekID are skipped, so an interrupted rotation can be
	// re-run. Per-row failures are collected in the result instead of
	// aborting the batch. After the batch the adapter wraps new DEKs under
	// newKekID.
	RotateKek(ctx context.Context, newKekID, oldKekID string) (*cryptoDomain.RotationResult, error)
}

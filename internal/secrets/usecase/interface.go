// Package usecase implements business logic orchestration for secret
// management: sealing values under the default DEK on write, opening and
// verifying packages on read, and opportunistic re-encryption of secrets
// that lag behind the current default DEK.
package usecase

import (
	"context"

	"github.com/google/uuid"

	secretsDomain "github.com/keywarden/keywarden/internal/secrets/domain"
)

// SecretRepository defines the interface for Secret persistence operations.
type SecretRepository interface {
	// Create inserts a new secret into the database.
	Create(ctx context.Context, secret *secretsDomain.Secret) error

	// Get retrieves a secret by ID.
	// Returns ErrSecretNotFound if the secret doesn't exist.
	Get(ctx context.Context, secretID uuid.UUID) (*secretsDomain.Secret, error)

	// GetByName retrieves a secret by its unique name.
	// Returns ErrSecretNotFound if the secret doesn't exist.
	GetByName(ctx context.Context, name string) (*secretsDomain.Secret, error)

	// List retrieves secrets ordered by name with pagination. Encrypted data
	// is not loaded.
	List(ctx context.Context, offset, limit int) ([]*secretsDomain.Secret, error)

	// Update persists a changed secret.
	// Returns ErrSecretNotFound if the secret doesn't exist.
	Update(ctx context.Context, secret *secretsDomain.Secret) error

	// Delete removes a secret by ID.
	// Returns ErrSecretNotFound if the secret doesn't exist.
	Delete(ctx context.Context, secretID uuid.UUID) error

	// CountByDekID returns the number of secrets sealed under the given DEK.
	CountByDekID(ctx context.Context, dekID uint32) (int64, error)
}

// FolderChecker verifies folder existence without importing the folders
// module wholesale.
type FolderChecker interface {
	// Exists reports whether a folder with the given ID exists.
	Exists(ctx context.Context, folderID uuid.UUID) (bool, error)
}

// SecretRotator schedules background re-encryption of secrets under the
// current default DEK. Enqueue never blocks and never fails the caller.
type SecretRotator interface {
	// Enqueue schedules a secret for re-encryption. Duplicate enqueues of a
	// secret already in flight coalesce; a full queue drops the request (the
	// next read re-triggers it).
	Enqueue(secretID uuid.UUID)

	// Close drains the queue and stops the workers.
	Close()
}

// CreateSecretInput carries the fields needed to create a secret.
type CreateSecretInput struct {
	Name     string
	Value    []byte
	FolderID *uuid.UUID
}

// UpdateSecretInput carries the fields needed to update a secret's value and
// placement.
type UpdateSecretInput struct {
	Value    []byte
	FolderID *uuid.UUID
}

// SecretUseCase defines the interface for secret lifecycle business logic.
type SecretUseCase interface {
	// Create seals the value under the current default DEK and persists the
	// secret. Returns ErrConflict if the name is taken.
	Create(ctx context.Context, input *CreateSecretInput) (*secretsDomain.Secret, error)

	// Get retrieves and decrypts a secret by UUID or unique name. When the
	// secret is sealed under an older DEK the plaintext is returned
	// immediately and a background re-encryption is scheduled.
	Get(ctx context.Context, idOrName string) (*secretsDomain.Secret, error)

	// List retrieves secret metadata (no values) with pagination.
	List(ctx context.Context, offset, limit int) ([]*secretsDomain.Secret, error)

	// Update reseals the secret with a new value under the current default DEK.
	Update(ctx context.Context, secretID uuid.UUID, input *UpdateSecretInput) (*secretsDomain.Secret, error)

	// Delete removes a secret.
	Delete(ctx context.Context, secretID uuid.UUID) error
}

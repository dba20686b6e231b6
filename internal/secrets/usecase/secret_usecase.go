package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	cryptoService "github.com/keywarden/keywarden/internal/crypto/service"
	"github.com/keywarden/keywarden/internal/database"
	apperrors "github.com/keywarden/keywarden/internal/errors"
	secretsDomain "github.com/keywarden/keywarden/internal/secrets/domain"
)

// secretUseCase implements SecretUseCase.
type secretUseCase struct {
	txManager     database.TxManager
	secretRepo    SecretRepository
	folderChecker FolderChecker
	envelope      *cryptoService.EnvelopeService
	keyring       *cryptoService.Keyring
	rotator       SecretRotator
}

// Create seals the value under the current default DEK and persists the secret.
func (s *secretUseCase) Create(
	ctx context.Context,
	input *CreateSecretInput,
) (*secretsDomain.Secret, error) {
	if _, err := s.secretRepo.GetByName(ctx, input.Name); err == nil {
		return nil, apperrors.Wrap(apperrors.ErrConflict, "secret name already exists")
	} else if !errors.Is(err, secretsDomain.ErrSecretNotFound) {
		return nil, err
	}

	if err := s.checkFolder(ctx, input.FolderID); err != nil {
		return nil, err
	}

	dekID := s.keyring.DefaultDekID()
	sealed, err := s.envelope.Seal(input.Value, dekID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	secret := &secretsDomain.Secret{
		ID:        uuid.Must(uuid.NewV7()),
		Name:      input.Name,
		Data:      sealed,
		DekID:     dekID,
		FolderID:  input.FolderID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.txManager.WithTx(ctx, func(txCtx context.Context) error {
		return s.secretRepo.Create(txCtx, secret)
	})
	if err != nil {
		return nil, err
	}

	return secret, nil
}

// Get retrieves and decrypts a secret by UUID or unique name.
//
// The row's dekId is passed to the envelope as the expected DEK, so a package
// whose header disagrees with the row fails instead of decrypting under the
// wrong key. When the secret lags behind the current default DEK, a background
// re-encryption is scheduled; the read itself is never delayed.
func (s *secretUseCase) Get(ctx context.Context, idOrName string) (*secretsDomain.Secret, error) {
	var secret *secretsDomain.Secret
	var err error

	if secretID, parseErr := uuid.Parse(idOrName); parseErr == nil {
		secret, err = s.secretRepo.Get(ctx, secretID)
	} else {
		secret, err = s.secretRepo.GetByName(ctx, idOrName)
	}
	if err != nil {
		return nil, err
	}

	plaintext, _, err := s.envelope.Open(secret.Data, &secret.DekID)
	if err != nil {
		return nil, err
	}
	secret.Plaintext = plaintext

	if secret.DekID != s.keyring.DefaultDekID() {
		s.rotator.Enqueue(secret.ID)
	}

	return secret, nil
}

// List retrieves secret metadata (no values) with pagination.
func (s *secretUseCase) List(
	ctx context.Context,
	offset, limit int,
) ([]*secretsDomain.Secret, error) {
	return s.secretRepo.List(ctx, offset, limit)
}

// Update reseals the secret with a new value under the current default DEK.
func (s *secretUseCase) Update(
	ctx context.Context,
	secretID uuid.UUID,
	input *UpdateSecretInput,
) (*secretsDomain.Secret, error) {
	secret, err := s.secretRepo.Get(ctx, secretID)
	if err != nil {
		return nil, err
	}

	if err := s.checkFolder(ctx, input.FolderID); err != nil {
		return nil, err
	}

	dekID := s.keyring.DefaultDekID()
	sealed, err := s.envelope.Seal(input.Value, dekID)
	if err != nil {
		return nil, err
	}

	secret.Data = sealed
	secret.DekID = dekID
	secret.FolderID = input.FolderID
	secret.UpdatedAt = time.Now().UTC()

	err = s.txManager.WithTx(ctx, func(txCtx context.Context) error {
		return s.secretRepo.Update(txCtx, secret)
	})
	if err != nil {
		return nil, err
	}

	return secret, nil
}

// Delete removes a secret.
func (s *secretUseCase) Delete(ctx context.Context, secretID uuid.UUID) error {
	return s.txManager.WithTx(ctx, func(txCtx context.Context) error {
		return s.secretRepo.Delete(txCtx, secretID)
	})
}

// checkFolder rejects references to folders that do not exist.
func (s *secretUseCase) checkFolder(ctx context.Context, folderID *uuid.UUID) error {
	if folderID == nil {
		return nil
	}
	ok, err := s.folderChecker.Exists(ctx, *folderID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.Wrap(apperrors.ErrNotFound, "folder not found")
	}
	return nil
}

// NewSecretUseCase creates a new SecretUseCase with the provided dependencies.
func NewSecretUseCase(
	txManager database.TxManager,
	secretRepo SecretRepository,
	folderChecker FolderChecker,
	envelope *cryptoService.EnvelopeService,
	keyring *cryptoService.Keyring,
	rotator SecretRotator,
) SecretUseCase {
	return &secretUseCase{
		txManager:     txManager,
		secretRepo:    secretRepo,
		folderChecker: folderChecker,
		envelope:      envelope,
		keyring:       keyring,
		rotator:       rotator,
	}
}

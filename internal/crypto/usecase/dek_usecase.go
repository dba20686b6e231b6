package usecase

import (
	"context"
	"log/slog"
	"time"

	cryptoDomain "github.com/keywarden/keywarden/internal/crypto/domain"
	cryptoService "github.com/keywarden/keywarden/internal/crypto/service"
	"github.com/keywarden/keywarden/internal/database"
	apperrors "github.com/keywarden/keywarden/internal/errors"
)

type dekUseCase struct {
	txManager     database.TxManager
	dekRepo       DekRepository
	secretCounter SecretCounter
	kmsAdapter    cryptoService.KmsAdapter
	keyring       *cryptoService.Keyring
}

// LoadKeyring unwraps every persisted DEK into the in-memory keyring.
//
// Any unwrap failure aborts the load: serving traffic with a partial keyring
// would turn decryption errors into apparent data loss.
func (d *dekUseCase) LoadKeyring(ctx context.Context) error {
	deks, err := d.dekRepo.List(ctx)
	if err != nil {
		return err
	}

	var defaultID uint32
	for _, dek := range deks {
		key, err := d.kmsAdapter.UnwrapDek(ctx, dek.WrappedKey, dek.KekID)
		if err != nil {
			return apperrors.Wrap(err, "failed to unwrap dek during keyring load")
		}
		d.keyring.Import(dek.ID, key)

		// The newest active DEK becomes the default for new encryptions.
		if dek.IsActive && dek.ID > defaultID {
			defaultID = dek.ID
		}
	}

	if defaultID > 0 {
		d.keyring.SetDefaultDekID(defaultID)
	}

	return nil
}

// Create generates a fresh DEK, wraps it under the current KEK and persists it.
// The new DEK becomes the default for subsequent encryptions.
func (d *dekUseCase) Create(ctx context.Context, name string) (*cryptoDomain.Dek, error) {
	if _, err := d.dekRepo.GetByName(ctx, name); err == nil {
		return nil, apperrors.Wrap(apperrors.ErrConflict, "dek name already exists")
	} else if !apperrors.Is(err, cryptoDomain.ErrDekNotFound) {
		return nil, err
	}

	key, err := cryptoService.GenerateRandomKey()
	if err != nil {
		return nil, err
	}

	wrapped, kekID, err := d.kmsAdapter.WrapDek(ctx, key)
	if err != nil {
		cryptoDomain.Zero(key)
		return nil, err
	}

	now := time.Now().UTC()
	dek := &cryptoDomain.Dek{
		Name:       name,
		WrappedKey: wrapped,
		KekID:      kekID,
		Version:    1,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := d.dekRepo.Create(ctx, dek); err != nil {
		cryptoDomain.Zero(key)
		return nil, err
	}

	// Import before repointing the default so the pointer always resolves.
	d.keyring.Import(dek.ID, key)
	d.keyring.SetDefaultDekID(dek.ID)

	return dek, nil
}

// Get retrieves a DEK record by id.
func (d *dekUseCase) Get(ctx context.Context, dekID uint32) (*cryptoDomain.Dek, error) {
	return d.dekRepo.Get(ctx, dekID)
}

// List retrieves all DEK records.
func (d *dekUseCase) List(ctx context.Context) ([]*cryptoDomain.Dek, error) {
	return d.dekRepo.List(ctx)
}

// Delete removes a DEK that no secret references and that is not the current
// default.
func (d *dekUseCase) Delete(ctx context.Context, dekID uint32) error {
	if dekID == d.keyring.DefaultDekID() {
		return apperrors.Wrap(apperrors.ErrConflict, "cannot delete the default dek")
	}

	if _, err := d.dekRepo.Get(ctx, dekID); err != nil {
		return err
	}

	count, err := d.secretCounter.CountByDekID(ctx, dekID)
	if err != nil {
		return err
	}
	if count > 0 {
		return cryptoDomain.ErrDekInUse
	}

	if err := d.dekRepo.Delete(ctx, dekID); err != nil {
		return err
	}

	d.keyring.Remove(dekID)
	return nil
}

// RotateKek rewraps DEKs under the named KEK.
//
// Each row is unwrap/rewrap/persisted independently inside its own
// transaction; a failure is recorded and the batch moves on. Rows already
// wrapped under newKekID are skipped, which makes an interrupted rotation safe
// to re-run. Before a row is persisted the new wrapped form is unwrapped once
// more: the re-derived plaintext proves the rewrap round-trips and refreshes
// the keyring entry. The key bytes themselves never change, only their
// wrapped form at rest does.
func (d *dekUseCase) RotateKek(
	ctx context.Context,
	newKekID, oldKekID string,
) (*cryptoDomain.RotationResult, error) {
	deks, err := d.dekRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	result := &cryptoDomain.RotationResult{}
	for _, dek := range deks {
		if dek.KekID == newKekID {
			continue
		}
		if oldKekID != "" && dek.KekID != oldKekID {
			continue
		}
		result.Total++

		rewrapped, err := d.kmsAdapter.ReencryptDek(ctx, dek.WrappedKey, dek.KekID, newKekID)
		if err != nil {
			slog.Error(
				"failed to rewrap dek",
				"dek_id", dek.ID,
				"old_kek_id", dek.KekID,
				"new_kek_id", newKekID,
				"error", err,
			)
			result.Failures = append(result.Failures, cryptoDomain.RotationFailure{
				DekID: dek.ID,
				Error: err.Error(),
			})
			continue
		}

		// A wrapped form that does not unwrap must never reach the database;
		// it would brick the DEK on the next keyring load.
		key, err := d.kmsAdapter.UnwrapDek(ctx, rewrapped, newKekID)
		if err != nil {
			slog.Error(
				"rewrapped dek failed round-trip unwrap",
				"dek_id", dek.ID,
				"new_kek_id", newKekID,
				"error", err,
			)
			result.Failures = append(result.Failures, cryptoDomain.RotationFailure{
				DekID: dek.ID,
				Error: err.Error(),
			})
			continue
		}

		dek.WrappedKey = rewrapped
		dek.KekID = newKekID
		dek.Version++
		dek.UpdatedAt = time.Now().UTC()

		err = d.txManager.WithTx(ctx, func(txCtx context.Context) error {
			return d.dekRepo.Update(txCtx, dek)
		})
		if err != nil {
			slog.Error("failed to persist rewrapped dek", "dek_id", dek.ID, "error", err)
			result.Failures = append(result.Failures, cryptoDomain.RotationFailure{
				DekID: dek.ID,
				Error: err.Error(),
			})
			cryptoDomain.Zero(key)
			continue
		}

		d.keyring.Import(dek.ID, key)
		result.Success++
	}

	// New DEKs wrap under the new KEK from here on, even if some rows failed;
	// a re-run of the rotation will pick those up.
	d.kmsAdapter.RotateTo(newKekID)

	return result, nil
}

// NewDekUseCase creates a new DekUseCase instance.
func NewDekUseCase(
	txManager database.TxManager,
	dekRepo DekRepository,
	secretCounter SecretCounter,
	kmsAdapter cryptoService.KmsAdapter,
	keyring *cryptoService.Keyring,
) DekUseCase {
	return &dekUseCase{
		txManager:     txManager,
		dekRepo:       dekRepo,
		secretCounter: secretCounter,
		kmsAdapter:    kmsAdapter,
		keyring:       keyring,
	}
}

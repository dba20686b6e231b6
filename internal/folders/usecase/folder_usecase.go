package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/keywarden/keywarden/internal/database"
	foldersDomain "github.com/keywarden/keywarden/internal/folders/domain"
)

// folderUseCase implements FolderUseCase.
type folderUseCase struct {
	txManager  database.TxManager
	folderRepo FolderRepository
}

// Create adds a folder under the given parent (nil for root level).
//
// The duplicate check and insert run in one transaction. PostgreSQL also
// carries partial unique indexes, but MySQL treats NULLs as distinct in
// unique indexes, so the root level depends on this check.
func (f *folderUseCase) Create(
	ctx context.Context,
	input *CreateFolderInput,
) (*foldersDomain.Folder, error) {
	if err := f.checkParent(ctx, input.ParentID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	folder := &foldersDomain.Folder{
		ID:        uuid.Must(uuid.NewV7()),
		Name:      input.Name,
		ParentID:  input.ParentID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := f.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if err := f.checkSiblingName(txCtx, input.Name, input.ParentID); err != nil {
			return err
		}
		return f.folderRepo.Create(txCtx, folder)
	})
	if err != nil {
		return nil, err
	}

	return folder, nil
}

// Get retrieves a folder by ID.
func (f *folderUseCase) Get(
	ctx context.Context,
	folderID uuid.UUID,
) (*foldersDomain.Folder, error) {
	return f.folderRepo.Get(ctx, folderID)
}

// List retrieves folders with pagination.
func (f *folderUseCase) List(
	ctx context.Context,
	offset, limit int,
) ([]*foldersDomain.Folder, error) {
	return f.folderRepo.List(ctx, offset, limit)
}

// Update renames or moves a folder.
func (f *folderUseCase) Update(
	ctx context.Context,
	folderID uuid.UUID,
	input *UpdateFolderInput,
) (*foldersDomain.Folder, error) {
	folder, err := f.folderRepo.Get(ctx, folderID)
	if err != nil {
		return nil, err
	}

	if err := f.checkParent(ctx, input.ParentID); err != nil {
		return nil, err
	}
	if input.ParentID != nil && *input.ParentID == folderID {
		return nil, foldersDomain.ErrFolderNotFound
	}

	folder.Name = input.Name
	folder.ParentID = input.ParentID
	folder.UpdatedAt = time.Now().UTC()

	err = f.txManager.WithTx(ctx, func(txCtx context.Context) error {
		existing, err := f.folderRepo.GetByNameAndParent(txCtx, input.Name, input.ParentID)
		if err == nil && existing.ID != folderID {
			return foldersDomain.ErrFolderNameTaken
		}
		if err != nil && !errors.Is(err, foldersDomain.ErrFolderNotFound) {
			return err
		}
		return f.folderRepo.Update(txCtx, folder)
	})
	if err != nil {
		return nil, err
	}

	return folder, nil
}

// Delete removes a folder along with its children and contained secrets.
func (f *folderUseCase) Delete(ctx context.Context, folderID uuid.UUID) error {
	return f.txManager.WithTx(ctx, func(txCtx context.Context) error {
		return f.folderRepo.Delete(txCtx, folderID)
	})
}

// checkParent rejects references to parents that do not exist.
func (f *folderUseCase) checkParent(ctx context.Context, parentID *uuid.UUID) error {
	if parentID == nil {
		return nil
	}
	ok, err := f.folderRepo.Exists(ctx, *parentID)
	if err != nil {
		return err
	}
	if !ok {
		return foldersDomain.ErrFolderNotFound
	}
	return nil
}

// checkSiblingName rejects names already taken under the same parent.
func (f *folderUseCase) checkSiblingName(
	ctx context.Context,
	name string,
	parentID *uuid.UUID,
) error {
	_, err := f.folderRepo.GetByNameAndParent(ctx, name, parentID)
	if err == nil {
		return foldersDomain.ErrFolderNameTaken
	}
	if !errors.Is(err, foldersDomain.ErrFolderNotFound) {
		return err
	}
	return nil
}

// NewFolderUseCase creates a new FolderUseCase with the provided dependencies.
func NewFolderUseCase(
	txManager database.TxManager,
	folderRepo FolderRepository,
) FolderUseCase {
	return &folderUseCase{
		txManager:  txManager,
		folderRepo: folderRepo,
	}
}

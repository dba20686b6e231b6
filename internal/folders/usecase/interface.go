// Package usecase implements business logic orchestration for folder
// organization. Sibling name uniqueness is checked here inside a transaction
// so both database backends behave the same at the root level.
package usecase

import (
	"context"

	"github.com/google/uuid"

	foldersDomain "github.com/keywarden/keywarden/internal/folders/domain"
)

// FolderRepository defines the interface for Folder persistence operations.
type FolderRepository interface {
	// Create inserts a new folder into the database.
	Create(ctx context.Context, folder *foldersDomain.Folder) error

	// Get retrieves a folder by ID.
	// Returns ErrFolderNotFound if the folder doesn't exist.
	Get(ctx context.Context, folderID uuid.UUID) (*foldersDomain.Folder, error)

	// GetByNameAndParent retrieves a folder by name under the given parent.
	// A nil parent means the root level.
	// Returns ErrFolderNotFound if the folder doesn't exist.
	GetByNameAndParent(ctx context.Context, name string, parentID *uuid.UUID) (*foldersDomain.Folder, error)

	// List retrieves folders ordered by name with pagination.
	List(ctx context.Context, offset, limit int) ([]*foldersDomain.Folder, error)

	// Update persists a changed folder.
	// Returns ErrFolderNotFound if the folder doesn't exist.
	Update(ctx context.Context, folder *foldersDomain.Folder) error

	// Delete removes a folder by ID. Children and contained secrets cascade.
	// Returns ErrFolderNotFound if the folder doesn't exist.
	Delete(ctx context.Context, folderID uuid.UUID) error

	// Exists reports whether a folder with the given ID exists.
	Exists(ctx context.Context, folderID uuid.UUID) (bool, error)
}

// CreateFolderInput carries the fields needed to create a folder.
type CreateFolderInput struct {
	Name     string
	ParentID *uuid.UUID
}

// UpdateFolderInput carries the fields needed to rename or move a folder.
type UpdateFolderInput struct {
	Name     string
	ParentID *uuid.UUID
}

// FolderUseCase defines the interface for folder lifecycle business logic.
type FolderUseCase interface {
	// Create adds a folder under the given parent (nil for root level).
	// Returns ErrFolderNotFound when the parent doesn't exist and
	// ErrFolderNameTaken when a sibling already carries the name.
	Create(ctx context.Context, input *CreateFolderInput) (*foldersDomain.Folder, error)

	// Get retrieves a folder by ID.
	Get(ctx context.Context, folderID uuid.UUID) (*foldersDomain.Folder, error)

	// List retrieves folders with pagination.
	List(ctx context.Context, offset, limit int) ([]*foldersDomain.Folder, error)

	// Update renames or moves a folder, enforcing sibling name uniqueness at
	// the target location.
	Update(ctx context.Context, folderID uuid.UUID, input *UpdateFolderInput) (*foldersDomain.Folder, error)

	// Delete removes a folder along with its children and contained secrets.
	Delete(ctx context.Context, folderID uuid.UUID) error
}

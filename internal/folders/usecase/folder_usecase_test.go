package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	foldersDomain "github.com/keywarden/keywarden/internal/folders/domain"
)

// fakeTxManager runs the function directly without a real transaction.
type fakeTxManager struct{}

func (fakeTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockFolderRepository struct {
	mock.Mock
}

func (m *mockFolderRepository) Create(ctx context.Context, folder *foldersDomain.Folder) error {
	args := m.Called(ctx, folder)
	return args.Error(0)
}

func (m *mockFolderRepository) Get(ctx context.Context, folderID uuid.UUID) (*foldersDomain.Folder, error) {
	args := m.Called(ctx, folderID)
	if folder := args.Get(0); folder != nil {
		return folder.(*foldersDomain.Folder), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFolderRepository) GetByNameAndParent(ctx context.Context, name string, parentID *uuid.UUID) (*foldersDomain.Folder, error) {
	args := m.Called(ctx, name, parentID)
	if folder := args.Get(0); folder != nil {
		return folder.(*foldersDomain.Folder), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFolderRepository) List(ctx context.Context, offset, limit int) ([]*foldersDomain.Folder, error) {
	args := m.Called(ctx, offset, limit)
	if folders := args.Get(0); folders != nil {
		return folders.([]*foldersDomain.Folder), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFolderRepository) Update(ctx context.Context, folder *foldersDomain.Folder) error {
	args := m.Called(ctx, folder)
	return args.Error(0)
}

func (m *mockFolderRepository) Delete(ctx context.Context, folderID uuid.UUID) error {
	args := m.Called(ctx, folderID)
	return args.Error(0)
}

func (m *mockFolderRepository) Exists(ctx context.Context, folderID uuid.UUID) (bool, error) {
	args := m.Called(ctx, folderID)
	return args.Bool(0), args.Error(1)
}

func existingFolder(name string, parentID *uuid.UUID) *foldersDomain.Folder {
	now := time.Now().UTC()
	return &foldersDomain.Folder{
		ID:        uuid.Must(uuid.NewV7()),
		Name:      name,
		ParentID:  parentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestFolderUseCase_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a root folder", func(t *testing.T) {
		repo := new(mockFolderRepository)
		repo.On("GetByNameAndParent", ctx, "prod", (*uuid.UUID)(nil)).
			Return(nil, foldersDomain.ErrFolderNotFound)
		repo.On("Create", ctx, mock.AnythingOfType("*domain.Folder")).Return(nil)

		uc := NewFolderUseCase(fakeTxManager{}, repo)
		folder, err := uc.Create(ctx, &CreateFolderInput{Name: "prod"})
		require.NoError(t, err)
		assert.Equal(t, "prod", folder.Name)
		assert.Nil(t, folder.ParentID)
		assert.NotEqual(t, uuid.Nil, folder.ID)
		repo.AssertExpectations(t)
	})

	t.Run("creates a nested folder", func(t *testing.T) {
		parentID := uuid.Must(uuid.NewV7())
		repo := new(mockFolderRepository)
		repo.On("Exists", ctx, parentID).Return(true, nil)
		repo.On("GetByNameAndParent", ctx, "databases", &parentID).
			Return(nil, foldersDomain.ErrFolderNotFound)
		repo.On("Create", ctx, mock.AnythingOfType("*domain.Folder")).Return(nil)

		uc := NewFolderUseCase(fakeTxManager{}, repo)
		folder, err := uc.Create(ctx, &CreateFolderInput{Name: "databases", ParentID: &parentID})
		require.NoError(t, err)
		require.NotNil(t, folder.ParentID)
		assert.Equal(t, parentID, *folder.ParentID)
		repo.AssertExpectations(t)
	})

	t.Run("rejects a missing parent", func(t *testing.T) {
		parentID := uuid.Must(uuid.NewV7())
		repo := new(mockFolderRepository)
		repo.On("Exists", ctx, parentID).Return(false, nil)

		uc := NewFolderUseCase(fakeTxManager{}, repo)
		_, err := uc.Create(ctx, &CreateFolderInput{Name: "databases", ParentID: &parentID})
		assert.ErrorIs(t, err, foldersDomain.ErrFolderNotFound)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects a duplicate sibling name", func(t *testing.T) {
		repo := new(mockFolderRepository)
		repo.On("GetByNameAndParent", ctx, "prod", (*uuid.UUID)(nil)).
			Return(existingFolder("prod", nil), nil)

		uc := NewFolderUseCase(fakeTxManager{}, repo)
		_, err := uc.Create(ctx, &CreateFolderInput{Name: "prod"})
		assert.ErrorIs(t, err, foldersDomain.ErrFolderNameTaken)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestFolderUseCase_Get(t *testing.T) {
	ctx := context.Background()
	folder := existingFolder("prod", nil)

	repo := new(mockFolderRepository)
	repo.On("Get", ctx, folder.ID).Return(folder, nil)

	uc := NewFolderUseCase(fakeTxManager{}, repo)
	read, err := uc.Get(ctx, folder.ID)
	require.NoError(t, err)
	assert.Equal(t, folder, read)

	t.Run("not found", func(t *testing.T) {
		missing := uuid.Must(uuid.NewV7())
		repo.On("Get", ctx, missing).Return(nil, foldersDomain.ErrFolderNotFound)
		_, err := uc.Get(ctx, missing)
		assert.ErrorIs(t, err, foldersDomain.ErrFolderNotFound)
	})
}

func TestFolderUseCase_List(t *testing.T) {
	ctx := context.Background()
	folders := []*foldersDomain.Folder{
		existingFolder("prod", nil),
		existingFolder("staging", nil),
	}

	repo := new(mockFolderRepository)
	repo.On("List", ctx, 0, 50).Return(folders, nil)

	uc := NewFolderUseCase(fakeTxManager{}, repo)
	listed, err := uc.List(ctx, 0, 50)
	require.NoError(t, err)
	assert.Equal(t, folders, listed)
}

func TestFolderUseCase_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("renames in place", func(t *testing.T) {
		folder := existingFolder("prod", nil)
		repo := new(mockFolderRepository)
		repo.On("Get", ctx, folder.ID).Return(folder, nil)
		repo.On("GetByNameAndParent", ctx, "production", (*uuid.UUID)(nil)).
			Return(nil, foldersDomain.ErrFolderNotFound)
		repo.On("Update", ctx, mock.AnythingOfType("*domain.Folder")).Return(nil)

		uc := NewFolderUseCase(fakeTxManager{}, repo)
		updated, err := uc.Update(ctx, folder.ID, &UpdateFolderInput{Name: "production"})
		require.NoError(t, err)
		assert.Equal(t, "production", updated.Name)
		repo.AssertExpectations(t)
	})

	t.Run("keeping the own name is allowed", func(t *testing.T) {
		folder := existingFolder("prod", nil)
		repo := new(mockFolderRepository)
		repo.On("Get", ctx, folder.ID).Return(folder, nil)
		repo.On("GetByNameAndParent", ctx, "prod", (*uuid.UUID)(nil)).Return(folder, nil)
		repo.On("Update", ctx, mock.AnythingOfType("*domain.Folder")).Return(nil)

		uc := NewFolderUseCase(fakeTxManager{}, repo)
		_, err := uc.Update(ctx, folder.ID, &UpdateFolderInput{Name: "prod"})
		assert.NoError(t, err)
	})

	t.Run("rejects a taken sibling name", func(t *testing.T) {
		folder := existingFolder("prod", nil)
		repo := new(mockFolderRepository)
		repo.On("Get", ctx, folder.ID).Return(folder, nil)
		repo.On("GetByNameAndParent", ctx, "staging", (*uuid.UUID)(nil)).
			Return(existingFolder("staging", nil), nil)

		uc := NewFolderUseCase(fakeTxManager{}, repo)
		_, err := uc.Update(ctx, folder.ID, &UpdateFolderInput{Name: "staging"})
		assert.ErrorIs(t, err, foldersDomain.ErrFolderNameTaken)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("rejects moving under itself", func(t *testing.T) {
		folder := existingFolder("prod", nil)
		repo := new(mockFolderRepository)
		repo.On("Get", ctx, folder.ID).Return(folder, nil)
		repo.On("Exists", ctx, folder.ID).Return(true, nil)

		uc := NewFolderUseCase(fakeTxManager{}, repo)
		_, err := uc.Update(ctx, folder.ID, &UpdateFolderInput{Name: "prod", ParentID: &folder.ID})
		assert.ErrorIs(t, err, foldersDomain.ErrFolderNotFound)
	})
}

func TestFolderUseCase_Delete(t *testing.T) {
	ctx := context.Background()
	folderID := uuid.Must(uuid.NewV7())

	repo := new(mockFolderRepository)
	repo.On("Delete", ctx, folderID).Return(nil)

	uc := NewFolderUseCase(fakeTxManager{}, repo)
	require.NoError(t, uc.Delete(ctx, folderID))
	repo.AssertExpectations(t)

	t.Run("not found", func(t *testing.T) {
		missing := uuid.Must(uuid.NewV7())
		repo.On("Delete", ctx, missing).Return(foldersDomain.ErrFolderNotFound)
		assert.ErrorIs(t, uc.Delete(ctx, missing), foldersDomain.ErrFolderNotFound)
	})
}

package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/keywarden/keywarden/internal/crypto/domain"
	cryptoService "github.com/keywarden/keywarden/internal/crypto/service"
	apperrors "github.com/keywarden/keywarden/internal/errors"
	secretsDomain "github.com/keywarden/keywarden/internal/secrets/domain"
)

// fakeTxManager runs the function directly without a real transaction.
type fakeTxManager struct{}

func (fakeTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockSecretRepository struct {
	mock.Mock
}

func (m *mockSecretRepository) Create(ctx context.Context, secret *secretsDomain.Secret) error {
	args := m.Called(ctx, secret)
	return args.Error(0)
}

func (m *mockSecretRepository) Get(ctx context.Context, secretID uuid.UUID) (*secretsDomain.Secret, error) {
	args := m.Called(ctx, secretID)
	if secret := args.Get(0); secret != nil {
		return secret.(*secretsDomain.Secret), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSecretRepository) GetByName(ctx context.Context, name string) (*secretsDomain.Secret, error) {
	args := m.Called(ctx, name)
	if secret := args.Get(0); secret != nil {
		return secret.(*secretsDomain.Secret), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSecretRepository) List(ctx context.Context, offset, limit int) ([]*secretsDomain.Secret, error) {
	args := m.Called(ctx, offset, limit)
	if secrets := args.Get(0); secrets != nil {
		return secrets.([]*secretsDomain.Secret), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSecretRepository) Update(ctx context.Context, secret *secretsDomain.Secret) error {
	args := m.Called(ctx, secret)
	return args.Error(0)
}

func (m *mockSecretRepository) Delete(ctx context.Context, secretID uuid.UUID) error {
	args := m.Called(ctx, secretID)
	return args.Error(0)
}

func (m *mockSecretRepository) CountByDekID(ctx context.Context, dekID uint32) (int64, error) {
	args := m.Called(ctx, dekID)
	return args.Get(0).(int64), args.Error(1)
}

// fakeFolderChecker reports a fixed set of existing folders.
type fakeFolderChecker struct {
	existing map[uuid.UUID]bool
}

func (f *fakeFolderChecker) Exists(ctx context.Context, folderID uuid.UUID) (bool, error) {
	return f.existing[folderID], nil
}

// recordingRotator captures enqueued secret ids.
type recordingRotator struct {
	enqueued []uuid.UUID
}

func (r *recordingRotator) Enqueue(secretID uuid.UUID) {
	r.enqueued = append(r.enqueued, secretID)
}

func (r *recordingRotator) Close() {}

// newTestEnvelope builds a keyring holding the given DEK ids (highest id is
// the default) and an envelope service over it.
func newTestEnvelope(t *testing.T, dekIDs ...uint32) (*cryptoService.EnvelopeService, *cryptoService.Keyring) {
	t.Helper()

	keyring := cryptoService.NewKeyring()
	for _, dekID := range dekIDs {
		key, err := cryptoService.GenerateRandomKey()
		require.NoError(t, err)
		keyring.Import(dekID, key)
		keyring.SetDefaultDekID(dekID)
	}

	return cryptoService.NewEnvelope(keyring, cryptoService.NewAEADManager()), keyring
}

func newTestSecretUseCase(
	t *testing.T,
	repo SecretRepository,
	folders *fakeFolderChecker,
	rotator SecretRotator,
	dekIDs ...uint32,
) (SecretUseCase, *cryptoService.Keyring, *cryptoService.EnvelopeService) {
	t.Helper()

	envelope, keyring := newTestEnvelope(t, dekIDs...)
	if folders == nil {
		folders = &fakeFolderChecker{existing: map[uuid.UUID]bool{}}
	}
	uc := NewSecretUseCase(fakeTxManager{}, repo, folders, envelope, keyring, rotator)
	return uc, keyring, envelope
}

func TestSecretUseCase_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("seals under the default dek", func(t *testing.T) {
		repo := new(mockSecretRepository)
		uc, _, envelope := newTestSecretUseCase(t, repo, nil, &recordingRotator{}, 1, 2)

		repo.On("GetByName", ctx, "db-password").Return(nil, secretsDomain.ErrSecretNotFound)
		repo.On("Create", ctx, mock.AnythingOfType("*domain.Secret")).Return(nil)

		secret, err := uc.Create(ctx, &CreateSecretInput{
			Name:  "db-password",
			Value: []byte("hunter2!"),
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, secret.ID)
		assert.EqualValues(t, 2, secret.DekID, "must use the default dek")

		plaintext, header, err := envelope.Open(secret.Data, &secret.DekID)
		require.NoError(t, err)
		assert.Equal(t, []byte("hunter2!"), plaintext)
		assert.Equal(t, secret.DekID, header.DekID)
		repo.AssertExpectations(t)
	})

	t.Run("duplicate name", func(t *testing.T) {
		repo := new(mockSecretRepository)
		uc, _, _ := newTestSecretUseCase(t, repo, nil, &recordingRotator{}, 1)

		repo.On("GetByName", ctx, "taken").Return(&secretsDomain.Secret{Name: "taken"}, nil)

		_, err := uc.Create(ctx, &CreateSecretInput{Name: "taken", Value: []byte("hunter2!")})
		assert.ErrorIs(t, err, apperrors.ErrConflict)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("missing folder", func(t *testing.T) {
		repo := new(mockSecretRepository)
		folders := &fakeFolderChecker{existing: map[uuid.UUID]bool{}}
		uc, _, _ := newTestSecretUseCase(t, repo, folders, &recordingRotator{}, 1)

		repo.On("GetByName", ctx, "orphan").Return(nil, secretsDomain.ErrSecretNotFound)

		ghostFolder := uuid.New()
		_, err := uc.Create(ctx, &CreateSecretInput{
			Name:     "orphan",
			Value:    []byte("hunter2!"),
			FolderID: &ghostFolder,
		})
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("existing folder", func(t *testing.T) {
		repo := new(mockSecretRepository)
		folderID := uuid.New()
		folders := &fakeFolderChecker{existing: map[uuid.UUID]bool{folderID: true}}
		uc, _, _ := newTestSecretUseCase(t, repo, folders, &recordingRotator{}, 1)

		repo.On("GetByName", ctx, "placed").Return(nil, secretsDomain.ErrSecretNotFound)
		repo.On("Create", ctx, mock.AnythingOfType("*domain.Secret")).Return(nil)

		secret, err := uc.Create(ctx, &CreateSecretInput{
			Name:     "placed",
			Value:    []byte("hunter2!"),
			FolderID: &folderID,
		})
		require.NoError(t, err)
		require.NotNil(t, secret.FolderID)
		assert.Equal(t, folderID, *secret.FolderID)
	})
}

func TestSecretUseCase_Get(t *testing.T) {
	ctx := context.Background()

	sealedSecret := func(t *testing.T, envelope *cryptoService.EnvelopeService, name string, dekID uint32, value []byte) *secretsDomain.Secret {
		t.Helper()
		sealed, err := envelope.Seal(value, dekID)
		require.NoError(t, err)
		return &secretsDomain.Secret{
			ID:    uuid.Must(uuid.NewV7()),
			Name:  name,
			Data:  sealed,
			DekID: dekID,
		}
	}

	t.Run("by name returns plaintext", func(t *testing.T) {
		repo := new(mockSecretRepository)
		rotator := &recordingRotator{}
		uc, _, envelope := newTestSecretUseCase(t, repo, nil, rotator, 1)
		secret := sealedSecret(t, envelope, "db-password", 1, []byte("hunter2!"))

		repo.On("GetByName", ctx, "db-password").Return(secret, nil)

		read, err := uc.Get(ctx, "db-password")
		require.NoError(t, err)
		assert.Equal(t, []byte("hunter2!"), read.Plaintext)
		assert.Empty(t, rotator.enqueued, "current dek needs no rotation")
	})

	t.Run("by uuid", func(t *testing.T) {
		repo := new(mockSecretRepository)
		uc, _, envelope := newTestSecretUseCase(t, repo, nil, &recordingRotator{}, 1)
		secret := sealedSecret(t, envelope, "db-password", 1, []byte("hunter2!"))

		repo.On("Get", ctx, secret.ID).Return(secret, nil)

		read, err := uc.Get(ctx, secret.ID.String())
		require.NoError(t, err)
		assert.Equal(t, []byte("hunter2!"), read.Plaintext)
	})

	t.Run("stale dek schedules rotation but returns immediately", func(t *testing.T) {
		repo := new(mockSecretRepository)
		rotator := &recordingRotator{}
		uc, _, envelope := newTestSecretUseCase(t, repo, nil, rotator, 1, 2)
		secret := sealedSecret(t, envelope, "old-secret", 1, []byte("hunter2!"))

		repo.On("GetByName", ctx, "old-secret").Return(secret, nil)

		read, err := uc.Get(ctx, "old-secret")
		require.NoError(t, err)
		assert.Equal(t, []byte("hunter2!"), read.Plaintext)
		assert.Equal(t, []uuid.UUID{secret.ID}, rotator.enqueued)
	})

	t.Run("row and header dek mismatch fails", func(t *testing.T) {
		repo := new(mockSecretRepository)
		uc, _, envelope := newTestSecretUseCase(t, repo, nil, &recordingRotator{}, 1, 2)
		secret := sealedSecret(t, envelope, "tampered", 1, []byte("hunter2!"))
		secret.DekID = 2 // row disagrees with the package header

		repo.On("GetByName", ctx, "tampered").Return(secret, nil)

		_, err := uc.Get(ctx, "tampered")
		assert.ErrorIs(t, err, cryptoDomain.ErrDekMismatch)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(mockSecretRepository)
		uc, _, _ := newTestSecretUseCase(t, repo, nil, &recordingRotator{}, 1)

		repo.On("GetByName", ctx, "ghost").Return(nil, secretsDomain.ErrSecretNotFound)

		_, err := uc.Get(ctx, "ghost")
		assert.ErrorIs(t, err, secretsDomain.ErrSecretNotFound)
	})
}

func TestSecretUseCase_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("reseals under the current default", func(t *testing.T) {
		repo := new(mockSecretRepository)
		uc, _, envelope := newTestSecretUseCase(t, repo, nil, &recordingRotator{}, 1, 2)

		sealed, err := envelope.Seal([]byte("old-value"), 1)
		require.NoError(t, err)
		secret := &secretsDomain.Secret{
			ID:    uuid.Must(uuid.NewV7()),
			Name:  "rotating",
			Data:  sealed,
			DekID: 1,
		}

		repo.On("Get", ctx, secret.ID).Return(secret, nil)
		repo.On("Update", ctx, mock.AnythingOfType("*domain.Secret")).Return(nil)

		updated, err := uc.Update(ctx, secret.ID, &UpdateSecretInput{Value: []byte("new-value!")})
		require.NoError(t, err)
		assert.EqualValues(t, 2, updated.DekID)

		plaintext, _, err := envelope.Open(updated.Data, &updated.DekID)
		require.NoError(t, err)
		assert.Equal(t, []byte("new-value!"), plaintext)
	})

	t.Run("missing secret", func(t *testing.T) {
		repo := new(mockSecretRepository)
		uc, _, _ := newTestSecretUseCase(t, repo, nil, &recordingRotator{}, 1)
		secretID := uuid.New()

		repo.On("Get", ctx, secretID).Return(nil, secretsDomain.ErrSecretNotFound)

		_, err := uc.Update(ctx, secretID, &UpdateSecretInput{Value: []byte("new-value!")})
		assert.ErrorIs(t, err, secretsDomain.ErrSecretNotFound)
	})
}

func TestSecretUseCase_Delete(t *testing.T) {
	ctx := context.Background()
	repo := new(mockSecretRepository)
	uc, _, _ := newTestSecretUseCase(t, repo, nil, &recordingRotator{}, 1)

	secretID := uuid.New()
	repo.On("Delete", ctx, secretID).Return(nil)

	require.NoError(t, uc.Delete(ctx, secretID))
	repo.AssertExpectations(t)
}

func TestSecretUseCase_List(t *testing.T) {
	ctx := context.Background()
	repo := new(mockSecretRepository)
	uc, _, _ := newTestSecretUseCase(t, repo, nil, &recordingRotator{}, 1)

	expected := []*secretsDomain.Secret{
		{ID: uuid.New(), Name: "alpha", DekID: 1, CreatedAt: time.Now().UTC()},
		{ID: uuid.New(), Name: "beta", DekID: 1, CreatedAt: time.Now().UTC()},
	}
	repo.On("List", ctx, 0, 50).Return(expected, nil)

	secrets, err := uc.List(ctx, 0, 50)
	require.NoError(t, err)
	assert.Equal(t, expected, secrets)
}

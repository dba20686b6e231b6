package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	secretsDomain "github.com/keywarden/keywarden/internal/secrets/domain"
	"github.com/keywarden/keywarden/internal/testutil"
)

func TestMySQLSecretRepository_CreateAndGet(t *testing.T) {
	testutil.SkipIfNoMySQL(t)
	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLSecretRepository(db)
	ctx := context.Background()
	dekID := testutil.CreateTestDek(t, db, "mysql", "default")

	secret := newTestSecret("db-password", dekID)
	require.NoError(t, repo.Create(ctx, secret))

	read, err := repo.Get(ctx, secret.ID)
	require.NoError(t, err)
	assert.Equal(t, secret.ID, read.ID)
	assert.Equal(t, secret.Name, read.Name)
	assert.Equal(t, secret.Data, read.Data)
	assert.Equal(t, dekID, read.DekID)
	assert.Nil(t, read.FolderID)

	t.Run("not found", func(t *testing.T) {
		_, err := repo.Get(ctx, uuid.New())
		assert.ErrorIs(t, err, secretsDomain.ErrSecretNotFound)
	})
}

func TestMySQLSecretRepository_GetByName(t *testing.T) {
	testutil.SkipIfNoMySQL(t)
	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLSecretRepository(db)
	ctx := context.Background()
	dekID := testutil.CreateTestDek(t, db, "mysql", "default")

	secret := newTestSecret("api-key", dekID)
	require.NoError(t, repo.Create(ctx, secret))

	read, err := repo.GetByName(ctx, "api-key")
	require.NoError(t, err)
	assert.Equal(t, secret.ID, read.ID)

	_, err = repo.GetByName(ctx, "missing")
	assert.ErrorIs(t, err, secretsDomain.ErrSecretNotFound)
}

func TestMySQLSecretRepository_WithFolder(t *testing.T) {
	testutil.SkipIfNoMySQL(t)
	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLSecretRepository(db)
	ctx := context.Background()
	dekID := testutil.CreateTestDek(t, db, "mysql", "default")
	folderID := testutil.CreateTestFolder(t, db, "mysql", "prod", uuid.Nil)

	secret := newTestSecret("db-password", dekID)
	secret.FolderID = &folderID
	require.NoError(t, repo.Create(ctx, secret))

	read, err := repo.Get(ctx, secret.ID)
	require.NoError(t, err)
	require.NotNil(t, read.FolderID)
	assert.Equal(t, folderID, *read.FolderID)
}

func TestMySQLSecretRepository_Update(t *testing.T) {
	testutil.SkipIfNoMySQL(t)
	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLSecretRepository(db)
	ctx := context.Background()
	oldDekID := testutil.CreateTestDek(t, db, "mysql", "old")
	newDekID := testutil.CreateTestDek(t, db, "mysql", "new")

	secret := newTestSecret("rotating", oldDekID)
	require.NoError(t, repo.Create(ctx, secret))

	rotated := time.Now().UTC()
	secret.Data = []byte("resealed-package-bytes")
	secret.DekID = newDekID
	secret.LastRotation = &rotated
	secret.UpdatedAt = rotated
	require.NoError(t, repo.Update(ctx, secret))

	read, err := repo.Get(ctx, secret.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("resealed-package-bytes"), read.Data)
	assert.Equal(t, newDekID, read.DekID)
	require.NotNil(t, read.LastRotation)
}

func TestMySQLSecretRepository_DeleteAndCount(t *testing.T) {
	testutil.SkipIfNoMySQL(t)
	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLSecretRepository(db)
	ctx := context.Background()
	dekID := testutil.CreateTestDek(t, db, "mysql", "default")

	secret := newTestSecret("doomed", dekID)
	require.NoError(t, repo.Create(ctx, secret))

	count, err := repo.CountByDekID(ctx, dekID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	require.NoError(t, repo.Delete(ctx, secret.ID))

	_, err = repo.Get(ctx, secret.ID)
	assert.ErrorIs(t, err, secretsDomain.ErrSecretNotFound)

	count, err = repo.CountByDekID(ctx, dekID)
	require.NoError(t, err)
	assert.Zero(t, count)

	t.Run("missing row", func(t *testing.T) {
		assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), secretsDomain.ErrSecretNotFound)
	})
}

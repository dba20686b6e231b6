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

func newTestSecret(name string, dekID uint32) *secretsDomain.Secret {
	now := time.Now().UTC()
	return &secretsDomain.Secret{
		ID:        uuid.Must(uuid.NewV7()),
		Name:      name,
		Data:      []byte("encrypted-package-bytes"),
		DekID:     dekID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestPostgreSQLSecretRepository_CreateAndGet(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLSecretRepository(db)
	ctx := context.Background()
	dekID := testutil.CreateTestDek(t, db, "postgres", "default")

	secret := newTestSecret("db-password", dekID)
	require.NoError(t, repo.Create(ctx, secret))

	read, err := repo.Get(ctx, secret.ID)
	require.NoError(t, err)
	assert.Equal(t, secret.ID, read.ID)
	assert.Equal(t, secret.Name, read.Name)
	assert.Equal(t, secret.Data, read.Data)
	assert.Equal(t, dekID, read.DekID)
	assert.Nil(t, read.FolderID)
	assert.Nil(t, read.LastRotation)

	t.Run("not found", func(t *testing.T) {
		_, err := repo.Get(ctx, uuid.New())
		assert.ErrorIs(t, err, secretsDomain.ErrSecretNotFound)
	})
}

func TestPostgreSQLSecretRepository_GetByName(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLSecretRepository(db)
	ctx := context.Background()
	dekID := testutil.CreateTestDek(t, db, "postgres", "default")

	secret := newTestSecret("api-key", dekID)
	require.NoError(t, repo.Create(ctx, secret))

	read, err := repo.GetByName(ctx, "api-key")
	require.NoError(t, err)
	assert.Equal(t, secret.ID, read.ID)

	_, err = repo.GetByName(ctx, "missing")
	assert.ErrorIs(t, err, secretsDomain.ErrSecretNotFound)
}

func TestPostgreSQLSecretRepository_WithFolder(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLSecretRepository(db)
	ctx := context.Background()
	dekID := testutil.CreateTestDek(t, db, "postgres", "default")
	folderID := testutil.CreateTestFolder(t, db, "postgres", "prod", uuid.Nil)

	secret := newTestSecret("db-password", dekID)
	secret.FolderID = &folderID
	require.NoError(t, repo.Create(ctx, secret))

	read, err := repo.Get(ctx, secret.ID)
	require.NoError(t, err)
	require.NotNil(t, read.FolderID)
	assert.Equal(t, folderID, *read.FolderID)
}

func TestPostgreSQLSecretRepository_List(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLSecretRepository(db)
	ctx := context.Background()
	dekID := testutil.CreateTestDek(t, db, "postgres", "default")

	require.NoError(t, repo.Create(ctx, newTestSecret("beta", dekID)))
	require.NoError(t, repo.Create(ctx, newTestSecret("alpha", dekID)))

	secrets, err := repo.List(ctx, 0, 50)
	require.NoError(t, err)
	require.Len(t, secrets, 2)
	assert.Equal(t, "alpha", secrets[0].Name, "list must be ordered by name")
	assert.Nil(t, secrets[0].Data, "list must not load encrypted data")

	t.Run("pagination", func(t *testing.T) {
		page, err := repo.List(ctx, 1, 1)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, "beta", page[0].Name)
	})
}

func TestPostgreSQLSecretRepository_Update(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLSecretRepository(db)
	ctx := context.Background()
	oldDekID := testutil.CreateTestDek(t, db, "postgres", "old")
	newDekID := testutil.CreateTestDek(t, db, "postgres", "new")

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
	assert.WithinDuration(t, rotated, *read.LastRotation, time.Second)

	t.Run("missing row", func(t *testing.T) {
		missing := newTestSecret("ghost", oldDekID)
		assert.ErrorIs(t, repo.Update(ctx, missing), secretsDomain.ErrSecretNotFound)
	})
}

func TestPostgreSQLSecretRepository_Delete(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLSecretRepository(db)
	ctx := context.Background()
	dekID := testutil.CreateTestDek(t, db, "postgres", "default")

	secret := newTestSecret("doomed", dekID)
	require.NoError(t, repo.Create(ctx, secret))
	require.NoError(t, repo.Delete(ctx, secret.ID))

	_, err := repo.Get(ctx, secret.ID)
	assert.ErrorIs(t, err, secretsDomain.ErrSecretNotFound)

	t.Run("missing row", func(t *testing.T) {
		assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), secretsDomain.ErrSecretNotFound)
	})
}

func TestPostgreSQLSecretRepository_CountByDekID(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLSecretRepository(db)
	ctx := context.Background()
	usedDekID := testutil.CreateTestDek(t, db, "postgres", "used")
	emptyDekID := testutil.CreateTestDek(t, db, "postgres", "empty")

	require.NoError(t, repo.Create(ctx, newTestSecret("s1", usedDekID)))
	require.NoError(t, repo.Create(ctx, newTestSecret("s2", usedDekID)))

	count, err := repo.CountByDekID(ctx, usedDekID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	count, err = repo.CountByDekID(ctx, emptyDekID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

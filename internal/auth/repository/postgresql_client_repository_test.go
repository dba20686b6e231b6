package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/keywarden/keywarden/internal/auth/domain"
	"github.com/keywarden/keywarden/internal/testutil"
)

func newTestClient(name string) *authDomain.Client {
	now := time.Now().UTC()
	return &authDomain.Client{
		ID:           uuid.New(),
		Name:         name,
		HashedSecret: "argon2id-hash",
		IsActive:     true,
		Roles:        []string{"reader", "writer"},
		Permissions:  []string{"secrets:read"},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestPostgreSQLClientRepository_CreateAndGet(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLClientRepository(db)
	ctx := context.Background()

	client := newTestClient("service-a")
	require.NoError(t, repo.Create(ctx, client))

	read, err := repo.Get(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, client.ID, read.ID)
	assert.Equal(t, client.Name, read.Name)
	assert.Equal(t, client.HashedSecret, read.HashedSecret)
	assert.Equal(t, client.Roles, read.Roles)
	assert.Equal(t, client.Permissions, read.Permissions)
	assert.True(t, read.IsActive)
	assert.Nil(t, read.LastUsedAt)

	t.Run("not found", func(t *testing.T) {
		_, err := repo.Get(ctx, uuid.New())
		assert.ErrorIs(t, err, authDomain.ErrClientNotFound)
	})
}

func TestPostgreSQLClientRepository_GetByName(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLClientRepository(db)
	ctx := context.Background()

	client := newTestClient("service-b")
	require.NoError(t, repo.Create(ctx, client))

	read, err := repo.GetByName(ctx, "service-b")
	require.NoError(t, err)
	assert.Equal(t, client.ID, read.ID)

	_, err = repo.GetByName(ctx, "missing")
	assert.ErrorIs(t, err, authDomain.ErrClientNotFound)
}

func TestPostgreSQLClientRepository_UpdateLastUsed(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLClientRepository(db)
	ctx := context.Background()

	client := newTestClient("service-c")
	require.NoError(t, repo.Create(ctx, client))

	lastUsed := time.Now().UTC()
	require.NoError(t, repo.UpdateLastUsed(ctx, client.ID, lastUsed))

	read, err := repo.Get(ctx, client.ID)
	require.NoError(t, err)
	require.NotNil(t, read.LastUsedAt)
	assert.WithinDuration(t, lastUsed, *read.LastUsedAt, time.Second)
}

func TestPostgreSQLClientRepository_Deactivate(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLClientRepository(db)
	ctx := context.Background()

	client := newTestClient("service-d")
	require.NoError(t, repo.Create(ctx, client))
	require.NoError(t, repo.Deactivate(ctx, client.ID))

	read, err := repo.Get(ctx, client.ID)
	require.NoError(t, err)
	assert.False(t, read.IsActive)

	t.Run("missing row", func(t *testing.T) {
		assert.ErrorIs(t, repo.Deactivate(ctx, uuid.New()), authDomain.ErrClientNotFound)
	})
}

func TestPostgreSQLClientRepository_Count(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLClientRepository(db)
	ctx := context.Background()

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, repo.Create(ctx, newTestClient("service-e")))
	require.NoError(t, repo.Create(ctx, newTestClient("service-f")))

	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/keywarden/keywarden/internal/crypto/domain"
)

func newLocalAdapter(t *testing.T) *LocalKmsAdapter {
	t.Helper()
	kek := generateTestKey(t)
	adapter, err := NewLocalKmsAdapter(kek, "local-dev")
	require.NoError(t, err)
	return adapter
}

func TestNewLocalKmsAdapter(t *testing.T) {
	t.Run("valid kek", func(t *testing.T) {
		adapter := newLocalAdapter(t)
		assert.Equal(t, "local-dev", adapter.CurrentKekID())
	})

	t.Run("invalid kek size", func(t *testing.T) {
		_, err := NewLocalKmsAdapter(make([]byte, 16), "local-dev")
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize)
	})
}

func TestLocalKmsAdapter_WrapUnwrap(t *testing.T) {
	ctx := context.Background()
	adapter := newLocalAdapter(t)

	t.Run("round trip", func(t *testing.T) {
		dek := generateTestKey(t)

		wrapped, kekID, err := adapter.WrapDek(ctx, dek)
		require.NoError(t, err)
		assert.Equal(t, "local-dev", kekID)
		assert.NotEqual(t, dek, wrapped)

		unwrapped, err := adapter.UnwrapDek(ctx, wrapped, kekID)
		require.NoError(t, err)
		assert.Equal(t, dek, unwrapped)
	})

	t.Run("wrap rejects wrong key size", func(t *testing.T) {
		_, _, err := adapter.WrapDek(ctx, make([]byte, 31))
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize)
	})

	t.Run("unwrap rejects garbage", func(t *testing.T) {
		_, err := adapter.UnwrapDek(ctx, []byte("not a wrapped key at all"), "local-dev")
		assert.Error(t, err)
	})

	t.Run("unwrap with different kek fails", func(t *testing.T) {
		dek := generateTestKey(t)
		wrapped, _, err := adapter.WrapDek(ctx, dek)
		require.NoError(t, err)

		other := newLocalAdapter(t)
		_, err = other.UnwrapDek(ctx, wrapped, "local-dev")
		assert.Error(t, err)
	})
}

func TestLocalKmsAdapter_ReencryptDek(t *testing.T) {
	ctx := context.Background()
	adapter := newLocalAdapter(t)

	dek := generateTestKey(t)
	wrapped, kekID, err := adapter.WrapDek(ctx, dek)
	require.NoError(t, err)

	rewrapped, err := adapter.ReencryptDek(ctx, wrapped, kekID, "local-dev-2")
	require.NoError(t, err)
	assert.NotEqual(t, wrapped, rewrapped, "rewrap must refresh the nonce")

	unwrapped, err := adapter.UnwrapDek(ctx, rewrapped, "local-dev-2")
	require.NoError(t, err)
	assert.Equal(t, dek, unwrapped)
}

func TestLocalKmsAdapter_RotateTo(t *testing.T) {
	adapter := newLocalAdapter(t)
	adapter.RotateTo("local-dev-2")
	assert.Equal(t, "local-dev-2", adapter.CurrentKekID())

	wrapped, kekID, err := adapter.WrapDek(context.Background(), generateTestKey(t))
	require.NoError(t, err)
	assert.Equal(t, "local-dev-2", kekID)
	assert.NotEmpty(t, wrapped)
}

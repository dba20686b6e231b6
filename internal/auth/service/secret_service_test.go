package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecretService(t *testing.T) {
	svc := NewSecretService()

	t.Run("generate secret returns matching pair", func(t *testing.T) {
		plain, hashed, err := svc.GenerateSecret()
		require.NoError(t, err)
		assert.NotEmpty(t, plain)
		assert.NotEmpty(t, hashed)
		assert.NotEqual(t, plain, hashed)
		assert.True(t, svc.CompareSecret(plain, hashed))
	})

	t.Run("generated secrets are unique", func(t *testing.T) {
		first, _, err := svc.GenerateSecret()
		require.NoError(t, err)
		second, _, err := svc.GenerateSecret()
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})

	t.Run("hash and compare", func(t *testing.T) {
		hashed, err := svc.HashSecret("my-secret")
		require.NoError(t, err)
		assert.True(t, svc.CompareSecret("my-secret", hashed))
		assert.False(t, svc.CompareSecret("wrong-secret", hashed))
	})

	t.Run("compare with malformed hash", func(t *testing.T) {
		assert.False(t, svc.CompareSecret("my-secret", "not-a-valid-hash"))
	})
}

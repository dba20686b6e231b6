package service

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/keywarden/keywarden/internal/crypto/domain"
)

func TestAEADManagerService_CreateCipher(t *testing.T) {
	manager := NewAEADManager()
	validKey := make([]byte, 32)
	_, err := rand.Read(validKey)
	require.NoError(t, err)

	t.Run("aes-256-gcm is the live suite", func(t *testing.T) {
		cipher, err := manager.CreateCipher(validKey, cryptoDomain.AESGCM)
		require.NoError(t, err)
		require.IsType(t, &AESGCMCipher{}, cipher)

		// The returned cipher must round-trip.
		sealed, err := cipher.Encrypt([]byte("payload"), nil)
		require.NoError(t, err)
		opened, err := cipher.Decrypt(sealed, nil)
		require.NoError(t, err)
		assert.Equal(t, []byte("payload"), opened)
	})

	t.Run("rejections", func(t *testing.T) {
		tests := []struct {
			name string
			key  []byte
			alg  cryptoDomain.Algorithm
			want error
		}{
			{"unknown algorithm", validKey, cryptoDomain.Algorithm("xchacha20"), cryptoDomain.ErrUnsupportedAlgorithm},
			{"short key", make([]byte, 16), cryptoDomain.AESGCM, cryptoDomain.ErrInvalidKeySize},
			{"oversized key", make([]byte, 64), cryptoDomain.AESGCM, cryptoDomain.ErrInvalidKeySize},
			{"nil key", nil, cryptoDomain.AESGCM, cryptoDomain.ErrInvalidKeySize},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := manager.CreateCipher(tt.key, tt.alg)
				assert.ErrorIs(t, err, tt.want)
			})
		}
	})
}

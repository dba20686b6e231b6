package service

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/keywarden/keywarden/internal/crypto/domain"
	apperrors "github.com/keywarden/keywarden/internal/errors"
)

func TestEncodeDecodeHeader(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		header := cryptoDomain.Header{
			Alg:     cryptoDomain.AESGCM,
			Version: cryptoDomain.EnvelopeVersion,
			DekID:   42,
		}

		encoded := EncodeHeader(header)
		decoded, err := DecodeHeader(encoded)
		require.NoError(t, err)
		assert.Equal(t, header, decoded)
	})

	t.Run("encoding is canonical", func(t *testing.T) {
		header := cryptoDomain.Header{Alg: cryptoDomain.AESGCM, Version: 1, DekID: 7}

		first := EncodeHeader(header)
		decoded, err := DecodeHeader(first)
		require.NoError(t, err)

		// Re-serializing the decoded header must reproduce the exact bytes,
		// otherwise the AAD check on decrypt would not hold.
		assert.Equal(t, first, EncodeHeader(decoded))
	})

	t.Run("layout is big endian length prefixed", func(t *testing.T) {
		header := cryptoDomain.Header{Alg: cryptoDomain.AESGCM, Version: 1, DekID: 0x01020304}
		encoded := EncodeHeader(header)

		algLen := int(binary.BigEndian.Uint16(encoded))
		assert.Equal(t, len(cryptoDomain.AESGCM), algLen)
		assert.Equal(t, string(cryptoDomain.AESGCM), string(encoded[2:2+algLen]))
		assert.Equal(t, uint32(1), binary.BigEndian.Uint32(encoded[2+algLen:]))
		assert.Equal(t, uint32(0x01020304), binary.BigEndian.Uint32(encoded[2+algLen+4:]))
	})

	t.Run("truncated header", func(t *testing.T) {
		encoded := EncodeHeader(cryptoDomain.Header{Alg: cryptoDomain.AESGCM, Version: 1, DekID: 1})
		_, err := DecodeHeader(encoded[:len(encoded)-1])
		assert.ErrorIs(t, err, cryptoDomain.ErrMalformedEnvelope)
	})

	t.Run("trailing bytes rejected", func(t *testing.T) {
		encoded := EncodeHeader(cryptoDomain.Header{Alg: cryptoDomain.AESGCM, Version: 1, DekID: 1})
		_, err := DecodeHeader(append(encoded, 0x00))
		assert.ErrorIs(t, err, cryptoDomain.ErrMalformedEnvelope)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := DecodeHeader(nil)
		assert.ErrorIs(t, err, cryptoDomain.ErrMalformedEnvelope)
	})
}

func TestEncodeDecodePackage(t *testing.T) {
	pkg := cryptoDomain.Package{
		Header: cryptoDomain.Header{
			Alg:     cryptoDomain.AESGCM,
			Version: cryptoDomain.EnvelopeVersion,
			DekID:   9,
		},
		Payload: []byte{0xde, 0xad, 0xbe, 0xef},
	}

	t.Run("round trip", func(t *testing.T) {
		encoded := EncodePackage(pkg)
		decoded, err := DecodePackage(encoded)
		require.NoError(t, err)
		assert.Equal(t, pkg.Header, decoded.Header)
		assert.Equal(t, pkg.Payload, decoded.Payload)
	})

	t.Run("truncated payload", func(t *testing.T) {
		encoded := EncodePackage(pkg)
		_, err := DecodePackage(encoded[:len(encoded)-1])
		assert.ErrorIs(t, err, cryptoDomain.ErrMalformedEnvelope)
	})

	t.Run("trailing bytes rejected", func(t *testing.T) {
		encoded := EncodePackage(pkg)
		_, err := DecodePackage(append(encoded, 0x00))
		assert.ErrorIs(t, err, cryptoDomain.ErrMalformedEnvelope)
	})

	t.Run("truncated header length", func(t *testing.T) {
		_, err := DecodePackage([]byte{0x00})
		assert.ErrorIs(t, err, cryptoDomain.ErrMalformedEnvelope)
	})

	t.Run("header length exceeding input", func(t *testing.T) {
		_, err := DecodePackage([]byte{0xff, 0xff, 0x01, 0x02})
		assert.ErrorIs(t, err, cryptoDomain.ErrMalformedEnvelope)
	})
}

func newTestEnvelope(t *testing.T, dekIDs ...uint32) (*EnvelopeService, *Keyring) {
	t.Helper()
	keyring := NewKeyring()
	for _, id := range dekIDs {
		key, err := GenerateRandomKey()
		require.NoError(t, err)
		keyring.Import(id, key)
	}
	return NewEnvelope(keyring, NewAEADManager()), keyring
}

func TestEnvelopeService_SealOpen(t *testing.T) {
	envelope, _ := newTestEnvelope(t, 1, 2)

	t.Run("round trip", func(t *testing.T) {
		plaintext := []byte("database password")

		data, err := envelope.Seal(plaintext, 1)
		require.NoError(t, err)

		decrypted, header, err := envelope.Open(data, nil)
		require.NoError(t, err)
		assert.Equal(t, plaintext, decrypted)
		assert.Equal(t, cryptoDomain.AESGCM, header.Alg)
		assert.Equal(t, cryptoDomain.EnvelopeVersion, header.Version)
		assert.Equal(t, uint32(1), header.DekID)
	})

	t.Run("open with matching expected dek id", func(t *testing.T) {
		data, err := envelope.Seal([]byte("value"), 2)
		require.NoError(t, err)

		expected := uint32(2)
		decrypted, header, err := envelope.Open(data, &expected)
		require.NoError(t, err)
		assert.Equal(t, []byte("value"), decrypted)
		assert.Equal(t, uint32(2), header.DekID)
	})

	t.Run("seal with unknown dek", func(t *testing.T) {
		_, err := envelope.Seal([]byte("value"), 99)
		assert.ErrorIs(t, err, cryptoDomain.ErrDekNotFound)
	})
}

func TestEnvelopeService_OpenRejections(t *testing.T) {
	envelope, keyring := newTestEnvelope(t, 1)

	data, err := envelope.Seal([]byte("guarded"), 1)
	require.NoError(t, err)

	t.Run("dek id mismatch against record", func(t *testing.T) {
		expected := uint32(2)
		_, _, err := envelope.Open(data, &expected)
		assert.ErrorIs(t, err, cryptoDomain.ErrDekMismatch)
	})

	t.Run("unknown dek in header", func(t *testing.T) {
		key, ok := keyring.Get(1)
		require.True(t, ok)

		other := NewKeyring()
		other.Import(3, key)
		otherEnvelope := NewEnvelope(other, NewAEADManager())
		missing, err := otherEnvelope.Seal([]byte("x"), 3)
		require.NoError(t, err)

		_, _, err = envelope.Open(missing, nil)
		assert.ErrorIs(t, err, cryptoDomain.ErrDekNotFound)
	})

	t.Run("unsupported algorithm in header", func(t *testing.T) {
		pkg, err := DecodePackage(data)
		require.NoError(t, err)
		pkg.Header.Alg = cryptoDomain.Algorithm("XCHACHA20")

		_, _, err = envelope.Open(EncodePackage(pkg), nil)
		assert.ErrorIs(t, err, cryptoDomain.ErrUnsupportedAlgorithm)
	})

	t.Run("version from the future", func(t *testing.T) {
		pkg, err := DecodePackage(data)
		require.NoError(t, err)
		pkg.Header.Version = cryptoDomain.EnvelopeVersion + 1

		_, _, err = envelope.Open(EncodePackage(pkg), nil)
		assert.ErrorIs(t, err, cryptoDomain.ErrUnsupportedVersion)
	})

	t.Run("tampered header fails authentication", func(t *testing.T) {
		// Rewriting the dek id in the header invalidates the AAD even though
		// the target key exists in the keyring.
		key, ok := keyring.Get(1)
		require.True(t, ok)
		keyring.Import(2, key)

		pkg, err := DecodePackage(data)
		require.NoError(t, err)
		pkg.Header.DekID = 2

		_, _, err = envelope.Open(EncodePackage(pkg), nil)
		assert.ErrorIs(t, err, apperrors.ErrAuthenticationFailure)
	})

	t.Run("tampered payload fails authentication", func(t *testing.T) {
		pkg, err := DecodePackage(data)
		require.NoError(t, err)
		payload := make([]byte, len(pkg.Payload))
		copy(payload, pkg.Payload)
		payload[len(payload)-1] ^= 0x01
		pkg.Payload = payload

		_, _, err = envelope.Open(EncodePackage(pkg), nil)
		assert.ErrorIs(t, err, apperrors.ErrAuthenticationFailure)
	})

	t.Run("garbage input", func(t *testing.T) {
		_, _, err := envelope.Open([]byte("not an envelope"), nil)
		assert.ErrorIs(t, err, cryptoDomain.ErrMalformedEnvelope)
	})
}

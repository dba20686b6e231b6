package service

import (
	"encoding/binary"
	"fmt"

	cryptoDomain "github.com/keywarden/keywarden/internal/crypto/domain"
)

// Encrypted package wire layout. All integers are big-endian; lengths are
// explicit so the format is schema-less and self-delimiting:
//
//	u16 headerLen || header || u32 payloadLen || payload
//
// header:
//
//	u16 algLen || alg || u32 version || u32 dekId
//
// The encoding is canonical: identical logical values always produce identical
// bytes, which lets the decoder re-serialize the header to recover the exact
// AAD used at encryption time.

// EncodeHeader serializes a package header to its canonical byte form.
func EncodeHeader(h cryptoDomain.Header) []byte {
	alg := []byte(h.Alg)
	buf := make([]byte, 0, 2+len(alg)+4+4)
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(alg)))
	buf = append(buf, alg...)
	buf = binary.BigEndian.AppendUint32(buf, h.Version)
	buf = binary.BigEndian.AppendUint32(buf, h.DekID)
	return buf
}

// DecodeHeader parses a canonical header, rejecting trailing bytes.
func DecodeHeader(data []byte) (cryptoDomain.Header, error) {
	var h cryptoDomain.Header

	if len(data) < 2 {
		return h, cryptoDomain.ErrMalformedEnvelope
	}
	algLen := int(binary.BigEndian.Uint16(data))
	rest := data[2:]

	if len(rest) != algLen+8 {
		return h, cryptoDomain.ErrMalformedEnvelope
	}

	h.Alg = cryptoDomain.Algorithm(rest[:algLen])
	h.Version = binary.BigEndian.Uint32(rest[algLen:])
	h.DekID = binary.BigEndian.Uint32(rest[algLen+4:])
	return h, nil
}

// EncodePackage serializes an encrypted package.
func EncodePackage(pkg cryptoDomain.Package) []byte {
	header := EncodeHeader(pkg.Header)
	buf := make([]byte, 0, 2+len(header)+4+len(pkg.Payload))
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(header)))
	buf = append(buf, header...)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(pkg.Payload)))
	buf = append(buf, pkg.Payload...)
	return buf
}

// DecodePackage parses an encrypted package, rejecting trailing bytes.
func DecodePackage(data []byte) (cryptoDomain.Package, error) {
	var pkg cryptoDomain.Package

	if len(data) < 2 {
		return pkg, cryptoDomain.ErrMalformedEnvelope
	}
	headerLen := int(binary.BigEndian.Uint16(data))
	rest := data[2:]

	if len(rest) < headerLen+4 {
		return pkg, cryptoDomain.ErrMalformedEnvelope
	}
	header, err := DecodeHeader(rest[:headerLen])
	if err != nil {
		return pkg, err
	}
	rest = rest[headerLen:]

	payloadLen := int(binary.BigEndian.Uint32(rest))
	rest = rest[4:]
	if len(rest) != payloadLen {
		return pkg, cryptoDomain.ErrMalformedEnvelope
	}

	pkg.Header = header
	pkg.Payload = rest
	return pkg, nil
}

// EnvelopeService implements the Envelope interface over the DEK keyring.
type EnvelopeService struct {
	keyring     *Keyring
	aeadManager AEADManager
}

// NewEnvelope creates an envelope service backed by the given keyring.
func NewEnvelope(keyring *Keyring, aeadManager AEADManager) *EnvelopeService {
	return &EnvelopeService{
		keyring:     keyring,
		aeadManager: aeadManager,
	}
}

// Seal encrypts plaintext under the DEK named by dekID.
// The serialized header is the associated data, so the algorithm, version and
// DEK identity cannot be swapped without failing authentication.
func (e *EnvelopeService) Seal(plaintext []byte, dekID uint32) ([]byte, error) {
	key, ok := e.keyring.Get(dekID)
	if !ok {
		return nil, cryptoDomain.ErrDekNotFound
	}

	header := cryptoDomain.Header{
		Alg:     cryptoDomain.AESGCM,
		Version: cryptoDomain.EnvelopeVersion,
		DekID:   dekID,
	}
	headerBytes := EncodeHeader(header)

	cipher, err := e.aeadManager.CreateCipher(key, header.Alg)
	if err != nil {
		return nil, err
	}

	payload, err := cipher.Encrypt(plaintext, headerBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to seal payload: %w", err)
	}

	return EncodePackage(cryptoDomain.Package{Header: header, Payload: payload}), nil
}

// Open decodes and decrypts an encrypted package.
//
// Rejects unknown algorithms, forward-incompatible versions, and (when
// expectedDekID is set) a header naming a different DEK than the record that
// carried the package. The AAD is re-derived from the decoded header; the
// canonical encoding guarantees it is byte-identical to the bytes sealed over.
func (e *EnvelopeService) Open(
	data []byte,
	expectedDekID *uint32,
) ([]byte, cryptoDomain.Header, error) {
	pkg, err := DecodePackage(data)
	if err != nil {
		return nil, cryptoDomain.Header{}, err
	}
	header := pkg.Header

	if header.Alg != cryptoDomain.AESGCM {
		return nil, header, cryptoDomain.ErrUnsupportedAlgorithm
	}
	if header.Version > cryptoDomain.EnvelopeVersion {
		return nil, header, cryptoDomain.ErrUnsupportedVersion
	}
	if expectedDekID != nil && *expectedDekID != header.DekID {
		return nil, header, cryptoDomain.ErrDekMismatch
	}

	key, ok := e.keyring.Get(header.DekID)
	if !ok {
		return nil, header, cryptoDomain.ErrDekNotFound
	}

	cipher, err := e.aeadManager.CreateCipher(key, header.Alg)
	if err != nil {
		return nil, header, err
	}

	plaintext, err := cipher.Decrypt(pkg.Payload, EncodeHeader(header))
	if err != nil {
		return nil, header, err
	}

	return plaintext, header, nil
}

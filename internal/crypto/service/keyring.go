package service

import (
	"sync"
	"sync/atomic"

	cryptoDomain "github.com/keywarden/keywarden/internal/crypto/domain"
)

// Keyring is the in-memory catalogue of imported, ready-to-use DEKs plus the
// current default DEK pointer. DEKs are unwrapped once (at startup or on
// creation) and held here for the life of the process.
//
// Readers dominate: every encrypt and decrypt hits Get. Writers are startup
// load, DEK creation and KEK rotation refreshes. A DEK id observed from the
// default pointer is always resolvable in the cache, because Import happens
// before SetDefaultDekID on every write path.
type Keyring struct {
	keys      sync.Map // uint32 → []byte (plaintext DEK)
	defaultID atomic.Uint32
}

// NewKeyring creates an empty keyring with default DEK id 1.
func NewKeyring() *Keyring {
	kr := &Keyring{}
	kr.defaultID.Store(1)
	return kr
}

// Import stores the plaintext key material for a DEK id, replacing any
// previous entry for the same id.
func (k *Keyring) Import(dekID uint32, key []byte) {
	k.keys.Store(dekID, key)
}

// Get returns the plaintext key for a DEK id.
func (k *Keyring) Get(dekID uint32) ([]byte, bool) {
	if key, ok := k.keys.Load(dekID); ok {
		return key.([]byte), true
	}
	return nil, false
}

// Remove zeroes and drops the key material for a DEK id.
func (k *Keyring) Remove(dekID uint32) {
	if key, ok := k.keys.LoadAndDelete(dekID); ok {
		if b, ok := key.([]byte); ok {
			cryptoDomain.Zero(b)
		}
	}
}

// DefaultDekID returns the id used to encrypt newly created or re-encrypted
// secrets.
func (k *Keyring) DefaultDekID() uint32 {
	return k.defaultID.Load()
}

// SetDefaultDekID updates the default pointer. Callers must Import the id
// first so the pointer never names an unresolvable key.
func (k *Keyring) SetDefaultDekID(dekID uint32) {
	k.defaultID.Store(dekID)
}

// IDs returns the ids of every imported DEK.
func (k *Keyring) IDs() []uint32 {
	var ids []uint32
	k.keys.Range(func(key, _ any) bool {
		ids = append(ids, key.(uint32))
		return true
	})
	return ids
}

// Close zeroes all key material and empties the keyring.
func (k *Keyring) Close() {
	k.keys.Range(func(key, value any) bool {
		if b, ok := value.([]byte); ok {
			cryptoDomain.Zero(b)
		}
		k.keys.Delete(key)
		return true
	})
}

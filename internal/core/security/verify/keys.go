package verify

import (
	"encoding/base64"
	"sync"
	"time"

	"golang.org/x/crypto/ed25519"

	"github.com/nexusshell/nexusshell/internal/core/shellerr"
)

// RotationAction tags an entry in a KeyStore's rotation log.
type RotationAction string

const (
	RotationAdded   RotationAction = "added"
	RotationRevoked RotationAction = "revoked"
	RotationRotated RotationAction = "rotated"
)

// RotationEntry records one mutation of the trusted key set.
type RotationEntry struct {
	KeyID     string
	Action    RotationAction
	Timestamp time.Time
	Reason    string
}

// KeyStore holds the set of Ed25519 public keys trusted for signature
// verification, plus the append-only log of additions, rotations, and
// revocations. A revoked key ID can never be trusted again, even if a
// key with the same ID is later added: revokedIDs is checked
// independently of the live keys map.
type KeyStore struct {
	mu         sync.RWMutex
	keys       map[string]ed25519.PublicKey
	revokedIDs map[string]bool
	log        []RotationEntry
}

// NewKeyStore returns an empty key store.
func NewKeyStore() *KeyStore {
	return &KeyStore{
		keys:       make(map[string]ed25519.PublicKey),
		revokedIDs: make(map[string]bool),
	}
}

// Add trusts pub under keyID. Fails if keyID was ever revoked.
func (ks *KeyStore) Add(keyID string, pub ed25519.PublicKey, now time.Time) *shellerr.ShellError {
	ks.mu.Lock()
	defer ks.mu.Unlock()

	if ks.revokedIDs[keyID] {
		return shellerr.New(shellerr.KindKeyRevoked, "key %q was previously revoked and cannot be re-added", keyID).
			WithContext("key_id", keyID)
	}

	ks.keys[keyID] = pub
	ks.log = append(ks.log, RotationEntry{KeyID: keyID, Action: RotationAdded, Timestamp: now})
	return nil
}

// Revoke removes keyID from the trusted set and permanently bars it
// from being re-added, regardless of reason.
func (ks *KeyStore) Revoke(keyID, reason string, now time.Time) {
	ks.mu.Lock()
	defer ks.mu.Unlock()

	delete(ks.keys, keyID)
	ks.revokedIDs[keyID] = true
	ks.log = append(ks.log, RotationEntry{KeyID: keyID, Action: RotationRevoked, Timestamp: now, Reason: reason})
}

// Rotate revokes oldKeyID and trusts newKeyID/newPub in a single
// logged operation. Returns an error if newKeyID was itself
// previously revoked.
func (ks *KeyStore) Rotate(oldKeyID, newKeyID string, newPub ed25519.PublicKey, now time.Time) *shellerr.ShellError {
	ks.mu.Lock()
	defer ks.mu.Unlock()

	if ks.revokedIDs[newKeyID] {
		return shellerr.New(shellerr.KindKeyRevoked, "replacement key %q was previously revoked", newKeyID).
			WithContext("key_id", newKeyID)
	}

	delete(ks.keys, oldKeyID)
	ks.revokedIDs[oldKeyID] = true
	ks.keys[newKeyID] = newPub

	now2 := now
	ks.log = append(ks.log,
		RotationEntry{KeyID: oldKeyID, Action: RotationRotated, Timestamp: now2, Reason: "superseded by " + newKeyID},
		RotationEntry{KeyID: newKeyID, Action: RotationAdded, Timestamp: now2, Reason: "rotated in from " + oldKeyID},
	)
	return nil
}

// Lookup returns the trusted public key for keyID, failing with
// KeyNotFound if absent and KeyRevoked if it was explicitly revoked.
func (ks *KeyStore) Lookup(keyID string) (ed25519.PublicKey, *shellerr.ShellError) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	if ks.revokedIDs[keyID] {
		return nil, shellerr.New(shellerr.KindKeyRevoked, "key %q has been revoked", keyID).WithContext("key_id", keyID)
	}
	pub, ok := ks.keys[keyID]
	if !ok {
		return nil, shellerr.New(shellerr.KindKeyNotFound, "key %q is not trusted", keyID).WithContext("key_id", keyID)
	}
	return pub, nil
}

// Log returns a copy of the rotation log.
func (ks *KeyStore) Log() []RotationEntry {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	out := make([]RotationEntry, len(ks.log))
	copy(out, ks.log)
	return out
}

// DecodeBase64Key decodes a standard-base64-encoded Ed25519 public key.
func DecodeBase64Key(s string) (ed25519.PublicKey, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return ed25519.PublicKey(raw), nil
}

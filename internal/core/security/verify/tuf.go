package verify

import (
	"encoding/base64"
	"encoding/json"
	"sync"
	"time"

	"golang.org/x/crypto/ed25519"

	"github.com/nexusshell/nexusshell/internal/core/shellerr"
)

// TUFTarget is one signed artifact entry in a targets metadata document,
// modeled on the flat subset of TUF's targets role this host needs: a
// content hash, length, and opaque per-target metadata.
type TUFTarget struct {
	Hash     string            `json:"hash"`
	Length   int64             `json:"length"`
	Metadata map[string]string `json:"custom,omitempty"`
}

// TUFTargets is a version-numbered, signed collection of TUFTarget
// entries keyed by plugin ID. Consumers must reject any document whose
// Version does not strictly exceed the previously accepted version for
// that targets file, guarding against rollback to a stale, possibly
// compromised metadata snapshot.
type TUFTargets struct {
	Version   int                  `json:"version"`
	ExpiresAt *time.Time           `json:"expires_at,omitempty"`
	Targets   map[string]TUFTarget `json:"targets"`
	KeyID     string               `json:"key_id"`
	Signature string               `json:"signature"`
}

// signedPayload is the subset of TUFTargets the signature covers; the
// signature field itself is obviously excluded.
type signedPayload struct {
	Version   int                  `json:"version"`
	ExpiresAt *time.Time           `json:"expires_at,omitempty"`
	Targets   map[string]TUFTarget `json:"targets"`
	KeyID     string               `json:"key_id"`
}

func (t TUFTargets) canonicalPayload() ([]byte, error) {
	return json.Marshal(signedPayload{
		Version:   t.Version,
		ExpiresAt: t.ExpiresAt,
		Targets:   t.Targets,
		KeyID:     t.KeyID,
	})
}

// VerifySignature checks the document's Ed25519 signature against pub.
func (t TUFTargets) VerifySignature(pub ed25519.PublicKey) (bool, error) {
	payload, err := t.canonicalPayload()
	if err != nil {
		return false, shellerr.Wrap(shellerr.KindJSONError, err, "failed to build canonical targets payload")
	}
	sig, err := base64.StdEncoding.DecodeString(t.Signature)
	if err != nil {
		return false, shellerr.Wrap(shellerr.KindBadSignature, err, "targets signature is not valid base64")
	}
	return ed25519.Verify(pub, payload, sig), nil
}

// IsExpired reports whether the document's ExpiresAt has passed.
func (t TUFTargets) IsExpired(now time.Time) bool {
	return t.ExpiresAt != nil && now.After(*t.ExpiresAt)
}

// TargetsStore tracks the highest accepted TUFTargets version, enforcing
// monotonicity across Accept calls.
type TargetsStore struct {
	mu             sync.Mutex
	highestVersion int
	current        *TUFTargets
}

// NewTargetsStore returns an empty targets store.
func NewTargetsStore() *TargetsStore {
	return &TargetsStore{}
}

// Accept validates that doc's version strictly exceeds the previously
// accepted version, then installs it as current. Callers must verify
// doc's signature and expiry separately before calling Accept.
func (ts *TargetsStore) Accept(doc TUFTargets) *shellerr.ShellError {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if doc.Version <= ts.highestVersion {
		return shellerr.New(shellerr.KindSignatureInvalid,
			"targets version %d is not newer than previously accepted version %d (rollback rejected)",
			doc.Version, ts.highestVersion).
			WithContext("incoming_version", doc.Version).
			WithContext("highest_version", ts.highestVersion)
	}

	copied := doc
	ts.highestVersion = doc.Version
	ts.current = &copied
	return nil
}

// Current returns the most recently accepted document, or nil if none
// has been accepted yet.
func (ts *TargetsStore) Current() *TUFTargets {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.current == nil {
		return nil
	}
	copied := *ts.current
	return &copied
}

// Lookup resolves a plugin ID's expected hash from the current
// accepted targets document.
func (ts *TargetsStore) Lookup(pluginID string) (TUFTarget, *shellerr.ShellError) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.current == nil {
		return TUFTarget{}, shellerr.New(shellerr.KindResourceNotFound, "no targets document has been accepted yet")
	}
	target, ok := ts.current.Targets[pluginID]
	if !ok {
		return TUFTarget{}, shellerr.New(shellerr.KindResourceNotFound, "plugin %q has no entry in the current targets document", pluginID).
			WithContext("plugin_id", pluginID)
	}
	return target, nil
}

// Package verify implements plugin artifact verification: the Ed25519
// signature sidecar format, TUF targets metadata, the trusted-keys
// store with an irreversible revocation log, and the five-step
// verification pipeline run on plugin load.
package verify

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"golang.org/x/crypto/ed25519"

	"github.com/nexusshell/nexusshell/internal/core/shellerr"
)

// Sidecar is the plugin signature sidecar document, conventionally
// stored at "<plugin>.sig".
type Sidecar struct {
	Hash      string            `json:"hash"`
	Signature string            `json:"signature"`
	KeyID     string            `json:"key_id"`
	Algorithm string            `json:"algorithm"`
	Timestamp time.Time         `json:"timestamp"`
	ExpiresAt *time.Time        `json:"expires_at,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// canonicalPayload is the JSON document the Ed25519 signature covers:
// {hash, timestamp, key_id, algorithm}, in that field order.
type canonicalPayload struct {
	Hash      string    `json:"hash"`
	Timestamp time.Time `json:"timestamp"`
	KeyID     string    `json:"key_id"`
	Algorithm string    `json:"algorithm"`
}

// CanonicalPayload serializes the fields the signature was computed
// over.
func (s Sidecar) CanonicalPayload() ([]byte, error) {
	return json.Marshal(canonicalPayload{
		Hash:      s.Hash,
		Timestamp: s.Timestamp,
		KeyID:     s.KeyID,
		Algorithm: s.Algorithm,
	})
}

// IsExpired reports whether ExpiresAt has passed as of now.
func (s Sidecar) IsExpired(now time.Time) bool {
	return s.ExpiresAt != nil && now.After(*s.ExpiresAt)
}

// VerifySignature checks the sidecar's Ed25519 signature against pub.
func (s Sidecar) VerifySignature(pub ed25519.PublicKey) (bool, error) {
	payload, err := s.CanonicalPayload()
	if err != nil {
		return false, shellerr.Wrap(shellerr.KindJSONError, err, "failed to build canonical payload")
	}

	sig, err := base64.StdEncoding.DecodeString(s.Signature)
	if err != nil {
		return false, shellerr.Wrap(shellerr.KindBadSignature, err, "signature is not valid base64")
	}

	return ed25519.Verify(pub, payload, sig), nil
}

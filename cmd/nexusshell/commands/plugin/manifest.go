package plugin

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nexusshell/nexusshell/internal/core/security"
	"github.com/nexusshell/nexusshell/internal/core/security/verify"
)

// pluginManifest is the YAML-friendly description of one or more
// plugins' load artifacts: the compiled WASM, its policy, and the
// signed TUF targets entry and signature sidecar a release pipeline
// would have produced out-of-band. This command doesn't sign
// anything itself, matching how a real deployment separates signing
// (a release pipeline, offline) from loading (the host, online).
type pluginManifest struct {
	Plugins []pluginEntry `yaml:"plugins"`

	// TargetsVersion/TargetsSignature/TargetsKeyID/TargetsPublicKey
	// describe the single signed TUF targets document covering every
	// plugin entry below.
	TargetsVersion   int    `yaml:"targets_version"`
	TargetsSignature string `yaml:"targets_signature"`
	TargetsKeyID     string `yaml:"targets_key_id"`
	TargetsPublicKey string `yaml:"targets_public_key"`
}

type pluginEntry struct {
	ID               string     `yaml:"id"`
	WasmPath         string     `yaml:"wasm_path"`
	Version          string     `yaml:"version"`
	Capabilities     []string   `yaml:"capabilities,omitempty"`
	Policy           string     `yaml:"policy"`
	TargetLength     int64      `yaml:"target_length,omitempty"`
	SidecarSignature string     `yaml:"sidecar_signature"`
	SidecarKeyID     string     `yaml:"sidecar_key_id"`
	SidecarAlgorithm string     `yaml:"sidecar_algorithm"`
	SidecarTimestamp time.Time  `yaml:"sidecar_timestamp"`
	SidecarExpiresAt *time.Time `yaml:"sidecar_expires_at,omitempty"`
	TrustedPublicKey string     `yaml:"trusted_public_key"`
}

func loadManifest(path string) (*pluginManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m pluginManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func resolvePolicy(name string) security.Policy {
	switch name {
	case "trusted":
		return security.Trusted()
	case "development":
		return security.Development()
	default:
		return security.Restrictive()
	}
}

func hashFile(path string) (string, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), data, nil
}

// buildTrust constructs a KeyStore and a TargetsStore from a manifest,
// trusting every entry's declared public key and accepting one signed
// targets document covering every plugin entry. Signatures are
// verified before the targets document is accepted, per TargetsStore's
// documented contract.
func buildTrust(m *pluginManifest, wasmHashes map[string]string) (*verify.KeyStore, *verify.TargetsStore, error) {
	keys := verify.NewKeyStore()
	store := verify.NewTargetsStore()
	if err := applyManifestTrust(keys, store, m, wasmHashes); err != nil {
		return nil, nil, err
	}
	return keys, store, nil
}

// applyManifestTrust trusts every entry's declared public key in keys
// and accepts m's signed targets document into store. Unlike
// buildTrust, it operates on already-populated stores, so a reload can
// layer a candidate manifest's trust roots onto the ones a plugin was
// originally loaded under: the candidate's targets document must carry
// a strictly higher version than whatever store already holds, which
// is exactly TargetsStore.Accept's rollback protection.
func applyManifestTrust(keys *verify.KeyStore, store *verify.TargetsStore, m *pluginManifest, wasmHashes map[string]string) error {
	now := time.Now()

	targets := make(map[string]verify.TUFTarget, len(m.Plugins))
	for _, p := range m.Plugins {
		pub, err := verify.DecodeBase64Key(p.TrustedPublicKey)
		if err != nil {
			return err
		}
		if shellErr := keys.Add(p.SidecarKeyID, pub, now); shellErr != nil {
			return shellErr
		}
		targets[p.ID] = verify.TUFTarget{
			Hash:   wasmHashes[p.ID],
			Length: p.TargetLength,
		}
	}

	doc := verify.TUFTargets{
		Version:   m.TargetsVersion,
		Targets:   targets,
		KeyID:     m.TargetsKeyID,
		Signature: m.TargetsSignature,
	}

	pub, err := verify.DecodeBase64Key(m.TargetsPublicKey)
	if err != nil {
		return err
	}
	ok, err := doc.VerifySignature(pub)
	if err != nil {
		return err
	}
	if !ok {
		return errSignatureInvalid(m.TargetsKeyID)
	}
	return store.Accept(doc)
}

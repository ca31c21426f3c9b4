package plugin

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/ed25519"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nexusconfig "github.com/nexusshell/nexusshell/internal/config"
	"github.com/nexusshell/nexusshell/internal/core/security/verify"
)

// addWasmModule is a hand-assembled WASM binary exporting
// "add(i32, i32) -> i32", identical in shape to the fixture the engine
// package's own load/execute tests use.
func addWasmModule() []byte {
	return []byte{
		0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
		0x01, 0x07, 0x01, 0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7f,
		0x03, 0x02, 0x01, 0x00,
		0x07, 0x07, 0x01, 0x03, 0x61, 0x64, 0x64, 0x00, 0x00,
		0x0a, 0x09, 0x01, 0x07, 0x00, 0x20, 0x00, 0x20, 0x01, 0x6a, 0x0b,
	}
}

func signedManifestFixture(t *testing.T, dir string) *pluginManifest {
	t.Helper()
	wasmPath := writeWasm(t, dir, "adder.wasm", addWasmModule())
	hash, _, err := hashFile(wasmPath)
	require.NoError(t, err)

	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	m := &pluginManifest{
		Plugins: []pluginEntry{{
			ID:               "adder",
			WasmPath:         wasmPath,
			Version:          "1.0.0",
			Policy:           "development",
			TargetLength:     int64(len(addWasmModule())),
			SidecarKeyID:     "sidecar-key",
			SidecarAlgorithm: "ed25519",
			TrustedPublicKey: base64.StdEncoding.EncodeToString(pub),
		}},
		TargetsVersion:   1,
		TargetsKeyID:     "targets-key",
		TargetsPublicKey: base64.StdEncoding.EncodeToString(pub),
	}

	sidecar := verify.Sidecar{Hash: hash, KeyID: "sidecar-key", Algorithm: "ed25519", Timestamp: fixedPluginTime()}
	payload, err := sidecar.CanonicalPayload()
	require.NoError(t, err)
	sidecarSig := ed25519.Sign(priv, payload)
	m.Plugins[0].SidecarSignature = base64.StdEncoding.EncodeToString(sidecarSig)
	m.Plugins[0].SidecarTimestamp = sidecar.Timestamp

	doc := signTargets(t, priv, verify.TUFTargets{
		Version: 1,
		Targets: map[string]verify.TUFTarget{"adder": {Hash: hash, Length: m.Plugins[0].TargetLength}},
		KeyID:   "targets-key",
	})
	m.TargetsSignature = doc.Signature

	return m
}

func fixedPluginTime() time.Time {
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
}

func TestLoadManifestInto(t *testing.T) {
	dir := t.TempDir()
	m := signedManifestFixture(t, dir)

	hashes, err := wasmHashes(m)
	require.NoError(t, err)

	keys, targets, err := buildTrust(m, hashes)
	require.NoError(t, err)
	verifier := verify.NewVerifier(keys, targets)

	ctx := context.Background()
	cfg := nexusconfig.DefaultConfig()
	host := newHost(ctx, cfg, verifier)
	defer host.Close(ctx)

	require.NoError(t, loadManifestInto(ctx, host, m, hashes))
	assert.True(t, host.IsLoaded("adder"))

	version, ok := host.Version("adder")
	require.True(t, ok)
	assert.Equal(t, "1.0.0", version)
}

func TestLoadManifestIntoMissingFileFails(t *testing.T) {
	dir := t.TempDir()
	m := &pluginManifest{Plugins: []pluginEntry{{ID: "missing", WasmPath: filepath.Join(dir, "nope.wasm")}}}

	ctx := context.Background()
	cfg := nexusconfig.DefaultConfig()
	host := newHost(ctx, cfg, verify.NewVerifier(verify.NewKeyStore(), verify.NewTargetsStore()))
	defer host.Close(ctx)

	err := loadManifestInto(ctx, host, m, map[string]string{})
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

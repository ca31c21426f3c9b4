package plugin

import (
	"encoding/base64"
	"testing"

	"golang.org/x/crypto/ed25519"
)

func generateTestKey(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey, error) {
	t.Helper()
	return ed25519.GenerateKey(nil)
}

func signBase64(priv ed25519.PrivateKey, payload []byte) string {
	return base64.StdEncoding.EncodeToString(ed25519.Sign(priv, payload))
}

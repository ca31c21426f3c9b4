package plugin

import "github.com/nexusshell/nexusshell/internal/core/shellerr"

func errSignatureInvalid(keyID string) *shellerr.ShellError {
	return shellerr.New(shellerr.KindSignatureInvalid, "targets document signature does not verify against key %q", keyID).
		WithContext("key_id", keyID)
}

// Package keys implements trusted signing-key management subcommands
// backed by an on-disk journal.
package keys

import (
	"encoding/json"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nexusshell/nexusshell/internal/core/security/verify"
)

// Cmd is the keys subcommand.
var Cmd = &cobra.Command{
	Use:   "keys",
	Short: "Trusted signing-key management",
	Long: `Manage the Ed25519 trusted-key store the plugin verification
pipeline checks sidecar signatures against.

verify.KeyStore is an in-memory structure, so this command layers a
small on-disk journal (--store, default keys.json) on top of it: each
invocation replays the journal into a fresh KeyStore, applies the
requested mutation, and appends the result back to the journal.

Subcommands:
  add      Trust a new key ID
  revoke   Revoke a trusted key
  rotate   Replace one trusted key with another
  list     Print the rotation log`,
}

var storePath string

func init() {
	Cmd.PersistentFlags().StringVar(&storePath, "store", "keys.json", "path to the key journal")
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(revokeCmd)
	Cmd.AddCommand(rotateCmd)
	Cmd.AddCommand(listCmd)
}

type journalAction string

const (
	journalAdd    journalAction = "add"
	journalRevoke journalAction = "revoke"
	journalRotate journalAction = "rotate"
)

// journalEntry is one CLI-level mutation, replayed through the real
// KeyStore API to rebuild a store across invocations.
type journalEntry struct {
	Action        journalAction `json:"action"`
	KeyID         string        `json:"key_id"`
	PreviousKeyID string        `json:"previous_key_id,omitempty"`
	PublicKey     string        `json:"public_key,omitempty"`
	Reason        string        `json:"reason,omitempty"`
	Timestamp     time.Time     `json:"timestamp"`
}

type journal struct {
	Entries []journalEntry `json:"entries"`
}

func loadJournal(path string) (journal, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return journal{}, nil
	}
	if err != nil {
		return journal{}, err
	}
	var j journal
	if err := json.Unmarshal(data, &j); err != nil {
		return journal{}, err
	}
	return j, nil
}

func saveJournal(path string, j journal) error {
	data, err := json.MarshalIndent(j, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// replay reconstructs a KeyStore by replaying every journal entry
// through the real Add/Revoke/Rotate API, so the store's own
// revocation-permanence invariant is enforced identically to a
// long-lived in-process KeyStore.
func replay(j journal) (*verify.KeyStore, error) {
	ks := verify.NewKeyStore()
	for _, e := range j.Entries {
		switch e.Action {
		case journalAdd:
			pub, err := verify.DecodeBase64Key(e.PublicKey)
			if err != nil {
				return nil, err
			}
			if shellErr := ks.Add(e.KeyID, pub, e.Timestamp); shellErr != nil {
				return nil, shellErr
			}
		case journalRevoke:
			ks.Revoke(e.KeyID, e.Reason, e.Timestamp)
		case journalRotate:
			pub, err := verify.DecodeBase64Key(e.PublicKey)
			if err != nil {
				return nil, err
			}
			if shellErr := ks.Rotate(e.PreviousKeyID, e.KeyID, pub, e.Timestamp); shellErr != nil {
				return nil, shellErr
			}
		}
	}
	return ks, nil
}

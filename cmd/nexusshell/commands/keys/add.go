package keys

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/nexusshell/nexusshell/internal/core/security/verify"
)

var addCmd = &cobra.Command{
	Use:   "add <key-id> <public-key-base64>",
	Short: "Trust a new key ID",
	Args:  cobra.ExactArgs(2),
	Long: `Add a new Ed25519 public key to the trusted set. Fails if key-id
was ever revoked: revocation is permanent, even across re-adding the
same ID.`,
	RunE: runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	keyID, pubKey := args[0], args[1]

	j, err := loadJournal(storePath)
	if err != nil {
		return err
	}
	ks, err := replay(j)
	if err != nil {
		return err
	}

	pub, err := verify.DecodeBase64Key(pubKey)
	if err != nil {
		return err
	}

	now := time.Now()
	if shellErr := ks.Add(keyID, pub, now); shellErr != nil {
		return shellErr
	}

	j.Entries = append(j.Entries, journalEntry{
		Action:    journalAdd,
		KeyID:     keyID,
		PublicKey: pubKey,
		Timestamp: now,
	})
	if err := saveJournal(storePath, j); err != nil {
		return err
	}

	cmd.Printf("trusted key %q\n", keyID)
	return nil
}

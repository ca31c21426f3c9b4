package keys

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/nexusshell/nexusshell/internal/core/security/verify"
)

var rotateCmd = &cobra.Command{
	Use:   "rotate <old-key-id> <new-key-id> <new-public-key-base64>",
	Short: "Replace one trusted key with another",
	Args:  cobra.ExactArgs(3),
	Long: `Revoke old-key-id and trust new-key-id/new-public-key-base64 as a
single logged operation. Fails if new-key-id was itself previously
revoked.`,
	RunE: runRotate,
}

func runRotate(cmd *cobra.Command, args []string) error {
	oldKeyID, newKeyID, pubKey := args[0], args[1], args[2]

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
	if shellErr := ks.Rotate(oldKeyID, newKeyID, pub, now); shellErr != nil {
		return shellErr
	}

	j.Entries = append(j.Entries, journalEntry{
		Action:        journalRotate,
		KeyID:         newKeyID,
		PreviousKeyID: oldKeyID,
		PublicKey:     pubKey,
		Timestamp:     now,
	})
	if err := saveJournal(storePath, j); err != nil {
		return err
	}

	cmd.Printf("rotated %q -> %q\n", oldKeyID, newKeyID)
	return nil
}

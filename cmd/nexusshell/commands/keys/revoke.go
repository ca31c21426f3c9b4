package keys

import (
	"time"

	"github.com/spf13/cobra"
)

var revokeReason string

var revokeCmd = &cobra.Command{
	Use:   "revoke <key-id>",
	Short: "Revoke a trusted key",
	Args:  cobra.ExactArgs(1),
	Long: `Revoke a trusted key. The key ID can never be trusted again,
even by a later "add" with the same ID.`,
	RunE: runRevoke,
}

func init() {
	revokeCmd.Flags().StringVar(&revokeReason, "reason", "", "reason for revocation")
}

func runRevoke(cmd *cobra.Command, args []string) error {
	keyID := args[0]

	j, err := loadJournal(storePath)
	if err != nil {
		return err
	}
	ks, err := replay(j)
	if err != nil {
		return err
	}

	now := time.Now()
	ks.Revoke(keyID, revokeReason, now)

	j.Entries = append(j.Entries, journalEntry{
		Action:    journalRevoke,
		KeyID:     keyID,
		Reason:    revokeReason,
		Timestamp: now,
	})
	if err := saveJournal(storePath, j); err != nil {
		return err
	}

	cmd.Printf("revoked key %q\n", keyID)
	return nil
}

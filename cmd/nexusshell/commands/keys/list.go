package keys

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/nexusshell/nexusshell/internal/cli/output"
	"github.com/nexusshell/nexusshell/internal/core/security/verify"
)

var listOutput string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the rotation log",
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVarP(&listOutput, "output", "o", "table", "Output format (table|json|yaml)")
}

func runList(cmd *cobra.Command, args []string) error {
	j, err := loadJournal(storePath)
	if err != nil {
		return err
	}
	ks, err := replay(j)
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(listOutput)
	if err != nil {
		return err
	}

	entries := rotationLog(ks.Log())
	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, entries)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, entries)
	default:
		return output.PrintTable(os.Stdout, entries)
	}
}

// rotationLog adapts verify.RotationEntry for table rendering.
type rotationLog []verify.RotationEntry

func (r rotationLog) Headers() []string {
	return []string{"KEY ID", "ACTION", "TIMESTAMP", "REASON"}
}

func (r rotationLog) Rows() [][]string {
	rows := make([][]string, 0, len(r))
	for _, e := range r {
		rows = append(rows, []string{
			e.KeyID,
			string(e.Action),
			e.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
			e.Reason,
		})
	}
	return rows
}

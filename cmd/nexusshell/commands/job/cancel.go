package job

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/nexusshell/nexusshell/internal/cli/output"
	nexusconfig "github.com/nexusshell/nexusshell/internal/config"
)

var (
	cancelFile   string
	cancelOutput string
)

var cancelCmd = &cobra.Command{
	Use:   "cancel <job-id>",
	Short: "Load a job file, cancel one job, and print the remaining queue",
	Args:  cobra.ExactArgs(1),
	RunE:  runCancel,
}

func init() {
	cancelCmd.Flags().StringVar(&cancelFile, "file", "jobs.yaml", "path to a YAML job definition file")
	cancelCmd.Flags().StringVarP(&cancelOutput, "output", "o", "table", "Output format (table|json|yaml)")
}

func runCancel(cmd *cobra.Command, args []string) error {
	targetID := args[0]

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := nexusconfig.Load(configPath)
	if err != nil {
		return err
	}

	specs, err := loadJobFile(cancelFile)
	if err != nil {
		return err
	}

	sched := newScheduler(cfg)
	var ids []string
	for _, spec := range specs {
		job, err := spec.toScheduledJob()
		if err != nil {
			return err
		}
		if shellErr := sched.ScheduleJob(job); shellErr != nil {
			return shellErr
		}
		ids = append(ids, job.ID)
	}

	if shellErr := sched.Cancel(targetID); shellErr != nil {
		return shellErr
	}

	remaining := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != targetID {
			remaining = append(remaining, id)
		}
	}

	format, err := output.ParseFormat(cancelOutput)
	if err != nil {
		return err
	}

	rows := jobQueueTable(sched, remaining)
	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, rows)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, rows)
	default:
		return output.PrintTable(os.Stdout, rows)
	}
}

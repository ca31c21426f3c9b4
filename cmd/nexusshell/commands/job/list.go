package job

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/nexusshell/nexusshell/internal/cli/output"
	nexusconfig "github.com/nexusshell/nexusshell/internal/config"
)

var (
	listFile   string
	listOutput string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Load a job file and print the resulting queue",
	Long: `Load every job in --file into a fresh scheduler and print the
resulting admission queue (next-run time, priority, disabled state) — no
attempts are executed.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listFile, "file", "jobs.yaml", "path to a YAML job definition file")
	listCmd.Flags().StringVarP(&listOutput, "output", "o", "table", "Output format (table|json|yaml)")
}

func runList(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := nexusconfig.Load(configPath)
	if err != nil {
		return err
	}

	specs, err := loadJobFile(listFile)
	if err != nil {
		return err
	}

	sched := newScheduler(cfg)
	ids := make([]string, 0, len(specs))
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

	format, err := output.ParseFormat(listOutput)
	if err != nil {
		return err
	}

	rows := jobQueueTable(sched, ids)
	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, rows)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, rows)
	default:
		return output.PrintTable(os.Stdout, rows)
	}
}

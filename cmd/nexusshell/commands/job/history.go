package job

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	nexusconfig "github.com/nexusshell/nexusshell/internal/config"
)

var (
	historyFile string
	historyWait time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Load a job file, run it for a window, and print the history",
	Long: `Load every job in --file into a fresh scheduler, run the tick loop
for --wait, then print every recorded attempt plus aggregate stats.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyFile, "file", "jobs.yaml", "path to a YAML job definition file")
	historyCmd.Flags().DurationVar(&historyWait, "wait", 5*time.Second, "how long to run the scheduler before reporting")
}

func runHistory(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := nexusconfig.Load(configPath)
	if err != nil {
		return err
	}

	specs, err := loadJobFile(historyFile)
	if err != nil {
		return err
	}

	sched := newScheduler(cfg)
	for _, spec := range specs {
		job, err := spec.toScheduledJob()
		if err != nil {
			return err
		}
		if shellErr := sched.ScheduleJob(job); shellErr != nil {
			return shellErr
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), historyWait)
	defer cancel()
	sched.Run(ctx)
	<-ctx.Done()
	sched.Stop()

	stats := sched.Stats()
	cmd.Printf("total jobs: %d  executed today: %d  success rate: %.1f%%  mean duration: %s\n",
		stats.TotalJobs, stats.ExecutedToday, stats.SuccessRate*100, stats.MeanDuration)
	printHistoryTable(cmd, sched.History())
	return nil
}

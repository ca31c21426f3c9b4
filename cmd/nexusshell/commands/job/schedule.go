package job

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	nexusconfig "github.com/nexusshell/nexusshell/internal/config"
	"github.com/nexusshell/nexusshell/internal/core/scheduler"
)

var (
	scheduleCron     string
	scheduleEvery    time.Duration
	schedulePriority int
	scheduleWait     time.Duration
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule <id> <command> [args...]",
	Short: "Schedule and run a single job from flags",
	Args:  cobra.MinimumNArgs(2),
	Long: `Schedule a single job and run the scheduler's tick loop for --wait
before printing its history. With neither --cron nor --every, the job
runs once, immediately.

Examples:
  nexusshell job schedule nightly-backup /usr/bin/tar -- -czf /tmp/out.tgz /data
  nexusshell job schedule heartbeat echo --every 2s --wait 10s -- ping`,
	RunE: runSchedule,
}

func init() {
	scheduleCmd.Flags().StringVar(&scheduleCron, "cron", "", "cron expression for a recurring schedule")
	scheduleCmd.Flags().DurationVar(&scheduleEvery, "every", 0, "fixed interval for a recurring schedule")
	scheduleCmd.Flags().IntVar(&schedulePriority, "priority", 0, "job priority (higher runs first at the same time)")
	scheduleCmd.Flags().DurationVar(&scheduleWait, "wait", 3*time.Second, "how long to run the scheduler before reporting")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := nexusconfig.Load(configPath)
	if err != nil {
		return err
	}

	id, command, jobArgs := args[0], args[1], args[2:]

	sched := newScheduler(cfg)

	job := &scheduler.ScheduledJob{
		ID:       id,
		Command:  command,
		Args:     jobArgs,
		Priority: schedulePriority,
	}

	switch {
	case scheduleCron != "":
		job.Schedule = scheduler.Schedule{Kind: scheduler.ScheduleRecurring, CronExpr: scheduleCron}
	case scheduleEvery > 0:
		job.Schedule = scheduler.Schedule{Kind: scheduler.ScheduleInterval, Period: scheduleEvery}
	default:
		job.Schedule = scheduler.Schedule{Kind: scheduler.ScheduleOnce, At: time.Now()}
	}

	if shellErr := sched.ScheduleJob(job); shellErr != nil {
		return shellErr
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), scheduleWait)
	defer cancel()
	sched.Run(ctx)
	<-ctx.Done()
	sched.Stop()

	cmd.Printf("ran %q for %s; %d history entries recorded\n", id, scheduleWait, len(sched.History()))
	printHistoryTable(cmd, sched.History())
	return nil
}

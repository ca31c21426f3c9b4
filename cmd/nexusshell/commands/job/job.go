// Package job implements the job subcommand: schedule/list/cancel/history
// operations against the job scheduler.
package job

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	nexusconfig "github.com/nexusshell/nexusshell/internal/config"
	"github.com/nexusshell/nexusshell/internal/core/scheduler"
)

// Cmd is the job subcommand.
var Cmd = &cobra.Command{
	Use:   "job",
	Short: "Job scheduler operations",
	Long: `Schedule and inspect jobs against an in-process job scheduler.

Since the scheduler holds its queue in memory, "list", "cancel", and
"history" load job definitions from a YAML file (--file); "history"
also runs the scheduler for a bounded window (--wait) so there's
something to observe; "schedule" takes a single job's definition from
flags.

Subcommands:
  schedule  Schedule and run a single job from flags
  list      Load a job file and print the resulting queue
  cancel    Load a job file, cancel one job, and print the remaining queue
  history   Load a job file, run it for a window, and print the history`,
}

func init() {
	Cmd.AddCommand(scheduleCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(cancelCmd)
	Cmd.AddCommand(historyCmd)
}

// jobSpec is the YAML-friendly job definition a job file holds; it
// mirrors scheduler.ScheduledJob's fields in a form convenient to hand
// author, with durations/times as strings.
type jobSpec struct {
	ID                 string   `yaml:"id"`
	Command            string   `yaml:"command"`
	Args               []string `yaml:"args,omitempty"`
	Cron               string   `yaml:"cron,omitempty"`
	At                 string   `yaml:"at,omitempty"`
	Every              string   `yaml:"every,omitempty"`
	Priority           int      `yaml:"priority,omitempty"`
	Timeout            string   `yaml:"timeout,omitempty"`
	MaxRetries         int      `yaml:"max_retries,omitempty"`
	RetryInterval      string   `yaml:"retry_interval,omitempty"`
	ExponentialBackoff bool     `yaml:"exponential_backoff,omitempty"`
	MaxDelay           string   `yaml:"max_delay,omitempty"`
}

func (s jobSpec) toScheduledJob() (*scheduler.ScheduledJob, error) {
	job := &scheduler.ScheduledJob{
		ID:       s.ID,
		Command:  s.Command,
		Args:     s.Args,
		Priority: s.Priority,
	}

	switch {
	case s.Cron != "":
		job.Schedule = scheduler.Schedule{Kind: scheduler.ScheduleRecurring, CronExpr: s.Cron}
	case s.At != "":
		at, err := time.Parse(time.RFC3339, s.At)
		if err != nil {
			return nil, err
		}
		job.Schedule = scheduler.Schedule{Kind: scheduler.ScheduleOnce, At: at}
	case s.Every != "":
		period, err := time.ParseDuration(s.Every)
		if err != nil {
			return nil, err
		}
		job.Schedule = scheduler.Schedule{Kind: scheduler.ScheduleInterval, Period: period}
	default:
		job.Schedule = scheduler.Schedule{Kind: scheduler.ScheduleOnce, At: time.Now()}
	}

	if s.Timeout != "" {
		d, err := time.ParseDuration(s.Timeout)
		if err != nil {
			return nil, err
		}
		job.Timeout = d
	}

	retry := scheduler.RetryPolicy{
		MaxRetries:         s.MaxRetries,
		ExponentialBackoff: s.ExponentialBackoff,
	}
	if s.RetryInterval != "" {
		d, err := time.ParseDuration(s.RetryInterval)
		if err != nil {
			return nil, err
		}
		retry.RetryInterval = d
	}
	if s.MaxDelay != "" {
		d, err := time.ParseDuration(s.MaxDelay)
		if err != nil {
			return nil, err
		}
		retry.MaxDelay = d
	}
	job.Retry = retry

	return job, nil
}

func loadJobFile(path string) ([]jobSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var specs []jobSpec
	if err := yaml.Unmarshal(data, &specs); err != nil {
		return nil, err
	}
	return specs, nil
}

// newScheduler builds a scheduler over cfg.Scheduler running commands as
// real subprocesses.
func newScheduler(cfg *nexusconfig.Config) *scheduler.Scheduler {
	return scheduler.New(cfg.Scheduler, runShellCommand)
}

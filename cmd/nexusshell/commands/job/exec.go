package job

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/nexusshell/nexusshell/internal/core/scheduler"
)

// runShellCommand is the scheduler's CommandRunner: it executes
// job.Command with job.Args as a real subprocess, bounded by job.Timeout.
func runShellCommand(ctx context.Context, job *scheduler.ScheduledJob, attempt int) scheduler.JobExecutionResult {
	start := time.Now()

	runCtx := ctx
	if job.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	var stdout, stderr strings.Builder
	execCmd := exec.CommandContext(runCtx, job.Command, job.Args...)
	execCmd.Stdout = &stdout
	execCmd.Stderr = &stderr

	err := execCmd.Run()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = -1
		}
	}

	return scheduler.JobExecutionResult{
		ExitCode: exitCode,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
		Err:      err,
	}
}

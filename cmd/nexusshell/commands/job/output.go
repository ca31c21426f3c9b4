package job

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nexusshell/nexusshell/internal/core/scheduler"
)

func printHistoryTable(cmd *cobra.Command, history []scheduler.JobHistoryEntry) {
	if len(history) == 0 {
		cmd.Println("(no history recorded)")
		return
	}
	cmd.Println("JOB ID\tATTEMPT\tSUCCESS\tEXIT\tDURATION")
	for _, h := range history {
		cmd.Printf("%s\t%d\t%t\t%d\t%s\n", h.JobID, h.Attempt, h.Success, h.Result.ExitCode, h.Result.Duration)
	}
}

func jobQueueTable(sched *scheduler.Scheduler, ids []string) queueRows {
	rows := make(queueRows, 0, len(ids))
	for _, id := range ids {
		job, ok := sched.Job(id)
		if !ok {
			continue
		}
		rows = append(rows, queueRow{
			ID:       job.ID,
			Command:  job.Command,
			Priority: strconv.Itoa(job.Priority),
			NextRun:  job.NextRun.Format("2006-01-02T15:04:05Z07:00"),
			Disabled: job.Disabled,
		})
	}
	return rows
}

type queueRow struct {
	ID       string
	Command  string
	Priority string
	NextRun  string
	Disabled bool
}

// queueRows adapts a set of queued jobs for table rendering.
type queueRows []queueRow

func (q queueRows) Headers() []string {
	return []string{"ID", "COMMAND", "PRIORITY", "NEXT RUN", "DISABLED"}
}

func (q queueRows) Rows() [][]string {
	out := make([][]string, 0, len(q))
	for _, r := range q {
		out = append(out, []string{r.ID, r.Command, r.Priority, r.NextRun, strconv.FormatBool(r.Disabled)})
	}
	return out
}

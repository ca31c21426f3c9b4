package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"

	"github.com/nexusshell/nexusshell/internal/core/shellerr"
)

// cronParser accepts the standard five-field expression (minute hour
// dom month dow) with *, comma, dash, and slash — no seconds field,
// matching §4.H exactly rather than cron's non-standard six-field
// default.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// maxCronLookahead bounds next-occurrence search so a pathological
// expression (e.g. "29 2 30 2 *") cannot hang computing a next run.
const maxCronLookahead = 365 * 24 * time.Hour

// nextCronRun computes the next occurrence of expr strictly after
// after, in the host's local zone, bounded by maxCronLookahead.
func nextCronRun(expr string, after time.Time) (time.Time, *shellerr.ShellError) {
	schedule, err := cronParser.Parse(expr)
	if err != nil {
		return time.Time{}, shellerr.Wrap(shellerr.KindInvalidCron, err, "invalid cron expression %q", expr)
	}

	local := after.Local()
	next := schedule.Next(local)
	if next.IsZero() {
		return time.Time{}, shellerr.New(shellerr.KindInvalidCron, "cron expression %q has no future occurrence", expr)
	}
	if next.Sub(local) > maxCronLookahead {
		return time.Time{}, shellerr.New(shellerr.KindInvalidCron, "cron expression %q has no occurrence within the one-year lookahead", expr)
	}
	return next, nil
}

package scheduler

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/nexusshell/nexusshell/internal/config"
	"github.com/nexusshell/nexusshell/internal/core/shellerr"
	"github.com/nexusshell/nexusshell/internal/logger"
)

// CommandRunner executes a job's command and produces its result. The
// default implementation shells out; tests and embedders may substitute
// a fake.
type CommandRunner func(ctx context.Context, job *ScheduledJob, attempt int) JobExecutionResult

// MetricsObserver receives queue-depth and running-count readings
// taken once per tick. Wired to an optional metrics sink; a nil
// observer (the default) means the readings are simply discarded.
type MetricsObserver interface {
	ObserveQueueDepth(depth int)
	ObserveRunning(count int)
}

// Scheduler owns the four shared structures named in §4.H: jobs, the
// priority queue, in-flight running handles, and bounded history.
// Lock acquisition order is always jobs -> queue -> running -> history,
// matching the lock ordering established for the resource table.
type Scheduler struct {
	cfg config.SchedulerConfig
	run CommandRunner

	jobsMu sync.RWMutex
	jobs   map[string]*ScheduledJob

	queueMu sync.Mutex
	queue   *priorityQueue

	runningMu sync.RWMutex
	running   map[string]*RunningJob

	historyMu sync.RWMutex
	history   []JobHistoryEntry

	sem *semaphore.Weighted

	stopped  chan struct{}
	stopOnce sync.Once

	observerMu sync.RWMutex
	observer   MetricsObserver
}

// SetMetricsObserver installs (or, passed nil, removes) the metrics
// sink notified with queue-depth/running-count readings each tick.
func (s *Scheduler) SetMetricsObserver(observer MetricsObserver) {
	s.observerMu.Lock()
	s.observer = observer
	s.observerMu.Unlock()
}

// New returns a Scheduler using cfg and run to execute job attempts.
func New(cfg config.SchedulerConfig, run CommandRunner) *Scheduler {
	return &Scheduler{
		cfg:     cfg,
		run:     run,
		jobs:    make(map[string]*ScheduledJob),
		queue:   newPriorityQueue(),
		running: make(map[string]*RunningJob),
		sem:     semaphore.NewWeighted(int64(cfg.MaxConcurrentJobs)),
		stopped: make(chan struct{}),
	}
}

// ScheduleJob admits job: computes its first NextRun from the schedule
// variant and pushes the corresponding queue entry.
func (s *Scheduler) ScheduleJob(job *ScheduledJob) *shellerr.ShellError {
	next, err := s.firstRun(job, time.Now())
	if err != nil {
		return err
	}
	job.NextRun = next

	s.jobsMu.Lock()
	s.jobs[job.ID] = job
	s.jobsMu.Unlock()

	s.queueMu.Lock()
	s.queue.push(&QueuedJob{JobID: job.ID, ScheduledTime: next, Priority: job.Priority})
	s.queueMu.Unlock()

	logger.Info("job scheduled", "job_id", job.ID, "next_run", next, "schedule", job.Schedule.Kind.String())
	return nil
}

// ScheduleAt is a convenience constructor for a one-shot job.
func (s *Scheduler) ScheduleAt(id, command string, args []string, at time.Time) *shellerr.ShellError {
	return s.ScheduleJob(&ScheduledJob{
		ID:       id,
		Command:  command,
		Args:     args,
		Schedule: Schedule{Kind: ScheduleOnce, At: at},
		Retry:    s.defaultRetry(),
		Timeout:  s.cfg.DefaultTimeout,
	})
}

// ScheduleCron is a convenience constructor for a recurring cron job.
func (s *Scheduler) ScheduleCron(id, command string, args []string, cronExpr string) *shellerr.ShellError {
	return s.ScheduleJob(&ScheduledJob{
		ID:       id,
		Command:  command,
		Args:     args,
		Schedule: Schedule{Kind: ScheduleRecurring, CronExpr: cronExpr},
		Retry:    s.defaultRetry(),
		Timeout:  s.cfg.DefaultTimeout,
	})
}

func (s *Scheduler) defaultRetry() RetryPolicy {
	return RetryPolicy{
		MaxRetries:         s.cfg.DefaultRetryCount,
		RetryInterval:      s.cfg.DefaultRetryInterval,
		ExponentialBackoff: true,
		MaxDelay:           10 * s.cfg.DefaultRetryInterval,
	}
}

// firstRun computes a job's first NextRun. A Recurring job whose
// computed occurrence already fell in the past (e.g. clock skew or
// laptop suspend before the scheduler ever saw it) is skipped forward
// to the next future occurrence rather than firing a backlog of missed
// runs; see DESIGN.md's Open Question resolution.
func (s *Scheduler) firstRun(job *ScheduledJob, now time.Time) (time.Time, *shellerr.ShellError) {
	switch job.Schedule.Kind {
	case ScheduleOnce:
		return job.Schedule.At, nil
	case ScheduleInterval:
		return now.Add(job.Schedule.Period), nil
	case ScheduleEventBased:
		return now, nil
	case ScheduleRecurring:
		return nextCronRun(job.Schedule.CronExpr, now)
	default:
		return time.Time{}, shellerr.New(shellerr.KindInvalidSyntax, "unrecognized schedule kind %d", job.Schedule.Kind)
	}
}

// Cancel removes job from the job table, drops every matching queue
// entry, and aborts a running handle if one exists.
func (s *Scheduler) Cancel(jobID string) *shellerr.ShellError {
	s.jobsMu.Lock()
	_, existed := s.jobs[jobID]
	delete(s.jobs, jobID)
	s.jobsMu.Unlock()

	s.queueMu.Lock()
	s.queue.removeJob(jobID)
	s.queueMu.Unlock()

	s.runningMu.Lock()
	if r, ok := s.running[jobID]; ok && r.Cancel != nil {
		r.Cancel()
	}
	s.runningMu.Unlock()

	if !existed {
		return jobNotFound(jobID)
	}
	logger.Info("job canceled", "job_id", jobID)
	return nil
}

// Run drives the tick loop until ctx is canceled or Stop is called.
func (s *Scheduler) Run(ctx context.Context) {
	interval := s.cfg.CheckInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopped:
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// Stop signals the tick loop to exit at its next wake; pending queue
// entries are discarded and running executors are aborted.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopped)

		s.runningMu.Lock()
		for _, r := range s.running {
			if r.Cancel != nil {
				r.Cancel()
			}
		}
		s.runningMu.Unlock()

		s.queueMu.Lock()
		s.queue = newPriorityQueue()
		s.queueMu.Unlock()
	})
}

// tick pops every due entry, acquires a concurrency permit for each,
// and spawns an executor task holding that permit.
func (s *Scheduler) tick(ctx context.Context) {
	now := time.Now()
	defer s.reportMetrics()

	for {
		s.queueMu.Lock()
		head, ok := s.queue.peek()
		if !ok || head.ScheduledTime.After(now) {
			s.queueMu.Unlock()
			return
		}

		if !s.sem.TryAcquire(1) {
			s.queueMu.Unlock()
			return
		}
		entry, _ := s.queue.pop()
		s.queueMu.Unlock()

		s.runningMu.Lock()
		attemptCtx, cancel := context.WithCancel(ctx)
		s.running[entry.JobID] = &RunningJob{JobID: entry.JobID, Attempt: entry.Attempt, StartedAt: now, Cancel: cancel}
		s.runningMu.Unlock()

		go s.executeAttempt(attemptCtx, cancel, entry)
	}
}

// reportMetrics publishes a single queue-depth/running-count reading
// to the installed observer, if any.
func (s *Scheduler) reportMetrics() {
	s.observerMu.RLock()
	obs := s.observer
	s.observerMu.RUnlock()
	if obs == nil {
		return
	}
	obs.ObserveQueueDepth(s.QueueDepth())
	obs.ObserveRunning(s.RunningCount())
}

// executeAttempt is the per-attempt executor task: load, run (honoring
// the job's timeout), record history, then reschedule or retry.
func (s *Scheduler) executeAttempt(ctx context.Context, cancel context.CancelFunc, entry *QueuedJob) {
	defer s.sem.Release(1)
	defer cancel()
	defer func() {
		s.runningMu.Lock()
		delete(s.running, entry.JobID)
		s.runningMu.Unlock()
	}()

	job, ok := s.getJob(entry.JobID)
	if !ok {
		return
	}

	if job.Disabled {
		s.appendHistory(JobHistoryEntry{
			JobID:     job.ID,
			Attempt:   entry.Attempt,
			StartedAt: time.Now(),
			Success:   true,
		})
		return
	}

	if job.Timeout > 0 {
		var timeoutCancel context.CancelFunc
		ctx, timeoutCancel = context.WithTimeout(ctx, job.Timeout)
		defer timeoutCancel()
	}

	start := time.Now()
	result := s.run(ctx, job, entry.Attempt)
	result.Duration = time.Since(start)
	if ctx.Err() == context.DeadlineExceeded && result.Err == nil {
		result.Err = shellerr.New(shellerr.KindTimeout, "job %q attempt %d exceeded its timeout", job.ID, entry.Attempt)
	}

	success := result.Err == nil && result.ExitCode == 0
	s.appendHistory(JobHistoryEntry{
		JobID:     job.ID,
		Attempt:   entry.Attempt,
		StartedAt: start,
		Result:    result,
		Success:   success,
	})

	if success {
		s.onSuccess(job)
	} else {
		s.onFailure(job, entry)
	}
}

func (s *Scheduler) getJob(id string) (*ScheduledJob, bool) {
	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()
	j, ok := s.jobs[id]
	return j, ok
}

func (s *Scheduler) onSuccess(job *ScheduledJob) {
	s.jobsMu.Lock()
	job.ConsecutiveFailures = 0
	job.LastRun = time.Now()
	s.jobsMu.Unlock()

	switch job.Schedule.Kind {
	case ScheduleOnce:
		s.jobsMu.Lock()
		delete(s.jobs, job.ID)
		s.jobsMu.Unlock()

	case ScheduleRecurring:
		next, err := nextCronRun(job.Schedule.CronExpr, time.Now())
		if err != nil {
			logger.Warn("job requeue failed", "job_id", job.ID, "error", err.Error())
			return
		}
		s.requeue(job, next, 0)

	case ScheduleInterval:
		s.requeue(job, time.Now().Add(job.Schedule.Period), 0)

	case ScheduleEventBased:
		// no automatic requeue; waits for an external trigger
	}
}

func (s *Scheduler) onFailure(job *ScheduledJob, entry *QueuedJob) {
	s.jobsMu.Lock()
	job.ConsecutiveFailures++
	failures := job.ConsecutiveFailures
	s.jobsMu.Unlock()

	if s.cfg.AutoDisableAfterFailures > 0 && failures >= s.cfg.AutoDisableAfterFailures {
		s.jobsMu.Lock()
		job.Disabled = true
		s.jobsMu.Unlock()
		logger.Warn("job auto-disabled after consecutive failures", "job_id", job.ID, "failures", failures)
		return
	}

	if entry.Attempt >= job.Retry.MaxRetries {
		logger.Warn("job exhausted retries", "job_id", job.ID, "attempt", entry.Attempt)
		return
	}

	delay := backoffDelay(job.Retry, entry.Attempt)
	s.requeue(job, time.Now().Add(delay), entry.Attempt+1)
}

// backoffDelay computes the delay before the next attempt: base
// interval, doubled per attempt when exponential, saturating and
// clamped to MaxDelay.
func backoffDelay(retry RetryPolicy, attempt int) time.Duration {
	if !retry.ExponentialBackoff {
		return clampDelay(retry.RetryInterval, retry.MaxDelay)
	}
	delay := retry.RetryInterval
	for i := 0; i < attempt; i++ {
		if retry.MaxDelay > 0 && delay >= retry.MaxDelay {
			delay = retry.MaxDelay
			break
		}
		delay *= 2
	}
	return clampDelay(delay, retry.MaxDelay)
}

func clampDelay(delay, max time.Duration) time.Duration {
	if max > 0 && delay > max {
		return max
	}
	return delay
}

func (s *Scheduler) requeue(job *ScheduledJob, next time.Time, attempt int) {
	s.jobsMu.Lock()
	job.NextRun = next
	s.jobsMu.Unlock()

	s.queueMu.Lock()
	s.queue.push(&QueuedJob{JobID: job.ID, ScheduledTime: next, Priority: job.Priority, Attempt: attempt})
	s.queueMu.Unlock()
}

// appendHistory records entry, evicting entries past the retention cap.
func (s *Scheduler) appendHistory(entry JobHistoryEntry) {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()

	s.history = append(s.history, entry)

	cutoff := time.Now().Add(-s.cfg.HistoryRetention)
	firstLive := 0
	for firstLive < len(s.history) && s.history[firstLive].StartedAt.Before(cutoff) {
		firstLive++
	}
	if firstLive > 0 {
		s.history = append([]JobHistoryEntry(nil), s.history[firstLive:]...)
	}
}

// History returns a snapshot copy of the retained history.
func (s *Scheduler) History() []JobHistoryEntry {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()
	return append([]JobHistoryEntry(nil), s.history...)
}

// QueueDepth returns the number of pending queue entries.
func (s *Scheduler) QueueDepth() int {
	s.queueMu.Lock()
	defer s.queueMu.Unlock()
	return s.queue.len()
}

// RunningCount returns the number of in-flight executor tasks.
func (s *Scheduler) RunningCount() int {
	s.runningMu.RLock()
	defer s.runningMu.RUnlock()
	return len(s.running)
}

// Job returns a copy of the stored job definition, if it exists.
func (s *Scheduler) Job(id string) (ScheduledJob, bool) {
	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()
	j, ok := s.jobs[id]
	if !ok {
		return ScheduledJob{}, false
	}
	return *j, true
}

// jobNotFound constructs the standard not-found error for a missing job ID.
func jobNotFound(id string) *shellerr.ShellError {
	return shellerr.New(shellerr.KindJobNotFound, "job %q not found", id).WithContext("job_id", id)
}

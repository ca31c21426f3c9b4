package commands

import (
	"bufio"
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/spf13/cobra"

	nexusconfig "github.com/nexusshell/nexusshell/internal/config"
	"github.com/nexusshell/nexusshell/internal/core/codec/zstd"
	"github.com/nexusshell/nexusshell/internal/core/eval"
	"github.com/nexusshell/nexusshell/internal/core/plugin"
	"github.com/nexusshell/nexusshell/internal/core/resource"
	"github.com/nexusshell/nexusshell/internal/core/scheduler"
	"github.com/nexusshell/nexusshell/internal/core/security/verify"
)

// session holds one instance of each of the four core engines, wired
// together the way an embedding application would. This is a stub: it
// exposes the engines through a handful of ":"-prefixed meta-commands
// rather than a full line-editing shell grammar.
type session struct {
	cfg       *nexusconfig.Config
	scheduler *scheduler.Scheduler
	host      *plugin.Host
	evaluator *eval.Evaluator
	expander  *eval.Expander
	scopes    *eval.ScopeStack
}

func newSession(ctx context.Context, cfg *nexusconfig.Config) *session {
	sched := scheduler.New(cfg.Scheduler, runShellCommand)

	resources := resource.NewTable(resource.Limits{
		MaxTotalBytes:       int64(cfg.PluginRuntime.ResourceLimits.MaxMemory),
		MaxBytesPerPlugin:   int64(cfg.PluginRuntime.ResourceLimits.MaxMemoryPerPlugin),
		MaxResources:        cfg.PluginRuntime.ResourceLimits.MaxResources,
		MaxResourcesPerType: cfg.PluginRuntime.ResourceLimits.MaxResourcesPerType,
		MaxLifetime:         cfg.PluginRuntime.ResourceLimits.MaxLifetime,
		MaxIdleTime:         cfg.PluginRuntime.ResourceLimits.MaxIdleTime,
	})
	verifier := verify.NewVerifier(verify.NewKeyStore(), verify.NewTargetsStore())
	host := plugin.NewHost(ctx, verifier, resources, cfg.PluginRuntime.PerformanceMonitoring.MaxSamples)

	return &session{
		cfg:       cfg,
		scheduler: sched,
		host:      host,
		evaluator: eval.NewEvaluator(),
		expander:  eval.NewExpander(cfg.Runtime.MaxMacroDepth),
		scopes:    eval.NewScopeStack(),
	}
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Drop into an interactive read-eval loop",
	Long: `Start an interactive session wiring together the job scheduler, the
plugin host, the expression/macro runtime, and the zstd codec.

This is a minimal stub: it understands a small set of ":"-prefixed
meta-commands rather than a full shell grammar.

  :jobs                show scheduler queue depth and run count
  :plugins              show active plugin count and tracked memory
  :macro NAME ARGS...    expand a defined macro
  :zstd TEXT              round-trip TEXT through the zstd store-mode codec
  :closures               show the closure registry size
  exit | quit             leave the session`,
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	configPath := GetConfigFile()
	cfg, err := nexusconfig.Load(configPath)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	sess := newSession(ctx, cfg)
	defer func() { _ = sess.host.Close(ctx) }()

	go sess.scheduler.Run(ctx)
	defer sess.scheduler.Stop()

	cmd.Println("nexusshell interactive session. Type :help for meta-commands, exit to quit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cmd.Print("nexus> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}
		sess.dispatch(cmd, line)
	}
	return scanner.Err()
}

func (s *session) dispatch(cmd *cobra.Command, line string) {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":help":
		cmd.Println("meta-commands: :jobs :plugins :macro :zstd :closures exit quit")
	case ":jobs":
		cmd.Printf("queue depth: %d  running: %d\n", s.scheduler.QueueDepth(), s.scheduler.RunningCount())
	case ":plugins":
		agg := s.host.Collect()
		cmd.Printf("%d plugin(s) active, %d bytes tracked\n", agg.ActivePluginCount, agg.TotalMemory)
	case ":closures":
		cmd.Printf("closure registry: %d slot(s)\n", s.evaluator.Closures.Len())
	case ":macro":
		if len(fields) < 2 {
			cmd.Println("usage: :macro NAME [ARGS...]")
			return
		}
		text := "${" + fields[1] + "(" + strings.Join(fields[2:], ", ") + ")}"
		expanded, shellErr := s.expander.Expand(text)
		if shellErr != nil {
			cmd.PrintErrln(shellErr.Error())
			return
		}
		cmd.Println(expanded)
	case ":zstd":
		if len(fields) < 2 {
			cmd.Println("usage: :zstd TEXT")
			return
		}
		text := strings.Join(fields[1:], " ")
		frame, err := zstd.Encode([]byte(text), s.cfg.Codec.MaxBlockSize)
		if err != nil {
			cmd.PrintErrln(err.Error())
			return
		}
		decoded, err := zstd.DecodeBytes(frame)
		if err != nil {
			cmd.PrintErrln(err.Error())
			return
		}
		cmd.Printf("frame: %d bytes, round-trip: %q\n", len(frame), string(decoded))
	default:
		cmd.Printf("unknown meta-command %q (try :help)\n", fields[0])
	}
}

// runShellCommand is the scheduler's CommandRunner: it executes job.Command
// with job.Args as an actual subprocess, bounded by job.Timeout.
func runShellCommand(ctx context.Context, job *scheduler.ScheduledJob, attempt int) scheduler.JobExecutionResult {
	start := time.Now()

	runCtx := ctx
	var cancel context.CancelFunc
	if job.Timeout > 0 {
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

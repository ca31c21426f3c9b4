// Package commands implements the nexusshell CLI.
package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/nexusshell/nexusshell/cmd/nexusshell/commands/config"
	"github.com/nexusshell/nexusshell/cmd/nexusshell/commands/eval"
	"github.com/nexusshell/nexusshell/cmd/nexusshell/commands/job"
	"github.com/nexusshell/nexusshell/cmd/nexusshell/commands/keys"
	"github.com/nexusshell/nexusshell/cmd/nexusshell/commands/plugin"
	"github.com/nexusshell/nexusshell/cmd/nexusshell/commands/zstd"
	nexusconfig "github.com/nexusshell/nexusshell/internal/config"
	"github.com/nexusshell/nexusshell/internal/logger"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	// Global flags.
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "nexusshell",
	Short: "NexusShell Core - job scheduler, expression runtime, and WASM plugin host",
	Long: `NexusShell Core is the engine room of an embeddable shell: a job
scheduler with cron/interval/retry semantics, an expression and closure
evaluator with macro expansion, a capability-sandboxed WASM plugin host,
and an RFC 8878 zstd store-mode codec for wire framing.

Use "nexusshell [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := nexusconfig.Load(cfgFile)
		if err != nil {
			return err
		}
		return logger.Init(logger.Config{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			Output: cfg.Logging.Output,
		})
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once by main.main().
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/nexusshell/config.yaml)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(job.Cmd)
	rootCmd.AddCommand(plugin.Cmd)
	rootCmd.AddCommand(eval.Cmd)
	rootCmd.AddCommand(zstd.Cmd)
	rootCmd.AddCommand(keys.Cmd)
	rootCmd.AddCommand(config.Cmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.Printf("nexusshell %s (commit %s, built %s)\n", Version, Commit, Date)
		return nil
	},
}

// GetConfigFile returns the config file path from the global flag.
func GetConfigFile() string {
	return cfgFile
}

// PrintErr prints an error message to stderr.
func PrintErr(format string, args ...any) {
	rootCmd.PrintErrf(format+"\n", args...)
}

// Exit prints an error and exits with code 1.
func Exit(format string, args ...any) {
	PrintErr(format, args...)
	os.Exit(1)
}

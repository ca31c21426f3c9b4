package config

import (
	"github.com/spf13/cobra"

	"github.com/nexusshell/nexusshell/internal/cli/output"
	nexusconfig "github.com/nexusshell/nexusshell/internal/config"
)

var showOutput string

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the resolved configuration",
	Long: `Display the configuration NexusShell would run with: the config file
merged with environment overrides and defaults.

Examples:
  nexusshell config show
  nexusshell config show --output json
  nexusshell --config /etc/nexusshell/config.yaml config show`,
	RunE: runConfigShow,
}

func init() {
	showCmd.Flags().StringVarP(&showOutput, "output", "o", "yaml", "Output format (yaml|json)")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := nexusconfig.Load(configPath)
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(showOutput)
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(cmd.OutOrStdout(), cfg)
	default:
		return output.PrintYAML(cmd.OutOrStdout(), cfg)
	}
}

package config

import (
	"github.com/spf13/cobra"

	nexusconfig "github.com/nexusshell/nexusshell/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Load and validate a configuration file without starting anything.

Exits non-zero and prints the validation failure if the file is malformed
or violates a field constraint (e.g. codec.max_block_size exceeding the
RFC 8878 ceiling).`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := nexusconfig.Load(configPath)
	if err != nil {
		return err
	}
	if err := nexusconfig.Validate(cfg); err != nil {
		return err
	}

	cmd.Println("configuration is valid")
	return nil
}

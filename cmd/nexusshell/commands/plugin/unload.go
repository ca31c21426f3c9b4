package plugin

import (
	"fmt"

	"github.com/spf13/cobra"

	nexusconfig "github.com/nexusshell/nexusshell/internal/config"
	"github.com/nexusshell/nexusshell/internal/core/security/verify"
)

var unloadManifestPath string

var unloadCmd = &cobra.Command{
	Use:   "unload <plugin-id>",
	Short: "Load a manifest, unload one plugin, and print remaining state",
	Args:  cobra.ExactArgs(1),
	RunE:  runUnload,
}

func init() {
	unloadCmd.Flags().StringVar(&unloadManifestPath, "manifest", "plugins.yaml", "path to a YAML plugin manifest")
}

func runUnload(cmd *cobra.Command, args []string) error {
	targetID := args[0]

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := nexusconfig.Load(configPath)
	if err != nil {
		return err
	}

	m, err := loadManifest(unloadManifestPath)
	if err != nil {
		return err
	}

	hashes, err := wasmHashes(m)
	if err != nil {
		return err
	}

	keys, targets, err := buildTrust(m, hashes)
	if err != nil {
		return err
	}
	verifier := verify.NewVerifier(keys, targets)

	ctx := cmd.Context()
	host := newHost(ctx, cfg, verifier)
	defer host.Close(ctx)

	if err := loadManifestInto(ctx, host, m, hashes); err != nil {
		return err
	}

	if !host.IsLoaded(targetID) {
		return fmt.Errorf("plugin %q is not loaded", targetID)
	}
	if shellErr := host.Unload(ctx, targetID); shellErr != nil {
		return shellErr
	}

	cmd.Printf("unloaded plugin %q\n", targetID)
	cmd.Println("remaining loaded plugins:")
	for _, p := range m.Plugins {
		if p.ID == targetID {
			continue
		}
		if host.IsLoaded(p.ID) {
			version, _ := host.Version(p.ID)
			cmd.Printf("  %s (version %s)\n", p.ID, version)
		}
	}
	return nil
}

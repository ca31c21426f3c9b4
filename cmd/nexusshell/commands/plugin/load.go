package plugin

import (
	"fmt"

	"github.com/spf13/cobra"

	nexusconfig "github.com/nexusshell/nexusshell/internal/config"
	"github.com/nexusshell/nexusshell/internal/core/security/verify"
)

var (
	loadManifestPath string
	loadPluginID     string
)

var loadCmd = &cobra.Command{
	Use:   "load <plugin-id>",
	Short: "Verify and load a single plugin from a manifest",
	Args:  cobra.ExactArgs(1),
	RunE:  runLoad,
}

func init() {
	loadCmd.Flags().StringVar(&loadManifestPath, "manifest", "plugins.yaml", "path to a YAML plugin manifest")
}

func runLoad(cmd *cobra.Command, args []string) error {
	loadPluginID = args[0]

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := nexusconfig.Load(configPath)
	if err != nil {
		return err
	}

	m, err := loadManifest(loadManifestPath)
	if err != nil {
		return err
	}

	var entry *pluginEntry
	for i := range m.Plugins {
		if m.Plugins[i].ID == loadPluginID {
			entry = &m.Plugins[i]
			break
		}
	}
	if entry == nil {
		return fmt.Errorf("plugin %q not found in manifest %s", loadPluginID, loadManifestPath)
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

	single := &pluginManifest{
		Plugins:          []pluginEntry{*entry},
		TargetsVersion:   m.TargetsVersion,
		TargetsSignature: m.TargetsSignature,
		TargetsKeyID:     m.TargetsKeyID,
		TargetsPublicKey: m.TargetsPublicKey,
	}
	if err := loadManifestInto(ctx, host, single, hashes); err != nil {
		return err
	}

	version, _ := host.Version(loadPluginID)
	cmd.Printf("loaded plugin %q version %s (capabilities: %v)\n", loadPluginID, version, entry.Capabilities)
	return nil
}

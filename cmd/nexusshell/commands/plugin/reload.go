package plugin

import (
	"fmt"

	"github.com/spf13/cobra"

	nexusconfig "github.com/nexusshell/nexusshell/internal/config"
	"github.com/nexusshell/nexusshell/internal/core/security/verify"
)

var (
	reloadManifestPath  string
	reloadCandidatePath string
)

var reloadCmd = &cobra.Command{
	Use:   "reload <plugin-id>",
	Short: "Swap a loaded plugin for a new compiled module",
	Long: `Loads every plugin in --manifest into a fresh host, then swaps the
named plugin for the version described in --candidate. The candidate's
signing key is trusted into the same key store and its targets
document accepted into the same targets store, so it must carry a
strictly higher version than --manifest's: the rollback protection a
long-lived host would enforce across a real hot reload. The old
instance is then unloaded before the new one is verified and
instantiated, same as the directory watcher's reload sequence.`,
	Args: cobra.ExactArgs(1),
	RunE: runReload,
}

func init() {
	reloadCmd.Flags().StringVar(&reloadManifestPath, "manifest", "plugins.yaml", "path to the currently loaded plugin manifest")
	reloadCmd.Flags().StringVar(&reloadCandidatePath, "candidate", "candidate.yaml", "path to a manifest describing the replacement plugin version")
}

func runReload(cmd *cobra.Command, args []string) error {
	targetID := args[0]

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := nexusconfig.Load(configPath)
	if err != nil {
		return err
	}

	current, err := loadManifest(reloadManifestPath)
	if err != nil {
		return err
	}
	currentHashes, err := wasmHashes(current)
	if err != nil {
		return err
	}

	keys := verify.NewKeyStore()
	targets := verify.NewTargetsStore()
	if err := applyManifestTrust(keys, targets, current, currentHashes); err != nil {
		return err
	}
	verifier := verify.NewVerifier(keys, targets)

	ctx := cmd.Context()
	host := newHost(ctx, cfg, verifier)
	defer host.Close(ctx)

	if err := loadManifestInto(ctx, host, current, currentHashes); err != nil {
		return err
	}
	if !host.IsLoaded(targetID) {
		return fmt.Errorf("plugin %q is not loaded by %s", targetID, reloadManifestPath)
	}
	oldVersion, _ := host.Version(targetID)

	candidate, err := loadManifest(reloadCandidatePath)
	if err != nil {
		return err
	}
	var entry *pluginEntry
	for i := range candidate.Plugins {
		if candidate.Plugins[i].ID == targetID {
			entry = &candidate.Plugins[i]
			break
		}
	}
	if entry == nil {
		return fmt.Errorf("plugin %q not found in candidate manifest %s", targetID, reloadCandidatePath)
	}

	candidateHashes, err := wasmHashes(candidate)
	if err != nil {
		return err
	}
	if err := applyManifestTrust(keys, targets, candidate, candidateHashes); err != nil {
		return err
	}

	if shellErr := host.Unload(ctx, targetID); shellErr != nil {
		return shellErr
	}

	single := &pluginManifest{Plugins: []pluginEntry{*entry}}
	if err := loadManifestInto(ctx, host, single, candidateHashes); err != nil {
		return err
	}

	newVersion, _ := host.Version(targetID)
	cmd.Printf("reloaded plugin %q: %s -> %s\n", targetID, oldVersion, newVersion)
	return nil
}

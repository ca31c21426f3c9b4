// Package plugin implements the plugin subcommand: load/list/unload/reload
// operations against the WASM plugin host.
package plugin

import (
	"github.com/spf13/cobra"
)

// Cmd is the plugin subcommand.
var Cmd = &cobra.Command{
	Use:   "plugin",
	Short: "WASM plugin host operations",
	Long: `Load, list, unload, and hot-reload WASM plugins through the
capability-sandboxed plugin host.

Since the host holds loaded modules in memory, each invocation of this
command loads the plugins named in --manifest into a fresh host before
performing the requested operation.

Subcommands:
  load     Verify and load a single plugin from a manifest
  list     Load every plugin in a manifest and print host state
  unload   Load a manifest, unload one plugin, and print remaining state
  reload   Swap a loaded plugin for a new compiled module`,
}

func init() {
	Cmd.AddCommand(loadCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(unloadCmd)
	Cmd.AddCommand(reloadCmd)
}

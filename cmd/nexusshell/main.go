// Command nexusshell is the CLI entry point for NexusShell Core.
package main

import (
	"os"

	"github.com/nexusshell/nexusshell/cmd/nexusshell/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		commands.PrintErr("%v", err)
		os.Exit(1)
	}
}

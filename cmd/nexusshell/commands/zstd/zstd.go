// Package zstd implements the zstd store-mode encode/decode subcommands.
package zstd

import (
	"github.com/spf13/cobra"
)

// Cmd is the zstd subcommand.
var Cmd = &cobra.Command{
	Use:   "zstd",
	Short: "RFC 8878 zstd store-mode codec",
	Long: `Encode and decode files as RFC 8878 zstd frames using the
uncompressed store-mode (RAW/RLE block) codec.

Subcommands:
  encode  Encode a file into a zstd frame
  decode  Decode a zstd frame back to its original bytes`,
}

func init() {
	Cmd.AddCommand(encodeCmd)
	Cmd.AddCommand(decodeCmd)
}

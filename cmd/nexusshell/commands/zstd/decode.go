package zstd

import (
	"os"

	"github.com/spf13/cobra"

	nexuscodec "github.com/nexusshell/nexusshell/internal/core/codec/zstd"
)

var decodeOutput string

var decodeCmd = &cobra.Command{
	Use:   "decode <input>",
	Short: "Decode a zstd frame back to its original bytes",
	Args:  cobra.ExactArgs(1),
	Long: `Decode a zstd frame produced by "zstd encode" (or any frame
containing only RAW/RLE blocks) and write the original payload to
--output (or <input> with a trailing .zst stripped).

Examples:
  nexusshell zstd decode payload.bin.zst
  nexusshell zstd decode payload.bin.zst --output payload.bin`,
	RunE: runDecode,
}

func init() {
	decodeCmd.Flags().StringVarP(&decodeOutput, "output", "o", "", "output path (default: <input> with .zst stripped)")
}

func runDecode(cmd *cobra.Command, args []string) error {
	input := args[0]
	out := decodeOutput
	if out == "" {
		out = trimZstSuffix(input)
	}

	frame, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	payload, err := nexuscodec.DecodeBytes(frame)
	if err != nil {
		return err
	}

	if err := os.WriteFile(out, payload, 0o644); err != nil {
		return err
	}

	cmd.Printf("decoded %d bytes into %d bytes (%s)\n", len(frame), len(payload), out)
	return nil
}

func trimZstSuffix(path string) string {
	const suffix = ".zst"
	if len(path) > len(suffix) && path[len(path)-len(suffix):] == suffix {
		return path[:len(path)-len(suffix)]
	}
	return path + ".decoded"
}

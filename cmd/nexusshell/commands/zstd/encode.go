package zstd

import (
	"os"

	"github.com/spf13/cobra"

	nexuscodec "github.com/nexusshell/nexusshell/internal/core/codec/zstd"
)

var (
	encodeOutput    string
	encodeBlockSize int
)

var encodeCmd = &cobra.Command{
	Use:   "encode <input>",
	Short: "Encode a file into a zstd store-mode frame",
	Args:  cobra.ExactArgs(1),
	Long: `Encode <input> into an RFC 8878 zstd frame containing only
RAW/RLE (store-mode) blocks, and write it to --output (or <input>.zst).

Examples:
  nexusshell zstd encode payload.bin
  nexusshell zstd encode payload.bin --output payload.bin.zst --block-size 65536`,
	RunE: runEncode,
}

func init() {
	encodeCmd.Flags().StringVarP(&encodeOutput, "output", "o", "", "output path (default: <input>.zst)")
	encodeCmd.Flags().IntVar(&encodeBlockSize, "block-size", nexuscodec.DefaultMaxBlockSize, "maximum block payload size in bytes")
}

func runEncode(cmd *cobra.Command, args []string) error {
	input := args[0]
	out := encodeOutput
	if out == "" {
		out = input + ".zst"
	}

	payload, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	frame, err := nexuscodec.Encode(payload, encodeBlockSize)
	if err != nil {
		return err
	}

	if err := os.WriteFile(out, frame, 0o644); err != nil {
		return err
	}

	cmd.Printf("encoded %d bytes into %d bytes (%s)\n", len(payload), len(frame), out)
	return nil
}

package plugin

import (
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/nexusshell/nexusshell/internal/cli/output"
	nexusconfig "github.com/nexusshell/nexusshell/internal/config"
	"github.com/nexusshell/nexusshell/internal/core/security/verify"
)

var (
	listManifestPath string
	listOutput       string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Load every plugin in a manifest and print host state",
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listManifestPath, "manifest", "plugins.yaml", "path to a YAML plugin manifest")
	listCmd.Flags().StringVarP(&listOutput, "output", "o", "table", "Output format (table|json|yaml)")
}

func runList(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := nexusconfig.Load(configPath)
	if err != nil {
		return err
	}

	m, err := loadManifest(listManifestPath)
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

	rows := make(pluginRows, 0, len(m.Plugins))
	for _, p := range m.Plugins {
		version, _ := host.Version(p.ID)
		metrics, _ := host.Metrics(p.ID)
		rows = append(rows, pluginRow{
			ID:       p.ID,
			Version:  version,
			Loaded:   host.IsLoaded(p.ID),
			Calls:    metrics.Calls,
			Failures: metrics.Failures,
			MeanTime: metrics.MeanDur,
		})
	}

	format, err := output.ParseFormat(listOutput)
	if err != nil {
		return err
	}
	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, rows)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, rows)
	default:
		return output.PrintTable(os.Stdout, rows)
	}
}

type pluginRow struct {
	ID       string
	Version  string
	Loaded   bool
	Calls    uint64
	Failures uint64
	MeanTime time.Duration
}

type pluginRows []pluginRow

func (p pluginRows) Headers() []string {
	return []string{"ID", "VERSION", "LOADED", "CALLS", "FAILURES", "MEAN TIME"}
}

func (p pluginRows) Rows() [][]string {
	out := make([][]string, 0, len(p))
	for _, r := range p {
		out = append(out, []string{
			r.ID,
			r.Version,
			strconv.FormatBool(r.Loaded),
			strconv.FormatUint(r.Calls, 10),
			strconv.FormatUint(r.Failures, 10),
			r.MeanTime.String(),
		})
	}
	return out
}

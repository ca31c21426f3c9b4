package plugin

import (
	"context"
	"os"

	nexusconfig "github.com/nexusshell/nexusshell/internal/config"
	"github.com/nexusshell/nexusshell/internal/core/plugin"
	"github.com/nexusshell/nexusshell/internal/core/resource"
	"github.com/nexusshell/nexusshell/internal/core/security"
	"github.com/nexusshell/nexusshell/internal/core/security/verify"
)

// newHost builds a plugin.Host over cfg's resource limits and sample cap.
func newHost(ctx context.Context, cfg *nexusconfig.Config, verifier *verify.Verifier) *plugin.Host {
	resources := resource.NewTable(resource.Limits{
		MaxTotalBytes:       int64(cfg.PluginRuntime.ResourceLimits.MaxMemory),
		MaxBytesPerPlugin:   int64(cfg.PluginRuntime.ResourceLimits.MaxMemoryPerPlugin),
		MaxResources:        cfg.PluginRuntime.ResourceLimits.MaxResources,
		MaxResourcesPerType: cfg.PluginRuntime.ResourceLimits.MaxResourcesPerType,
		MaxLifetime:         cfg.PluginRuntime.ResourceLimits.MaxLifetime,
		MaxIdleTime:         cfg.PluginRuntime.ResourceLimits.MaxIdleTime,
	})
	return plugin.NewHost(ctx, verifier, resources, cfg.PluginRuntime.PerformanceMonitoring.MaxSamples)
}

// wasmHashes computes each manifest entry's content hash, which both the
// targets document and the sidecar must agree on.
func wasmHashes(m *pluginManifest) (map[string]string, error) {
	hashes := make(map[string]string, len(m.Plugins))
	for _, p := range m.Plugins {
		hash, _, err := hashFile(p.WasmPath)
		if err != nil {
			return nil, err
		}
		hashes[p.ID] = hash
	}
	return hashes, nil
}

// loadManifestInto loads every entry of m into host, in manifest order.
func loadManifestInto(ctx context.Context, host *plugin.Host, m *pluginManifest, hashes map[string]string) error {
	for _, p := range m.Plugins {
		wasmBytes, err := os.ReadFile(p.WasmPath)
		if err != nil {
			return err
		}

		sidecar := verify.Sidecar{
			Hash:      hashes[p.ID],
			Signature: p.SidecarSignature,
			KeyID:     p.SidecarKeyID,
			Algorithm: p.SidecarAlgorithm,
			Timestamp: p.SidecarTimestamp,
			ExpiresAt: p.SidecarExpiresAt,
		}
		metadata := security.PluginMetadata{ID: p.ID, Capabilities: p.Capabilities}
		policy := resolvePolicy(p.Policy)

		if shellErr := host.Load(ctx, p.ID, wasmBytes, metadata, policy, sidecar, p.Version); shellErr != nil {
			return shellErr
		}
	}
	return nil
}

package security

import (
	"github.com/nexusshell/nexusshell/internal/core/shellerr"
)

// PluginMetadata is the subset of a loaded module's declared
// requirements that the policy engine inspects.
type PluginMetadata struct {
	ID           string
	Capabilities []string
}

// ValidatePlugin resolves metadata's declared capabilities against
// policy, returning ValidationFailed for capabilities absent from the
// canonical registry, and CapabilityDenied for a policy rejection or a
// risk level exceeding policy.MaxRisk.
func ValidatePlugin(policy Policy, metadata PluginMetadata) *shellerr.ShellError {
	for _, name := range metadata.Capabilities {
		cap, ok := Lookup(name)
		if !ok {
			return shellerr.New(shellerr.KindValidationFailed, "unknown capability %q", name).
				WithContext("plugin_id", metadata.ID)
		}

		if !policy.Permits(name) {
			return shellerr.New(shellerr.KindCapabilityDenied, "capability %q denied by policy %q", name, policy.Name).
				WithContext("plugin_id", metadata.ID).
				WithContext("policy", policy.Name)
		}

		if cap.Risk > policy.MaxRisk {
			return shellerr.New(shellerr.KindCapabilityDenied,
				"capability %q risk %s exceeds policy %q max risk %s", name, cap.Risk, policy.Name, policy.MaxRisk).
				WithContext("plugin_id", metadata.ID).
				WithContext("policy", policy.Name)
		}
	}
	return nil
}

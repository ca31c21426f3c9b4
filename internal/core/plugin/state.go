package plugin

import (
	"time"

	"github.com/nexusshell/nexusshell/internal/core/resource"
	"github.com/nexusshell/nexusshell/internal/core/security"
)

// ComponentState is the per-plugin runtime context created at load time:
// the resolved security policy the plugin executes under, its private
// view of the shared resource table, and identifying metadata.
type ComponentState struct {
	PluginID     string
	Version      string
	Policy       security.Policy
	Capabilities CapabilityList
	Resources    *resource.Table
	LoadedAt     time.Time
}

// Hook is a lifecycle callback. A returned error is logged by the
// caller but never aborts the surrounding operation, matching the
// resource table's panic-safe callback contract.
type Hook func(pluginID string) error

// Hooks groups the named lifecycle callback sets a Host fires around
// load, execute, and unload.
type Hooks struct {
	BeforeInit    []Hook
	AfterInit     []Hook
	BeforeExecute []Hook
	AfterExecute  []Hook
	OnError       []Hook
	BeforeCleanup []Hook
	AfterCleanup  []Hook
	BeforeReload  []Hook
	ReloadFailed  []Hook
}

package plugin

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/multierr"

	"github.com/nexusshell/nexusshell/internal/core/resource"
	"github.com/nexusshell/nexusshell/internal/core/security"
	"github.com/nexusshell/nexusshell/internal/core/security/verify"
	"github.com/nexusshell/nexusshell/internal/core/shellerr"
	"github.com/nexusshell/nexusshell/internal/logger"
)

// LoadedPlugin is a registered, instantiated module and its runtime
// state. mu guards against concurrent calls racing a hot-reload swap:
// Execute and Unload each hold it exclusively, so calls on one plugin
// run one at a time.
type LoadedPlugin struct {
	mu       sync.RWMutex
	ID       string
	Version  string
	Compiled wazero.CompiledModule
	Instance api.Module
	State    *ComponentState
}

// Host is the plugin runtime: a wazero runtime shared by every loaded
// module, the loaded-plugins registry, the verification pipeline run
// on load, lifecycle hooks, and the rolling performance monitor.
type Host struct {
	mu        sync.RWMutex
	runtime   wazero.Runtime
	loaded    map[string]*LoadedPlugin
	hooks     Hooks
	monitor   *Monitor
	verifier  *verify.Verifier
	resources *resource.Table
}

// NewHost constructs a Host. sampleCap bounds the performance monitor's
// ring buffer.
func NewHost(ctx context.Context, verifier *verify.Verifier, resources *resource.Table, sampleCap int) *Host {
	return &Host{
		runtime:   wazero.NewRuntime(ctx),
		loaded:    make(map[string]*LoadedPlugin),
		monitor:   NewMonitor(sampleCap),
		verifier:  verifier,
		resources: resources,
	}
}

// SetHooks replaces the lifecycle hook set fired around load, execute,
// and unload.
func (h *Host) SetHooks(hooks Hooks) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = hooks
}

// fire invokes every hook in a set, recovering a panicking hook and
// combining every error (panic or returned) into one logged line
// rather than letting a single bad hook abort the caller's operation.
func fire(pluginID, event string, hooks []Hook) {
	if len(hooks) == 0 {
		return
	}
	var combined error
	for _, hook := range hooks {
		combined = multierr.Append(combined, runHookSafely(pluginID, hook))
	}
	if combined != nil {
		logger.Warn("plugin lifecycle hook failed", "plugin_id", pluginID, "event", event, "error", combined.Error())
	}
}

func runHookSafely(pluginID string, hook Hook) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = multierr.Append(err, shellerr.New(shellerr.KindBug, "hook panicked: %v", r).WithContext("plugin_id", pluginID))
		}
	}()
	return hook(pluginID)
}

// Load reads, verifies, validates, compiles, and instantiates a plugin
// artifact, registering it under pluginID if every step succeeds. The
// artifact's hash is computed here from wasmBytes directly, not taken
// on a caller's word, so a tampered artifact can't ride in behind a
// correct-looking hash.
func (h *Host) Load(ctx context.Context, pluginID string, wasmBytes []byte, metadata security.PluginMetadata, policy security.Policy, sidecar verify.Sidecar, version string) *shellerr.ShellError {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.loaded[pluginID]; exists {
		return shellerr.New(shellerr.KindPluginAlreadyLoaded, "plugin %q is already loaded", pluginID).
			WithContext("plugin_id", pluginID)
	}

	sum := sha256.Sum256(wasmBytes)
	sidecar.Hash = hex.EncodeToString(sum[:])
	result := h.verifier.Verify(pluginID, sidecar, policy.RequireSignature, time.Now())
	if result.Error != nil {
		return result.Error
	}

	if err := security.ValidatePlugin(policy, metadata); err != nil {
		return err
	}

	compiled, err := h.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return shellerr.Wrap(shellerr.KindPluginLoadFailed, err, "failed to compile plugin %q", pluginID).
			WithContext("plugin_id", pluginID)
	}

	capList := enumerateCapabilities(compiled)

	state := &ComponentState{
		PluginID:     pluginID,
		Version:      version,
		Policy:       policy,
		Capabilities: capList,
		Resources:    h.resources,
		LoadedAt:     time.Now(),
	}

	fire(pluginID, "before_init", h.hooks.BeforeInit)

	instance, err := h.runtime.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(pluginID))
	if err != nil {
		compiled.Close(ctx)
		return shellerr.Wrap(shellerr.KindPluginLoadFailed, err, "failed to instantiate plugin %q", pluginID).
			WithContext("plugin_id", pluginID)
	}

	if mem := instance.Memory(); mem != nil {
		capList.Memories = append(capList.Memories, MemoryDescriptor{Name: "memory", Min: mem.Size() / 65536})
	}
	state.Capabilities = capList

	fire(pluginID, "after_init", h.hooks.AfterInit)

	h.loaded[pluginID] = &LoadedPlugin{
		ID:       pluginID,
		Version:  version,
		Compiled: compiled,
		Instance: instance,
		State:    state,
	}
	return nil
}

// enumerateCapabilities builds a CapabilityList from a compiled
// module's export/import tables. wazero does not expose table/global
// introspection on a CompiledModule prior to instantiation, so those
// fields are populated only where the instantiated api.Module exposes
// them (see Load's memory handling above); an unpopulated Tables or
// Globals slice reflects that limit, not an omission.
func enumerateCapabilities(compiled wazero.CompiledModule) CapabilityList {
	var list CapabilityList
	for name, def := range compiled.ExportedFunctions() {
		list.ExportedFunctions = append(list.ExportedFunctions, FunctionSignature{
			Name:    name,
			Params:  toValueKinds(def.ParamTypes()),
			Results: toValueKinds(def.ResultTypes()),
		})
	}
	for _, def := range compiled.ImportedFunctions() {
		modName, fnName, _ := def.Import()
		list.ImportedFunctions = append(list.ImportedFunctions, FunctionSignature{
			Name:    modName + "." + fnName,
			Params:  toValueKinds(def.ParamTypes()),
			Results: toValueKinds(def.ResultTypes()),
		})
	}
	return list
}

func toValueKinds(types []api.ValueType) []ValueKind {
	out := make([]ValueKind, len(types))
	for i, t := range types {
		switch t {
		case api.ValueTypeI32:
			out[i] = KindS32
		case api.ValueTypeI64:
			out[i] = KindS64
		case api.ValueTypeF32:
			out[i] = KindFloat32
		case api.ValueTypeF64:
			out[i] = KindFloat64
		default:
			out[i] = KindS32
		}
	}
	return out
}

// Execute calls function on pluginID with args, dispatching host.*
// functions in-process instead of into the guest module.
func (h *Host) Execute(ctx context.Context, pluginID, function string, args []ComponentValue) (ComponentValue, *shellerr.ShellError) {
	h.mu.RLock()
	loadedPlugin, ok := h.loaded[pluginID]
	h.mu.RUnlock()
	if !ok {
		return ComponentValue{}, shellerr.New(shellerr.KindPluginNotFound, "plugin %q is not loaded", pluginID).
			WithContext("plugin_id", pluginID)
	}

	loadedPlugin.mu.Lock()
	defer loadedPlugin.mu.Unlock()

	fire(pluginID, "before_execute", h.hooks.BeforeExecute)

	var memBefore uint64
	if mem := loadedPlugin.Instance.Memory(); mem != nil {
		memBefore = uint64(mem.Size())
	}

	start := time.Now()
	result, execErr := h.dispatch(ctx, loadedPlugin, function, args)
	duration := time.Since(start)

	var memAfter uint64
	if mem := loadedPlugin.Instance.Memory(); mem != nil {
		memAfter = uint64(mem.Size())
	}

	h.monitor.RecordSample(Sample{
		Timestamp:    start,
		PluginID:     pluginID,
		Operation:    function,
		Duration:     duration,
		MemoryBefore: memBefore,
		MemoryAfter:  memAfter,
		Success:      execErr == nil,
	})

	if execErr != nil {
		fire(pluginID, "on_error", h.hooks.OnError)
	}
	fire(pluginID, "after_execute", h.hooks.AfterExecute)

	return result, execErr
}

func (h *Host) dispatch(ctx context.Context, lp *LoadedPlugin, function string, args []ComponentValue) (ComponentValue, *shellerr.ShellError) {
	if isHostFunction(function) {
		return callHostFunction(lp.ID, function, args)
	}

	sig, ok := lp.State.Capabilities.Export(function)
	if !ok {
		return ComponentValue{}, unknownFunctionError(lp.ID, function)
	}

	fn := lp.Instance.ExportedFunction(function)
	if fn == nil {
		return ComponentValue{}, unknownFunctionError(lp.ID, function)
	}

	words := make([]uint64, len(args))
	for i, arg := range args {
		words[i] = marshalArg(lp.Instance, arg)
	}

	results, err := fn.Call(ctx, words...)
	if err != nil {
		return ComponentValue{}, shellerr.Wrap(shellerr.KindPluginExecutionFailed, err, "plugin %q function %q failed", lp.ID, function).
			WithContext("plugin_id", lp.ID).WithContext("function", function)
	}

	if len(sig.Results) == 0 || len(results) == 0 {
		return ComponentValue{}, nil
	}
	return unmarshalResult(sig.Results[0], results[0]), nil
}

// Unload force-cleans the plugin's resources, removes it from the
// registry, and drops its performance metrics.
func (h *Host) Unload(ctx context.Context, pluginID string) *shellerr.ShellError {
	h.mu.Lock()
	defer h.mu.Unlock()

	lp, ok := h.loaded[pluginID]
	if !ok {
		return shellerr.New(shellerr.KindPluginNotFound, "plugin %q is not loaded", pluginID).WithContext("plugin_id", pluginID)
	}

	fire(pluginID, "before_cleanup", h.hooks.BeforeCleanup)

	h.resources.CleanupPlugin(pluginID)

	lp.mu.Lock()
	_ = lp.Instance.Close(ctx)
	_ = lp.Compiled.Close(ctx)
	lp.mu.Unlock()

	delete(h.loaded, pluginID)
	h.monitor.DropPlugin(pluginID)

	fire(pluginID, "after_cleanup", h.hooks.AfterCleanup)
	return nil
}

// Metrics returns the rolling performance aggregate for pluginID.
func (h *Host) Metrics(pluginID string) (PluginMetrics, bool) {
	return h.monitor.Metrics(pluginID)
}

// SetMetricsObserver installs the metrics sink notified on every
// executed call, independent of the in-memory rolling aggregate.
func (h *Host) SetMetricsObserver(observer ExecutionObserver) {
	h.monitor.SetObserver(observer)
}

// Collect returns the host-wide performance aggregate.
func (h *Host) Collect() SystemAggregate {
	h.mu.RLock()
	defer h.mu.RUnlock()
	agg := h.monitor.Collect()
	agg.ActivePluginCount = len(h.loaded)
	return agg
}

// IsLoaded reports whether pluginID is currently registered.
func (h *Host) IsLoaded(pluginID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.loaded[pluginID]
	return ok
}

// Version returns the loaded version of pluginID.
func (h *Host) Version(pluginID string) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	lp, ok := h.loaded[pluginID]
	if !ok {
		return "", false
	}
	return lp.Version, true
}

// Close shuts down the shared wazero runtime, closing every loaded
// module.
func (h *Host) Close(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.runtime.Close(ctx)
}

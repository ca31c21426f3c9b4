package plugin

import (
	"encoding/json"

	"github.com/tetratelabs/wazero/api"

	"github.com/nexusshell/nexusshell/internal/core/shellerr"
	"github.com/nexusshell/nexusshell/internal/logger"
)

// scratchOffset is the fixed guest-memory offset used to stage a
// string/list argument when the module exports no alloc function. It
// is a pragmatic fallback, not a general-purpose allocator: every call
// reuses the same region, which is safe because Host.Execute holds the
// loaded plugin's lock exclusively for the whole call, so calls on one
// plugin never overlap.
const scratchOffset = 1 << 16

// marshalArg converts one ComponentValue into the uint64 words wazero's
// api.Function.Call expects. Scalars pass by bit pattern. Strings and
// lists are serialized into guest memory: via an exported "alloc(len)
// -> ptr" function if present, else written to a fixed scratch region,
// else a zero pointer is passed and a warning logged.
func marshalArg(mod api.Module, v ComponentValue) uint64 {
	switch v.Kind {
	case KindString, KindList:
		bytes := encodeForGuest(v)
		ptr := stageInGuestMemory(mod, bytes)
		return (uint64(ptr) << 32) | uint64(len(bytes))
	default:
		return v.AsUint64Bits()
	}
}

func encodeForGuest(v ComponentValue) []byte {
	if v.Kind == KindString {
		return []byte(v.Str)
	}
	b, err := json.Marshal(v.List)
	if err != nil {
		return nil
	}
	return b
}

func stageInGuestMemory(mod api.Module, data []byte) uint32 {
	if alloc := mod.ExportedFunction("alloc"); alloc != nil {
		results, err := alloc.Call(nil, uint64(len(data)))
		if err == nil && len(results) > 0 {
			ptr := uint32(results[0])
			if mod.Memory().Write(ptr, data) {
				return ptr
			}
		}
	}

	if mod.Memory().Write(scratchOffset, data) {
		return scratchOffset
	}

	logger.Warn("plugin argument could not be staged into guest memory; passing null pointer")
	return 0
}

// unmarshalResult converts a single raw uint64 WASM result word back
// into a ComponentValue of the declared kind. Pointers (string/list
// results) are left as the raw offset for caller-side interpretation,
// matching the "pointers left as-is for caller handling" contract.
func unmarshalResult(kind ValueKind, raw uint64) ComponentValue {
	switch kind {
	case KindBool:
		return Bool(raw != 0)
	case KindS8, KindS16, KindS32:
		return ComponentValue{Kind: kind, Int: int64(int32(raw))}
	case KindS64:
		return S64(int64(raw))
	case KindU8, KindU16, KindU32:
		return ComponentValue{Kind: kind, Uint: raw & 0xFFFFFFFF}
	case KindU64:
		return U64(raw)
	case KindFloat32:
		return Float32(f32FromBits(uint32(raw)))
	case KindFloat64:
		return Float64(f64FromBits(raw))
	default:
		// String/List: raw is a guest-memory pointer, returned as-is via Uint.
		return ComponentValue{Kind: kind, Uint: raw}
	}
}

func unknownFunctionError(pluginID, function string) *shellerr.ShellError {
	return shellerr.New(shellerr.KindUnknownFunction, "plugin %q has no export named %q", pluginID, function).
		WithContext("plugin_id", pluginID).
		WithContext("function", function)
}

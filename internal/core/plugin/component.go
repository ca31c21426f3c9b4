// Package plugin implements the sandboxed WebAssembly plugin host: module
// loading with signature/capability validation, guest ABI marshaling,
// execution dispatch including in-process host.* functions, lifecycle
// hooks, hot reload, and a rolling performance monitor.
package plugin

import "fmt"

// ValueKind tags the neutral component value union exchanged across the
// guest ABI boundary.
type ValueKind int

const (
	KindBool ValueKind = iota
	KindS8
	KindS16
	KindS32
	KindS64
	KindU8
	KindU16
	KindU32
	KindU64
	KindFloat32
	KindFloat64
	KindString
	KindList
)

func (k ValueKind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindS8:
		return "s8"
	case KindS16:
		return "s16"
	case KindS32:
		return "s32"
	case KindS64:
		return "s64"
	case KindU8:
		return "u8"
	case KindU16:
		return "u16"
	case KindU32:
		return "u32"
	case KindU64:
		return "u64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindString:
		return "string"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// ComponentValue is the ABI-neutral value type passed to and returned
// from guest exports. Exactly one of the typed fields is meaningful,
// selected by Kind.
type ComponentValue struct {
	Kind   ValueKind
	Bool   bool
	Int    int64   // holds S8..S64
	Uint   uint64  // holds U8..U64
	Float  float64 // holds Float32/Float64 (Float32 stored widened)
	Str    string
	List   []ComponentValue
}

func Bool(v bool) ComponentValue        { return ComponentValue{Kind: KindBool, Bool: v} }
func S32(v int32) ComponentValue        { return ComponentValue{Kind: KindS32, Int: int64(v)} }
func S64(v int64) ComponentValue        { return ComponentValue{Kind: KindS64, Int: v} }
func U32(v uint32) ComponentValue       { return ComponentValue{Kind: KindU32, Uint: uint64(v)} }
func U64(v uint64) ComponentValue       { return ComponentValue{Kind: KindU64, Uint: v} }
func Float64(v float64) ComponentValue  { return ComponentValue{Kind: KindFloat64, Float: v} }
func Float32(v float32) ComponentValue  { return ComponentValue{Kind: KindFloat32, Float: float64(v)} }
func String(v string) ComponentValue    { return ComponentValue{Kind: KindString, Str: v} }
func List(v []ComponentValue) ComponentValue { return ComponentValue{Kind: KindList, List: v} }

// String renders a ComponentValue for diagnostics.
func (v ComponentValue) String() string {
	switch v.Kind {
	case KindBool:
		return fmt.Sprintf("bool(%v)", v.Bool)
	case KindS8, KindS16, KindS32, KindS64:
		return fmt.Sprintf("%s(%d)", v.Kind, v.Int)
	case KindU8, KindU16, KindU32, KindU64:
		return fmt.Sprintf("%s(%d)", v.Kind, v.Uint)
	case KindFloat32, KindFloat64:
		return fmt.Sprintf("%s(%g)", v.Kind, v.Float)
	case KindString:
		return fmt.Sprintf("string(%q)", v.Str)
	case KindList:
		return fmt.Sprintf("list(len=%d)", len(v.List))
	default:
		return "invalid"
	}
}

// AsUint64Bits returns the value's bit pattern as a uint64, the form
// wazero's api.Function.Call expects for every numeric WASM param/result.
func (v ComponentValue) AsUint64Bits() uint64 {
	switch v.Kind {
	case KindBool:
		if v.Bool {
			return 1
		}
		return 0
	case KindS8, KindS16, KindS32, KindS64:
		return uint64(v.Int)
	case KindU8, KindU16, KindU32, KindU64:
		return v.Uint
	case KindFloat32:
		return uint64(f32bits(float32(v.Float)))
	case KindFloat64:
		return f64bits(v.Float)
	default:
		return 0
	}
}

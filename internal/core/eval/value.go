// Package eval implements the expression and closure runtime: a tagged
// Value union, a scope stack, a slot-indexed closure registry, the
// expression evaluator and its built-in functions, and the separate
// textual macro-expansion layer.
package eval

import "fmt"

// ValueKind tags the Value tagged union.
type ValueKind int

const (
	ValueNull ValueKind = iota
	ValueBool
	ValueInt
	ValueFloat
	ValueString
	ValueSequence
	ValueClosure
)

func (k ValueKind) String() string {
	switch k {
	case ValueNull:
		return "null"
	case ValueBool:
		return "bool"
	case ValueInt:
		return "int"
	case ValueFloat:
		return "float"
	case ValueString:
		return "string"
	case ValueSequence:
		return "sequence"
	case ValueClosure:
		return "closure"
	default:
		return "unknown"
	}
}

// Value is the runtime value tagged union: null, bool, 64-bit signed
// int, 64-bit float, UTF-8 string, an ordered sequence of Value, or a
// closure handle into the process-wide closure registry.
type Value struct {
	Kind     ValueKind
	Bool     bool
	Int      int64
	Float    float64
	Str      string
	Seq      []Value
	Closure  ClosureID
}

func Null() Value                    { return Value{Kind: ValueNull} }
func Bool(b bool) Value              { return Value{Kind: ValueBool, Bool: b} }
func Int(i int64) Value              { return Value{Kind: ValueInt, Int: i} }
func Float(f float64) Value          { return Value{Kind: ValueFloat, Float: f} }
func String(s string) Value          { return Value{Kind: ValueString, Str: s} }
func Sequence(v []Value) Value       { return Value{Kind: ValueSequence, Seq: v} }
func ClosureValue(id ClosureID) Value { return Value{Kind: ValueClosure, Closure: id} }

// Truthy implements the spec's truthiness rule: null/false/0/0.0/
// empty-string/empty-sequence are false, everything else true.
func (v Value) Truthy() bool {
	switch v.Kind {
	case ValueNull:
		return false
	case ValueBool:
		return v.Bool
	case ValueInt:
		return v.Int != 0
	case ValueFloat:
		return v.Float != 0
	case ValueString:
		return v.Str != ""
	case ValueSequence:
		return len(v.Seq) > 0
	case ValueClosure:
		return true
	default:
		return false
	}
}

// Equal performs structural equality.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case ValueNull:
		return true
	case ValueBool:
		return v.Bool == other.Bool
	case ValueInt:
		return v.Int == other.Int
	case ValueFloat:
		return v.Float == other.Float
	case ValueString:
		return v.Str == other.Str
	case ValueClosure:
		return v.Closure == other.Closure
	case ValueSequence:
		if len(v.Seq) != len(other.Seq) {
			return false
		}
		for i := range v.Seq {
			if !v.Seq[i].Equal(other.Seq[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// String renders a Value for diagnostics and macro text interpolation.
func (v Value) String() string {
	switch v.Kind {
	case ValueNull:
		return "null"
	case ValueBool:
		return fmt.Sprintf("%v", v.Bool)
	case ValueInt:
		return fmt.Sprintf("%d", v.Int)
	case ValueFloat:
		return fmt.Sprintf("%g", v.Float)
	case ValueString:
		return v.Str
	case ValueClosure:
		return fmt.Sprintf("closure(%d)", v.Closure)
	case ValueSequence:
		out := "["
		for i, e := range v.Seq {
			if i > 0 {
				out += ", "
			}
			out += e.String()
		}
		return out + "]"
	default:
		return "<invalid>"
	}
}

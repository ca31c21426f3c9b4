package eval

import (
	"strings"

	"github.com/nexusshell/nexusshell/internal/core/shellerr"
)

func registerBuiltins(e *Evaluator) {
	e.Functions["add"] = builtinAdd
	e.Functions["multiply"] = builtinMultiply
	e.Functions["length"] = builtinLength
	e.Functions["uppercase"] = builtinUppercase
	e.Functions["map"] = builtinMap
	e.Functions["filter"] = builtinFilter
	e.Functions["reduce"] = builtinReduce
}

func requireArity(name string, args []Value, n int) *shellerr.ShellError {
	if len(args) != n {
		return shellerr.New(shellerr.KindArityMismatch, "%s expects %d arguments, got %d", name, n, len(args))
	}
	return nil
}

func builtinAdd(e *Evaluator, args []Value) (Value, *shellerr.ShellError) {
	if err := requireArity("add", args, 2); err != nil {
		return Value{}, err
	}
	return arithmetic(args[0], args[1], OpAdd)
}

func builtinMultiply(e *Evaluator, args []Value) (Value, *shellerr.ShellError) {
	if err := requireArity("multiply", args, 2); err != nil {
		return Value{}, err
	}
	return arithmetic(args[0], args[1], OpMul)
}

func builtinLength(e *Evaluator, args []Value) (Value, *shellerr.ShellError) {
	if err := requireArity("length", args, 1); err != nil {
		return Value{}, err
	}
	switch args[0].Kind {
	case ValueString:
		return Int(int64(len(args[0].Str))), nil
	case ValueSequence:
		return Int(int64(len(args[0].Seq))), nil
	default:
		return Value{}, shellerr.New(shellerr.KindTypeMismatch, "length expects a string or sequence, got %s", args[0].Kind)
	}
}

func builtinUppercase(e *Evaluator, args []Value) (Value, *shellerr.ShellError) {
	if err := requireArity("uppercase", args, 1); err != nil {
		return Value{}, err
	}
	if args[0].Kind != ValueString {
		return Value{}, shellerr.New(shellerr.KindTypeMismatch, "uppercase expects a string, got %s", args[0].Kind)
	}
	return String(strings.ToUpper(args[0].Str)), nil
}

// builtinMap applies a closure to every element of a sequence,
// returning a new sequence of results.
func builtinMap(e *Evaluator, args []Value) (Value, *shellerr.ShellError) {
	if err := requireArity("map", args, 2); err != nil {
		return Value{}, err
	}
	seq, fn, err := sequenceAndClosure("map", args)
	if err != nil {
		return Value{}, err
	}
	out := make([]Value, len(seq))
	for i, elem := range seq {
		v, cerr := e.CallClosure(fn, []Value{elem})
		if cerr != nil {
			return Value{}, cerr
		}
		out[i] = v
	}
	return Sequence(out), nil
}

// builtinFilter keeps the elements of a sequence for which the closure
// returns a truthy value.
func builtinFilter(e *Evaluator, args []Value) (Value, *shellerr.ShellError) {
	if err := requireArity("filter", args, 2); err != nil {
		return Value{}, err
	}
	seq, fn, err := sequenceAndClosure("filter", args)
	if err != nil {
		return Value{}, err
	}
	var out []Value
	for _, elem := range seq {
		v, cerr := e.CallClosure(fn, []Value{elem})
		if cerr != nil {
			return Value{}, cerr
		}
		if v.Truthy() {
			out = append(out, elem)
		}
	}
	return Sequence(out), nil
}

// builtinReduce folds a sequence left-to-right via a two-argument
// closure (accumulator, element), seeded with an initial value.
func builtinReduce(e *Evaluator, args []Value) (Value, *shellerr.ShellError) {
	if err := requireArity("reduce", args, 3); err != nil {
		return Value{}, err
	}
	if args[0].Kind != ValueSequence {
		return Value{}, shellerr.New(shellerr.KindTypeMismatch, "reduce expects a sequence as its first argument, got %s", args[0].Kind)
	}
	if args[1].Kind != ValueClosure {
		return Value{}, shellerr.New(shellerr.KindTypeMismatch, "reduce expects a closure as its second argument, got %s", args[1].Kind)
	}
	acc := args[2]
	for _, elem := range args[0].Seq {
		v, cerr := e.CallClosure(args[1].Closure, []Value{acc, elem})
		if cerr != nil {
			return Value{}, cerr
		}
		acc = v
	}
	return acc, nil
}

func sequenceAndClosure(name string, args []Value) ([]Value, ClosureID, *shellerr.ShellError) {
	if args[0].Kind != ValueSequence {
		return nil, 0, shellerr.New(shellerr.KindTypeMismatch, "%s expects a sequence as its first argument, got %s", name, args[0].Kind)
	}
	if args[1].Kind != ValueClosure {
		return nil, 0, shellerr.New(shellerr.KindTypeMismatch, "%s expects a closure as its second argument, got %s", name, args[1].Kind)
	}
	return args[0].Seq, args[1].Closure, nil
}

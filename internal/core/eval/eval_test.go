package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexusshell/nexusshell/internal/core/shellerr"
)

func TestEvaluatorArithmetic(t *testing.T) {
	e := NewEvaluator()
	scope := NewScopeStack()

	t.Run("IntAddition", func(t *testing.T) {
		v, err := e.Eval(BinaryOp(Literal(Int(2)), OpAdd, Literal(Int(3))), scope)
		require.Nil(t, err)
		assert.Equal(t, Int(5), v)
	})

	t.Run("IntFloatPromotion", func(t *testing.T) {
		v, err := e.Eval(BinaryOp(Literal(Int(2)), OpAdd, Literal(Float(0.5))), scope)
		require.Nil(t, err)
		require.Equal(t, ValueFloat, v.Kind)
		assert.Equal(t, 2.5, v.Float)
	})

	t.Run("StringConcatenation", func(t *testing.T) {
		v, err := e.Eval(BinaryOp(Literal(String("foo")), OpAdd, Literal(String("bar"))), scope)
		require.Nil(t, err)
		assert.Equal(t, String("foobar"), v)
	})

	t.Run("DivisionByZero", func(t *testing.T) {
		_, err := e.Eval(BinaryOp(Literal(Int(1)), OpDiv, Literal(Int(0))), scope)
		require.NotNil(t, err)
		assert.Equal(t, "Runtime.division_by_zero", err.Kind.String())
	})

	t.Run("ShortCircuitAnd", func(t *testing.T) {
		v, err := e.Eval(BinaryOp(Literal(Bool(false)), OpAnd, Variable("undefined")), scope)
		require.Nil(t, err)
		assert.Equal(t, Bool(false), v)
	})

	t.Run("ShortCircuitOr", func(t *testing.T) {
		v, err := e.Eval(BinaryOp(Literal(Bool(true)), OpOr, Variable("undefined")), scope)
		require.Nil(t, err)
		assert.Equal(t, Bool(true), v)
	})
}

func TestEvaluatorVariablesAndAssignment(t *testing.T) {
	e := NewEvaluator()
	scope := NewScopeStack()

	t.Run("UnknownVariableIsRuntimeError", func(t *testing.T) {
		_, err := e.Eval(Variable("x"), scope)
		require.NotNil(t, err)
		assert.Equal(t, "Runtime.unknown_variable", err.Kind.String())
	})

	t.Run("AssignmentThenLookup", func(t *testing.T) {
		_, err := e.Eval(Assignment("x", Literal(Int(42))), scope)
		require.Nil(t, err)

		v, err2 := e.Eval(Variable("x"), scope)
		require.Nil(t, err2)
		assert.Equal(t, Int(42), v)
	})
}

func TestEvaluatorIfElseAndBlock(t *testing.T) {
	e := NewEvaluator()
	scope := NewScopeStack()

	then := Literal(String("yes"))
	els := Literal(String("no"))

	t.Run("TruthyTakesThen", func(t *testing.T) {
		v, err := e.Eval(IfElse(Literal(Bool(true)), then, &els), scope)
		require.Nil(t, err)
		assert.Equal(t, String("yes"), v)
	})

	t.Run("FalsyTakesElse", func(t *testing.T) {
		v, err := e.Eval(IfElse(Literal(Bool(false)), then, &els), scope)
		require.Nil(t, err)
		assert.Equal(t, String("no"), v)
	})

	t.Run("MissingElseYieldsNull", func(t *testing.T) {
		v, err := e.Eval(IfElse(Literal(Bool(false)), then, nil), scope)
		require.Nil(t, err)
		assert.Equal(t, Null(), v)
	})

	t.Run("BlockEvaluatesToLastStatement", func(t *testing.T) {
		v, err := e.Eval(Block(Literal(Int(1)), Literal(Int(2)), Literal(Int(3))), scope)
		require.Nil(t, err)
		assert.Equal(t, Int(3), v)
	})
}

// S3: a closure captures its environment at creation time; later
// mutation of the enclosing scope must not be visible inside the
// closure when it is later called.
func TestClosureCaptureIsSnapshotAtCreation(t *testing.T) {
	e := NewEvaluator()
	scope := NewScopeStack()

	_, err := e.Eval(Assignment("x", Literal(Int(1))), scope)
	require.Nil(t, err)

	closureVal, err := e.Eval(Lambda(nil, Variable("x")), scope)
	require.Nil(t, err)
	require.Equal(t, ValueClosure, closureVal.Kind)

	_, err = e.Eval(Assignment("x", Literal(Int(999))), scope)
	require.Nil(t, err)

	result, err := e.CallClosure(closureVal.Closure, nil)
	require.Nil(t, err)
	assert.Equal(t, Int(1), result, "closure must see the value captured at creation, not the later mutation")
}

func TestClosureParamsShadowCapturedBindings(t *testing.T) {
	e := NewEvaluator()
	scope := NewScopeStack()

	_, err := e.Eval(Assignment("x", Literal(Int(10))), scope)
	require.Nil(t, err)

	closureVal, err := e.Eval(Lambda([]string{"x"}, Variable("x")), scope)
	require.Nil(t, err)

	result, err := e.CallClosure(closureVal.Closure, []Value{Int(77)})
	require.Nil(t, err)
	assert.Equal(t, Int(77), result)
}

func TestClosureArityMismatch(t *testing.T) {
	e := NewEvaluator()
	scope := NewScopeStack()

	closureVal, err := e.Eval(Lambda([]string{"a", "b"}, Variable("a")), scope)
	require.Nil(t, err)

	_, err2 := e.CallClosure(closureVal.Closure, []Value{Int(1)})
	require.NotNil(t, err2)
	assert.Equal(t, "Runtime.arity_mismatch", err2.Kind.String())
}

func TestTombstonedClosureIsUnresolvable(t *testing.T) {
	e := NewEvaluator()
	scope := NewScopeStack()

	closureVal, err := e.Eval(Lambda(nil, Literal(Int(1))), scope)
	require.Nil(t, err)

	e.Closures.Tombstone(closureVal.Closure)

	_, err2 := e.CallClosure(closureVal.Closure, nil)
	require.NotNil(t, err2)
	assert.Equal(t, "Runtime.unknown_closure", err2.Kind.String())
}

// S4 / property 8: higher-order built-ins behave as specified.
func TestHigherOrderBuiltins(t *testing.T) {
	e := NewEvaluator()
	scope := NewScopeStack()

	double, err := e.Eval(Lambda([]string{"x"}, BinaryOp(Variable("x"), OpMul, Literal(Int(2)))), scope)
	require.Nil(t, err)

	list := Sequence([]Value{Int(1), Int(2), Int(3)})

	t.Run("Map", func(t *testing.T) {
		v, err := e.Functions["map"](e, []Value{list, double})
		require.Nil(t, err)
		assert.Equal(t, Sequence([]Value{Int(2), Int(4), Int(6)}), v)
	})

	equalsTwo, err := e.Eval(Lambda([]string{"x"}, BinaryOp(Variable("x"), OpEq, Literal(Int(2)))), scope)
	require.Nil(t, err)

	t.Run("Filter", func(t *testing.T) {
		v, err := e.Functions["filter"](e, []Value{list, equalsTwo})
		require.Nil(t, err)
		assert.Equal(t, Sequence([]Value{Int(2)}), v)
	})

	sum, err := e.Eval(Lambda([]string{"acc", "x"}, BinaryOp(Variable("acc"), OpAdd, Variable("x"))), scope)
	require.Nil(t, err)

	t.Run("Reduce", func(t *testing.T) {
		v, err := e.Functions["reduce"](e, []Value{list, sum, Int(0)})
		require.Nil(t, err)
		assert.Equal(t, Int(6), v)
	})
}

func TestSeededBuiltins(t *testing.T) {
	e := NewEvaluator()

	t.Run("Add", func(t *testing.T) {
		v, err := e.Functions["add"](e, []Value{Int(2), Int(3)})
		require.Nil(t, err)
		assert.Equal(t, Int(5), v)
	})

	t.Run("Multiply", func(t *testing.T) {
		v, err := e.Functions["multiply"](e, []Value{Int(2), Int(3)})
		require.Nil(t, err)
		assert.Equal(t, Int(6), v)
	})

	t.Run("LengthOfString", func(t *testing.T) {
		v, err := e.Functions["length"](e, []Value{String("hello")})
		require.Nil(t, err)
		assert.Equal(t, Int(5), v)
	})

	t.Run("LengthOfSequence", func(t *testing.T) {
		v, err := e.Functions["length"](e, []Value{Sequence([]Value{Int(1), Int(2)})})
		require.Nil(t, err)
		assert.Equal(t, Int(2), v)
	})

	t.Run("Uppercase", func(t *testing.T) {
		v, err := e.Functions["uppercase"](e, []Value{String("shell")})
		require.Nil(t, err)
		assert.Equal(t, String("SHELL"), v)
	})
}

func TestFunctionCallResolutionOrder(t *testing.T) {
	e := NewEvaluator()
	scope := NewScopeStack()

	t.Run("UnknownNameIsRuntimeError", func(t *testing.T) {
		_, err := e.Eval(FunctionCall("nope"), scope)
		require.NotNil(t, err)
		assert.Equal(t, "Runtime.unknown_function", err.Kind.String())
	})

	t.Run("ClosureBoundToNameShadowsGlobalFunction", func(t *testing.T) {
		e.RegisterFunction("triple", func(e *Evaluator, args []Value) (Value, *shellerr.ShellError) {
			return Int(0), nil
		})

		closureVal, err := e.Eval(Lambda([]string{"x"}, BinaryOp(Variable("x"), OpMul, Literal(Int(3)))), scope)
		require.Nil(t, err)
		_, err2 := e.Eval(Assignment("triple", closureVal), scope)
		require.Nil(t, err2)

		v, err3 := e.Eval(FunctionCall("triple", Literal(Int(5))), scope)
		require.Nil(t, err3)
		assert.Equal(t, Int(15), v, "a closure bound to a name must resolve before the global function table")
	})
}

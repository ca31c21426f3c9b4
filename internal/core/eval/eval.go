package eval

import (
	"fmt"

	"github.com/nexusshell/nexusshell/internal/core/shellerr"
)

// BuiltinFunc is a global function implementation (seeded built-ins or
// user-registered functions), distinct from a closure bound to a
// variable name.
type BuiltinFunc func(e *Evaluator, args []Value) (Value, *shellerr.ShellError)

// Evaluator holds the process-wide state a single expression
// evaluation needs: the closure registry and the global function
// table. A Evaluator is safe to reuse across many Eval calls sharing
// the same scope stack.
type Evaluator struct {
	Closures  *Registry
	Functions map[string]BuiltinFunc
}

// NewEvaluator returns an Evaluator seeded with the built-in functions.
func NewEvaluator() *Evaluator {
	e := &Evaluator{
		Closures:  NewRegistry(),
		Functions: make(map[string]BuiltinFunc),
	}
	registerBuiltins(e)
	return e
}

// RegisterFunction adds or replaces a user-defined global function.
func (e *Evaluator) RegisterFunction(name string, fn BuiltinFunc) {
	e.Functions[name] = fn
}

// Eval evaluates expr under scope, strict and left-to-right.
func (e *Evaluator) Eval(expr Expr, scope *ScopeStack) (Value, *shellerr.ShellError) {
	switch expr.Kind {
	case ExprLiteral:
		return expr.Literal, nil

	case ExprVariable:
		v, ok := scope.Get(expr.Name)
		if !ok {
			return Value{}, shellerr.New(shellerr.KindUnknownVariable, "undefined variable %q", expr.Name).
				WithContext("name", expr.Name)
		}
		return v, nil

	case ExprAssignment:
		v, err := e.Eval(*expr.Value, scope)
		if err != nil {
			return Value{}, err
		}
		scope.Set(expr.Name, v)
		return v, nil

	case ExprBlock:
		result := Null()
		for _, stmt := range expr.Stmts {
			v, err := e.Eval(stmt, scope)
			if err != nil {
				return Value{}, err
			}
			result = v
		}
		return result, nil

	case ExprIfElse:
		cond, err := e.Eval(*expr.Cond, scope)
		if err != nil {
			return Value{}, err
		}
		if cond.Truthy() {
			return e.Eval(*expr.Then, scope)
		}
		if expr.Else != nil {
			return e.Eval(*expr.Else, scope)
		}
		return Null(), nil

	case ExprBinaryOp:
		return e.evalBinaryOp(expr, scope)

	case ExprLambda:
		return e.evalLambda(expr, scope), nil

	case ExprFunctionCall:
		return e.evalFunctionCall(expr, scope)

	default:
		return Value{}, shellerr.New(shellerr.KindInvalidSyntax, "unrecognized expression kind %d", expr.Kind)
	}
}

func (e *Evaluator) evalLambda(expr Expr, scope *ScopeStack) Value {
	captured := scope.CaptureEnvironment()
	id := e.Closures.Alloc(Closure{
		Params:       expr.Params,
		Body:         *expr.Body,
		CapturedEnv:  captured,
		CreatorScope: scope.Depth(),
	})
	return ClosureValue(id)
}

// evalFunctionCall resolves name against the closure registry first
// (a variable in scope bound to a closure), then the global function
// table of built-ins and user-defined functions.
func (e *Evaluator) evalFunctionCall(expr Expr, scope *ScopeStack) (Value, *shellerr.ShellError) {
	args := make([]Value, len(expr.Args))
	for i, a := range expr.Args {
		v, err := e.Eval(a, scope)
		if err != nil {
			return Value{}, err
		}
		args[i] = v
	}

	if bound, ok := scope.Get(expr.Name); ok && bound.Kind == ValueClosure {
		return e.CallClosure(bound.Closure, args)
	}

	if fn, ok := e.Functions[expr.Name]; ok {
		return fn(e, args)
	}

	return Value{}, shellerr.New(shellerr.KindUnknownFunction, "undefined function %q", expr.Name).
		WithContext("name", expr.Name)
}

// CallClosure invokes the closure at id with args: pushes a fresh
// scope seeded with the captured environment, binds params to args,
// evaluates the body, pops the scope.
func (e *Evaluator) CallClosure(id ClosureID, args []Value) (Value, *shellerr.ShellError) {
	closure, ok := e.Closures.Get(id)
	if !ok {
		return Value{}, shellerr.New(shellerr.KindUnknownClosure, "closure %d is not resolvable", id).
			WithContext("closure_id", fmt.Sprintf("%d", id))
	}
	if len(args) != len(closure.Params) {
		return Value{}, shellerr.New(shellerr.KindArityMismatch, "closure expects %d arguments, got %d", len(closure.Params), len(args)).
			WithContext("expected", fmt.Sprintf("%d", len(closure.Params))).
			WithContext("actual", fmt.Sprintf("%d", len(args)))
	}

	callScope := NewScopeStack()
	for k, v := range closure.CapturedEnv {
		callScope.scopes[0][k] = v
	}
	for i, p := range closure.Params {
		callScope.scopes[0][p] = args[i]
	}

	return e.Eval(closure.Body, callScope)
}

func (e *Evaluator) evalBinaryOp(expr Expr, scope *ScopeStack) (Value, *shellerr.ShellError) {
	lhs, err := e.Eval(*expr.Lhs, scope)
	if err != nil {
		return Value{}, err
	}

	if expr.Op == OpAnd {
		if !lhs.Truthy() {
			return lhs, nil
		}
		return e.Eval(*expr.Rhs, scope)
	}
	if expr.Op == OpOr {
		if lhs.Truthy() {
			return lhs, nil
		}
		return e.Eval(*expr.Rhs, scope)
	}

	rhs, err := e.Eval(*expr.Rhs, scope)
	if err != nil {
		return Value{}, err
	}

	switch expr.Op {
	case OpEq:
		return Bool(lhs.Equal(rhs)), nil
	case OpNeq:
		return Bool(!lhs.Equal(rhs)), nil
	case OpLt, OpLte, OpGt, OpGte:
		return compareNumeric(lhs, rhs, expr.Op)
	case OpAdd:
		if lhs.Kind == ValueString && rhs.Kind == ValueString {
			return String(lhs.Str + rhs.Str), nil
		}
		return arithmetic(lhs, rhs, expr.Op)
	case OpSub, OpMul, OpDiv:
		return arithmetic(lhs, rhs, expr.Op)
	default:
		return Value{}, shellerr.New(shellerr.KindInvalidSyntax, "unsupported operator %q", expr.Op)
	}
}

func numericPromote(lhs, rhs Value) (float64, float64, bool, *shellerr.ShellError) {
	if lhs.Kind != ValueInt && lhs.Kind != ValueFloat {
		return 0, 0, false, shellerr.New(shellerr.KindTypeMismatch, "expected numeric operand, got %s", lhs.Kind)
	}
	if rhs.Kind != ValueInt && rhs.Kind != ValueFloat {
		return 0, 0, false, shellerr.New(shellerr.KindTypeMismatch, "expected numeric operand, got %s", rhs.Kind)
	}
	bothInt := lhs.Kind == ValueInt && rhs.Kind == ValueInt
	l := lhs.Float
	if lhs.Kind == ValueInt {
		l = float64(lhs.Int)
	}
	r := rhs.Float
	if rhs.Kind == ValueInt {
		r = float64(rhs.Int)
	}
	return l, r, bothInt, nil
}

func arithmetic(lhs, rhs Value, op BinaryOperator) (Value, *shellerr.ShellError) {
	l, r, bothInt, err := numericPromote(lhs, rhs)
	if err != nil {
		return Value{}, err
	}

	if op == OpDiv && r == 0 {
		return Value{}, shellerr.New(shellerr.KindDivisionByZero, "division by zero")
	}

	var result float64
	switch op {
	case OpAdd:
		result = l + r
	case OpSub:
		result = l - r
	case OpMul:
		result = l * r
	case OpDiv:
		result = l / r
		bothInt = false // division always promotes to float
	}

	if bothInt {
		return Int(int64(result)), nil
	}
	return Float(result), nil
}

func compareNumeric(lhs, rhs Value, op BinaryOperator) (Value, *shellerr.ShellError) {
	l, r, _, err := numericPromote(lhs, rhs)
	if err != nil {
		return Value{}, err
	}
	switch op {
	case OpLt:
		return Bool(l < r), nil
	case OpLte:
		return Bool(l <= r), nil
	case OpGt:
		return Bool(l > r), nil
	case OpGte:
		return Bool(l >= r), nil
	default:
		return Value{}, shellerr.New(shellerr.KindInvalidSyntax, "unsupported comparison operator %q", op)
	}
}

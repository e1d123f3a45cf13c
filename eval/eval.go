// Package eval walks an expression tree built by package parser and
// produces its scalar value (spec §4.6). Two evaluators are provided with
// identical observable semantics: Eval recurses with the host's call stack;
// EvalStack drives an explicit operator/value stack so deeply nested
// operator nodes do not grow the goroutine stack (a Func node's arguments
// are still evaluated through Eval).
//
// Grounded on the teacher's interpreter.TreeWalkInterpreter.VisitBinary
// switch-on-operator dispatch, generalized from its boxed-any/panic-on-error
// values to unboxed float32 scalars that never fail structurally — per spec
// §6, a well-formed tree's evaluation errors only arithmetically, as NaN or
// ±Inf, never as a Go error.
package eval

import (
	"math"

	"expandex/ast"
	"expandex/env"
	"expandex/funcs"
	"expandex/numeric"
)

// arg adapts one Func argument node plus the environment it evaluates
// against into the funcs.Arg interface a registered InvokeFunc consumes —
// satisfying funcs.Arg's "package eval implements this over its own
// node-plus-environment pair" contract without funcs importing ast or eval.
type arg struct {
	node ast.Node
	env  *env.Environment
}

func (a *arg) Eval() numeric.Scalar { return Eval(a.node, a.env) }

// Eval computes node's value against environment, recursing with the host's
// call stack. Assignment and function-call side effects land in
// environment as they're encountered, left-to-right.
func Eval(node ast.Node, environment *env.Environment) numeric.Scalar {
	switch n := node.(type) {
	case *ast.Const:
		return n.Value

	case *ast.VarRef:
		return n.Var.Value

	case *ast.Unary:
		return evalUnary(n, environment)

	case *ast.Binary:
		return evalBinary(n, environment)

	case *ast.Func:
		return evalFunc(n, environment)

	default:
		panic("eval: unhandled node kind")
	}
}

func evalUnary(n *ast.Unary, environment *env.Environment) numeric.Scalar {
	switch n.Op {
	case ast.OpNeg:
		return -Eval(n.Child, environment)
	case ast.OpNot:
		if Eval(n.Child, environment) == 0 {
			return 1
		}
		return 0
	case ast.OpBNot:
		return numeric.FromInt(^numeric.ToInt(Eval(n.Child, environment)))
	default:
		panic("eval: unhandled unary op " + string(n.Op))
	}
}

func evalBinary(n *ast.Binary, environment *env.Environment) numeric.Scalar {
	// && and || are the only operators that may skip their right child —
	// every other case evaluates both operands unconditionally below.
	switch n.Op {
	case ast.OpAnd:
		a := Eval(n.Left, environment)
		if a == 0 {
			return 0
		}
		return Eval(n.Right, environment)

	case ast.OpOr:
		a := Eval(n.Left, environment)
		if a != 0 && !math.IsNaN(float64(a)) {
			return a
		}
		b := Eval(n.Right, environment)
		if b != 0 {
			return b
		}
		return 0

	case ast.OpAssign:
		b := Eval(n.Right, environment)
		if ref, ok := n.Left.(*ast.VarRef); ok {
			ref.Var.Value = b
		}
		return b

	case ast.OpComma:
		Eval(n.Left, environment)
		return Eval(n.Right, environment)
	}

	a := Eval(n.Left, environment)
	b := Eval(n.Right, environment)
	return combineArithmetic(n.Op, a, b)
}

// combineArithmetic applies every binary operator that always evaluates
// both operands — everything except &&, ||, = and , , which each have
// their own control flow and are handled by the callers directly. Shared
// between Eval and EvalStack so the two evaluators can't drift apart on
// the arithmetic table itself.
func combineArithmetic(op ast.Op, a, b numeric.Scalar) numeric.Scalar {
	switch op {
	case ast.OpAdd:
		return a + b
	case ast.OpSub:
		return a - b
	case ast.OpMul:
		return a * b
	case ast.OpDiv:
		return a / b
	case ast.OpMod:
		return numeric.Scalar(math.Mod(float64(a), float64(b)))
	case ast.OpPow:
		return numeric.Scalar(math.Pow(float64(a), float64(b)))
	case ast.OpShl:
		// &31 keeps Go's shift count in range for int32; spec §4.6 only
		// says to_int(b), with no masking, so a shift count >= 32 is a
		// silent narrowing from what a C host's << would do there.
		return numeric.FromInt(numeric.ToInt(a) << uint32(numeric.ToInt(b)&31))
	case ast.OpShr:
		return numeric.FromInt(numeric.ToInt(a) >> uint32(numeric.ToInt(b)&31))
	case ast.OpLt:
		return boolScalar(a < b)
	case ast.OpLe:
		return boolScalar(a <= b)
	case ast.OpGt:
		return boolScalar(a > b)
	case ast.OpGe:
		return boolScalar(a >= b)
	case ast.OpEq:
		return boolScalar(a == b)
	case ast.OpNe:
		return boolScalar(a != b)
	case ast.OpBAnd:
		return numeric.FromInt(numeric.ToInt(a) & numeric.ToInt(b))
	case ast.OpBOr:
		return numeric.FromInt(numeric.ToInt(a) | numeric.ToInt(b))
	case ast.OpBXor:
		return numeric.FromInt(numeric.ToInt(a) ^ numeric.ToInt(b))
	default:
		panic("eval: unhandled binary op " + string(op))
	}
}

func evalFunc(n *ast.Func, environment *env.Environment) numeric.Scalar {
	args := make([]funcs.Arg, len(n.Args))
	for i, child := range n.Args {
		args[i] = &arg{node: child, env: environment}
	}
	return n.Descriptor.Invoke(args, n.Ctx)
}

func boolScalar(b bool) numeric.Scalar {
	if b {
		return 1
	}
	return 0
}

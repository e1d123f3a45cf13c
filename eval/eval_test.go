package eval

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"expandex/ast"
	"expandex/env"
	"expandex/funcs"
	"expandex/numeric"
)

func constNode(v numeric.Scalar) *ast.Const { return &ast.Const{Value: v} }

func varNode(e *env.Environment, name string) *ast.VarRef {
	return &ast.VarRef{Var: e.LookupOrCreate(name)}
}

// bothEvaluators runs the same freshly-built tree through Eval and
// EvalStack and returns both results for the caller to assert on — spec
// §4.6 requires identical observable semantics between the two.
func bothEvaluators(t *testing.T, build func() (ast.Node, *env.Environment)) (numeric.Scalar, numeric.Scalar) {
	t.Helper()
	tree1, env1 := build()
	r1 := Eval(tree1, env1)
	tree2, env2 := build()
	r2 := EvalStack(tree2, env2)
	return r1, r2
}

func TestArithmetic(t *testing.T) {
	build := func() (ast.Node, *env.Environment) {
		e := env.New()
		return &ast.Binary{Op: ast.OpAdd, Left: constNode(1), Right: &ast.Binary{Op: ast.OpMul, Left: constNode(2), Right: constNode(3)}}, e
	}
	r1, r2 := bothEvaluators(t, build)
	require.Equal(t, numeric.Scalar(7), r1)
	require.Equal(t, numeric.Scalar(7), r2)
}

func TestPowAndMod(t *testing.T) {
	tree := &ast.Binary{Op: ast.OpPow, Left: constNode(2), Right: constNode(10)}
	require.Equal(t, numeric.Scalar(1024), Eval(tree, env.New()))
	require.Equal(t, numeric.Scalar(1024), EvalStack(tree, env.New()))

	modTree := &ast.Binary{Op: ast.OpMod, Left: constNode(7), Right: constNode(3)}
	require.Equal(t, numeric.Scalar(1), Eval(modTree, env.New()))
}

func TestUnaryOperators(t *testing.T) {
	require.Equal(t, numeric.Scalar(-5), Eval(&ast.Unary{Op: ast.OpNeg, Child: constNode(5)}, env.New()))
	require.Equal(t, numeric.Scalar(1), Eval(&ast.Unary{Op: ast.OpNot, Child: constNode(0)}, env.New()))
	require.Equal(t, numeric.Scalar(0), Eval(&ast.Unary{Op: ast.OpNot, Child: constNode(4)}, env.New()))
	require.Equal(t, numeric.Scalar(-1), Eval(&ast.Unary{Op: ast.OpBNot, Child: constNode(0)}, env.New()))
}

func TestShiftsCoerceThroughInt(t *testing.T) {
	tree := &ast.Binary{Op: ast.OpShl, Left: constNode(1), Right: constNode(4)}
	require.Equal(t, numeric.Scalar(16), Eval(tree, env.New()))
}

func TestAssignmentStoresAndReturnsValue(t *testing.T) {
	e := env.New()
	x := varNode(e, "x")
	tree := &ast.Binary{Op: ast.OpAssign, Left: x, Right: constNode(42)}
	require.Equal(t, numeric.Scalar(42), Eval(tree, e))
	require.Equal(t, numeric.Scalar(42), x.Var.Value)
}

func TestCommaEvaluatesLeftForEffectAndReturnsRight(t *testing.T) {
	e := env.New()
	x := varNode(e, "x")
	tree := &ast.Binary{
		Op:   ast.OpComma,
		Left: &ast.Binary{Op: ast.OpAssign, Left: x, Right: constNode(9)},
		Right: constNode(1),
	}
	require.Equal(t, numeric.Scalar(1), Eval(tree, e))
	require.Equal(t, numeric.Scalar(9), x.Var.Value)
}

// TestAndShortCircuits asserts the right operand of && is never evaluated
// when the left is zero, observing the effect through a side-effecting
// function rather than inspecting control flow directly.
func TestAndShortCircuits(t *testing.T) {
	e := env.New()
	called := false
	fn := funcs.Descriptor{Name: "mark", Invoke: func(args []funcs.Arg, ctx []byte) numeric.Scalar {
		called = true
		return 1
	}}
	tree := &ast.Binary{Op: ast.OpAnd, Left: constNode(0), Right: ast.NewFunc(fn, nil)}
	require.Equal(t, numeric.Scalar(0), Eval(tree, e))
	require.False(t, called)
}

func TestOrShortCircuits(t *testing.T) {
	called := false
	fn := funcs.Descriptor{Name: "mark", Invoke: func(args []funcs.Arg, ctx []byte) numeric.Scalar {
		called = true
		return 1
	}}
	tree := &ast.Binary{Op: ast.OpOr, Left: constNode(5), Right: ast.NewFunc(fn, nil)}
	require.Equal(t, numeric.Scalar(5), Eval(tree, env.New()))
	require.False(t, called)
}

// TestOrTreatsNaNLeftAsFalsy exercises §4.6's asymmetric || rule: a
// non-zero-but-NaN left operand is not "truthy" and falls through to the
// right operand, unlike every other non-zero value.
func TestOrTreatsNaNLeftAsFalsy(t *testing.T) {
	nan := numeric.Scalar(math.NaN())
	tree := &ast.Binary{Op: ast.OpOr, Left: constNode(nan), Right: constNode(3)}
	require.Equal(t, numeric.Scalar(3), Eval(tree, env.New()))
}

func TestOrFallsThroughToZeroWhenBothFalsy(t *testing.T) {
	tree := &ast.Binary{Op: ast.OpOr, Left: constNode(0), Right: constNode(0)}
	require.Equal(t, numeric.Scalar(0), Eval(tree, env.New()))
}

func TestFuncInvokesWithArgAdapters(t *testing.T) {
	e := env.New()
	sum := funcs.Descriptor{Name: "sum", Invoke: func(args []funcs.Arg, ctx []byte) numeric.Scalar {
		var total numeric.Scalar
		for _, a := range args {
			total += a.Eval()
		}
		return total
	}}
	tree := ast.NewFunc(sum, []ast.Node{constNode(1), constNode(2), constNode(3)})
	require.Equal(t, numeric.Scalar(6), Eval(tree, e))
	require.Equal(t, numeric.Scalar(6), EvalStack(tree, e))
}

func TestEvalStackMatchesEvalOnDeeplyNestedTree(t *testing.T) {
	const depth = 5000
	build := func() (ast.Node, *env.Environment) {
		var n ast.Node = constNode(1)
		for i := 0; i < depth; i++ {
			n = &ast.Binary{Op: ast.OpAdd, Left: n, Right: constNode(1)}
		}
		return n, env.New()
	}
	r1, r2 := bothEvaluators(t, build)
	require.Equal(t, numeric.Scalar(depth+1), r1)
	require.Equal(t, r1, r2)
}

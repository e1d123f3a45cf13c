package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"expandex/ast"
	"expandex/env"
	"expandex/funcs"
	"expandex/numeric"
	"expandex/token"
)

func noopRegistry(names ...string) *funcs.Registry {
	descs := make([]funcs.Descriptor, len(names))
	for i, n := range names {
		descs[i] = funcs.Descriptor{
			Name:   n,
			Invoke: func(args []funcs.Arg, ctx []byte) numeric.Scalar { return 0 },
		}
	}
	return funcs.NewRegistry(descs...)
}

func mustParse(t *testing.T, src string, registry *funcs.Registry) ast.Node {
	t.Helper()
	if registry == nil {
		registry = noopRegistry()
	}
	tree, err := Create(src, env.New(), registry)
	require.NoError(t, err)
	require.NotNil(t, tree)
	return tree
}

func TestPrecedenceMultiplicationOverAddition(t *testing.T) {
	tree := mustParse(t, "1 + 2 * 3", nil)
	bin := tree.(*ast.Binary)
	require.Equal(t, ast.OpAdd, bin.Op)
	require.Equal(t, numeric.Scalar(1), bin.Left.(*ast.Const).Value)
	rhs := bin.Right.(*ast.Binary)
	require.Equal(t, ast.OpMul, rhs.Op)
}

func TestGroupingOverridesPrecedence(t *testing.T) {
	tree := mustParse(t, "(1 + 2) * 3", nil)
	bin := tree.(*ast.Binary)
	require.Equal(t, ast.OpMul, bin.Op)
	lhs := bin.Left.(*ast.Binary)
	require.Equal(t, ast.OpAdd, lhs.Op)
}

func TestPowerIsRightAssociative(t *testing.T) {
	tree := mustParse(t, "2 ** 3 ** 2", nil)
	bin := tree.(*ast.Binary)
	require.Equal(t, ast.OpPow, bin.Op)
	require.Equal(t, numeric.Scalar(2), bin.Left.(*ast.Const).Value)
	rhs := bin.Right.(*ast.Binary)
	require.Equal(t, ast.OpPow, rhs.Op)
	require.Equal(t, numeric.Scalar(3), rhs.Left.(*ast.Const).Value)
	require.Equal(t, numeric.Scalar(2), rhs.Right.(*ast.Const).Value)
}

func TestAssignIsRightAssociative(t *testing.T) {
	tree := mustParse(t, "x = y = 1", nil)
	bin := tree.(*ast.Binary)
	require.Equal(t, ast.OpAssign, bin.Op)
	require.Equal(t, "x", bin.Left.(*ast.VarRef).Var.Name)
	rhs := bin.Right.(*ast.Binary)
	require.Equal(t, ast.OpAssign, rhs.Op)
	require.Equal(t, "y", rhs.Left.(*ast.VarRef).Var.Name)
}

func TestUnaryChainStacksTightestFirst(t *testing.T) {
	tree := mustParse(t, "--2", nil)
	outer := tree.(*ast.Unary)
	require.Equal(t, ast.OpNeg, outer.Op)
	inner := outer.Child.(*ast.Unary)
	require.Equal(t, ast.OpNeg, inner.Op)
	require.Equal(t, numeric.Scalar(2), inner.Child.(*ast.Const).Value)
}

func TestFunctionCallCollectsArguments(t *testing.T) {
	tree := mustParse(t, "sin(1 + 2, 3)", noopRegistry("sin"))
	fn := tree.(*ast.Func)
	require.Equal(t, "sin", fn.Descriptor.Name)
	require.Len(t, fn.Args, 2)
	require.Equal(t, ast.OpAdd, fn.Args[0].(*ast.Binary).Op)
	require.Equal(t, numeric.Scalar(3), fn.Args[1].(*ast.Const).Value)
}

func TestNestedFunctionCalls(t *testing.T) {
	reg := noopRegistry("f", "g")
	tree := mustParse(t, "f(g(1), 2)", reg)
	outer := tree.(*ast.Func)
	require.Equal(t, "f", outer.Descriptor.Name)
	require.Len(t, outer.Args, 2)
	inner := outer.Args[0].(*ast.Func)
	require.Equal(t, "g", inner.Descriptor.Name)
	require.Len(t, inner.Args, 1)
}

func TestMacroDefinitionEvaluatesToConstZero(t *testing.T) {
	tree := mustParse(t, "$(sq, $1, $1 * $1)", nil)
	c := tree.(*ast.Const)
	require.Equal(t, numeric.Scalar(0), c.Value)
}

// TestMacroExpansionBuildsParameterAssignmentChain exercises the boundary
// property of §8: defining sq via its parameter slot directly (the
// auto-synthesized $1, rather than a same-named ordinary variable — see
// DESIGN.md for why the spec's illustrative "x" is read as shorthand for
// this) and calling it wraps the argument in an assignment to $1 ahead of
// the cloned body.
func TestMacroExpansionBuildsParameterAssignmentChain(t *testing.T) {
	environment := env.New()
	registry := noopRegistry()

	tree, err := Create("$(sq, $1, $1 * $1)\nsq(3 + 1)", environment, registry)
	require.NoError(t, err)

	seq := tree.(*ast.Binary)
	require.Equal(t, ast.OpComma, seq.Op)
	call := seq.Right.(*ast.Binary)
	require.Equal(t, ast.OpComma, call.Op)
	assign := call.Left.(*ast.Binary)
	require.Equal(t, ast.OpAssign, assign.Op)
	require.Equal(t, "$1", assign.Left.(*ast.VarRef).Var.Name)
	require.Equal(t, ast.OpAdd, assign.Right.(*ast.Binary).Op)
	body := call.Right.(*ast.Binary)
	require.Equal(t, ast.OpMul, body.Op)
	require.Equal(t, "$1", body.Left.(*ast.VarRef).Var.Name)
}

func TestNewlineSequencesTopLevelStatements(t *testing.T) {
	tree := mustParse(t, "a = 1\n b = a + 1\n b", nil)
	first := tree.(*ast.Binary)
	require.Equal(t, ast.OpComma, first.Op)
	require.Equal(t, ast.OpAssign, first.Left.(*ast.Binary).Op)
}

func TestEmptyInputProducesEmptyConst(t *testing.T) {
	tree := mustParse(t, "", nil)
	c := tree.(*ast.Const)
	require.True(t, c.Empty)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind token.ErrorKind
	}{
		{"number in operator position", "2 3", token.UnexpectedNumber},
		{"operator missing right operand", "2 +", token.MissingOperand},
		{"unbalanced open paren", "(2 + 3", token.MismatchedParen},
		{"assignment to non-variable", "1 = 2", token.BadAssignment},
		{"call on a non-callable value", "2(3)", token.BadCall},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := Create(tt.src, env.New(), noopRegistry())
			require.Error(t, err)
			require.Nil(t, tree)
			var perr *token.Error
			require.True(t, errors.As(err, &perr))
			require.Equal(t, tt.kind, perr.Kind)
		})
	}
}

func TestBadMacroMissingName(t *testing.T) {
	_, err := Create("$()", env.New(), noopRegistry())
	require.Error(t, err)
	var perr *token.Error
	require.True(t, errors.As(err, &perr))
	require.Equal(t, token.BadMacro, perr.Kind)
}

package eval

import (
	"math"

	"expandex/ast"
	"expandex/env"
	"expandex/numeric"
	"expandex/stack"
)

// visitState tracks how far a frame has progressed through its node's
// children — a frame is pushed once and stays on the control stack while
// its children are evaluated; each time it is back on top its state says
// whether to descend into the next child or combine the values now ready.
type visitState int

const (
	visitEntry visitState = iota
	visitLeftDone
	visitRightDone
)

// frame is one explicit-stack work item: a node together with how far its
// children have been visited, standing in for the return address a
// recursive call would otherwise carry on the host's call stack.
type frame struct {
	node  ast.Node
	state visitState
	left  numeric.Scalar
}

// EvalStack computes node's value against environment using an explicit
// operator/value stack instead of the host's call stack, so a pathologically
// deep tree (spec §4.6's stack-exhaustion concern) cannot overflow it. It
// produces results identical to Eval on every well-formed tree, including
// && / || short-circuiting and left-to-right assignment/comma ordering.
func EvalStack(node ast.Node, environment *env.Environment) numeric.Scalar {
	var control stack.Stack[*frame]
	var values stack.Stack[numeric.Scalar]

	control.Push(&frame{node: node})

	for {
		top, ok := control.Peek()
		if !ok {
			break
		}

		switch n := (*top).node.(type) {
		case *ast.Const:
			values.Push(n.Value)
			control.Pop()

		case *ast.VarRef:
			values.Push(n.Var.Value)
			control.Pop()

		case *ast.Unary:
			if (*top).state == visitEntry {
				(*top).state = visitLeftDone
				control.Push(&frame{node: n.Child})
				continue
			}
			child, _ := values.Pop()
			values.Push(combineUnary(n.Op, child))
			control.Pop()

		case *ast.Func:
			// Function argument evaluation is the function's own business
			// (spec §4.6: "the function is responsible for evaluating its
			// arguments"), so it runs through the ordinary recursive Eval
			// via the arg adapter regardless of which top-level evaluator
			// is driving the call site — only the engine's own operator/
			// value traversal needs the explicit stack.
			values.Push(evalFunc(n, environment))
			control.Pop()

		case *ast.Binary:
			evalBinaryStack(n, top, &control, &values)

		default:
			panic("eval: unhandled node kind")
		}
	}

	result, ok := values.Pop()
	if !ok {
		return 0
	}
	return result
}

func combineUnary(op ast.Op, child numeric.Scalar) numeric.Scalar {
	switch op {
	case ast.OpNeg:
		return -child
	case ast.OpNot:
		if child == 0 {
			return 1
		}
		return 0
	case ast.OpBNot:
		return numeric.FromInt(^numeric.ToInt(child))
	default:
		panic("eval: unhandled unary op " + string(op))
	}
}

// evalBinaryStack advances one Binary frame by exactly one step: descend
// into a child not yet visited, or — once both needed values are on the
// value stack — combine them and pop. && and || each bail out after the
// left operand when short-circuiting applies, matching Eval's early
// returns without ever pushing the skipped child.
func evalBinaryStack(n *ast.Binary, f *frame, control *stack.Stack[*frame], values *stack.Stack[numeric.Scalar]) {
	switch f.state {
	case visitEntry:
		f.state = visitLeftDone
		control.Push(&frame{node: n.Left})
		return

	case visitLeftDone:
		left, _ := values.Pop()
		f.left = left

		switch n.Op {
		case ast.OpAnd:
			if left == 0 {
				values.Push(0)
				control.Pop()
				return
			}
		case ast.OpOr:
			if left != 0 && !math.IsNaN(float64(left)) {
				values.Push(left)
				control.Pop()
				return
			}
		case ast.OpAssign:
			// Right must still be evaluated before assigning; fall through
			// to push it like any other binary operator.
		}

		f.state = visitRightDone
		control.Push(&frame{node: n.Right})
		return

	case visitRightDone:
		right, _ := values.Pop()
		control.Pop()

		switch n.Op {
		case ast.OpAssign:
			if ref, ok := n.Left.(*ast.VarRef); ok {
				ref.Var.Value = right
			}
			values.Push(right)
		case ast.OpComma:
			values.Push(right)
		case ast.OpAnd:
			values.Push(right)
		case ast.OpOr:
			// Eval returns a plain 0 for a zero right operand, so -0
			// becomes +0 here too.
			if right == 0 {
				right = 0
			}
			values.Push(right)
		default:
			values.Push(combineArithmetic(n.Op, f.left, right))
		}
	}
}

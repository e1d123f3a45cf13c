// Package ast defines the expression tree: a small, sealed set of node
// kinds (Const, VarRef, Unary, Binary, Func) built by package parser and
// walked by package eval.
package ast

import (
	"expandex/env"
	"expandex/funcs"
	"expandex/numeric"
)

// Kind tags a Node's concrete shape, mirroring the kind column of the
// expression-node table: Const/VarRef are leaves, Unary takes one child,
// Binary takes two, Func owns an arbitrary-length argument list.
type Kind uint8

const (
	KindConst Kind = iota
	KindVarRef
	KindUnary
	KindBinary
	KindFunc
)

func (k Kind) String() string {
	switch k {
	case KindConst:
		return "Const"
	case KindVarRef:
		return "VarRef"
	case KindUnary:
		return "Unary"
	case KindBinary:
		return "Binary"
	case KindFunc:
		return "Func"
	default:
		return "Unknown"
	}
}

// Node is any expression tree node. The interface is sealed by the
// unexported node method: Const, VarRef, Unary, Binary and Func are the
// only implementations, so a type switch over them in package eval is
// exhaustive by construction.
type Node interface {
	Kind() Kind
	node()
}

// Const is a literal scalar. Empty marks the special empty-root tree
// produced when a parse consumes zero expressions (spec §4.5 end-of-input
// handling) — it still evaluates to 0, the flag only matters to callers
// that want to tell "the user wrote 0" apart from "the user wrote nothing".
type Const struct {
	Value numeric.Scalar
	Empty bool
}

func (*Const) Kind() Kind { return KindConst }
func (*Const) node()      {}

// VarRef reads (and, as the left child of an Assign, writes) one variable.
// Var is the live address inside the owning Environment: multiple VarRef
// nodes for the same name share the same *env.Variable.
type VarRef struct {
	Var *env.Variable
}

func (*VarRef) Kind() Kind { return KindVarRef }
func (*VarRef) node()      {}

// Unary applies a one-operand operator (negation, logical not, bitwise
// not) to Child.
type Unary struct {
	Op    Op
	Child Node
}

func (*Unary) Kind() Kind { return KindUnary }
func (*Unary) node()      {}

// Binary applies a two-operand operator to Left and Right, evaluated in
// that order.
type Binary struct {
	Op    Op
	Left  Node
	Right Node
}

func (*Binary) Kind() Kind { return KindBinary }
func (*Binary) node()      {}

// Func is a call to a registered function. Macro calls never produce a
// Func: they are expanded inline into ordinary assignment/comma nodes. Ctx is a zero-filled scratch buffer, sized by Descriptor.CtxSize,
// allocated once per Func node and reused across every Eval of that node;
// Descriptor.Cleanup runs on it exactly once, when the node is destroyed.
type Func struct {
	Descriptor funcs.Descriptor
	Args       []Node
	Ctx        []byte
}

func (*Func) Kind() Kind { return KindFunc }
func (*Func) node()      {}

// NewFunc allocates a Func node with a freshly zeroed context buffer sized
// to the descriptor's CtxSize.
func NewFunc(d funcs.Descriptor, args []Node) *Func {
	var ctx []byte
	if d.CtxSize > 0 {
		ctx = make([]byte, d.CtxSize)
	}
	return &Func{Descriptor: d, Args: args, Ctx: ctx}
}

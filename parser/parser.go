// Package parser implements the shunting-yard parser of spec §4.5: it
// turns a token stream into a single expression tree using an operator
// stack, an expression (output) stack, and a call-frame stack for
// function- and macro-call argument collection.
//
// Grounded in the teacher's hand-written recursive-descent parser/parser.go
// for the overall "single entry point walks a token source and returns a
// tree or a rolled-back error" shape, generalized here from recursive
// descent to an explicit-stack shunting-yard engine because the source
// grammar's operator table is data (spec §3), not syntax baked into call
// structure.
package parser

import (
	"fmt"

	"expandex/ast"
	"expandex/env"
	"expandex/funcs"
	"expandex/lexer"
	"expandex/stack"
	"expandex/token"
)

// parenState is the "may ( legally follow here" classifier of spec §4.5.
type parenState int

const (
	parenAllowed parenState = iota
	parenExpected
	parenForbidden
)

type barrierKind int

const (
	notBarrier barrierKind = iota
	parenBarrier
	braceBarrier
)

// osEntry is one entry of the operator-symbol stack: either a pending
// operator awaiting its operands, or a barrier opened by '(' or a callable
// identifier's '('.
type osEntry struct {
	barrier barrierKind
	op      ast.Op
}

// callFrame is the as-stack's record of one open call: the callee name
// (resolved to macro/function/"$" at close), the already-comma'd argument
// subtrees, and the es depth the frame was opened at (so closing it can
// tell a trailing, not-yet-comma'd argument from an empty argument list).
type callFrame struct {
	callee string
	esBase int
	args   []ast.Node
}

// macro is a parser-local macro definition. body holds every expression
// that followed the name in "$(name, expr1, expr2, …)" — spec §3's "the
// remaining expressions become the body". Spec §4.5 numbers this same
// sequence B_0, B_1 … B_m and drops B_0 at expansion time (see
// expandMacro), so body[0] is kept here and only discarded when a call
// site is expanded, not when the macro is defined.
type macro struct {
	body []ast.Node
}

// Parser holds the three shunting-yard stacks plus the local macro table
// and paren/callee lookahead state for one Create call.
type Parser struct {
	lex    *lexer.Lexer
	env    *env.Environment
	funcs  *funcs.Registry
	macros map[string]*macro

	es stack.Stack[ast.Node]
	os stack.Stack[osEntry]
	as stack.Stack[*callFrame]

	paren         parenState
	pendingCallee string

	cur token.Token
}

// createError is the value Create actually returns on failure: its Error()
// string carries no clause-specific detail, matching spec §7's "the host
// reports a generic parse failure". The originating *token.Error still
// hangs off Unwrap, so a host that wants the detail (cmd/expandex/host.go's
// fuzzy-suggestion lookup, or a test) can still reach it with errors.As —
// only the default string a host would print by just calling Error() is
// generic.
type createError struct {
	cause error
}

func (e *createError) Error() string { return "parse failed" }
func (e *createError) Unwrap() error { return e.cause }

// Create parses text into a single expression tree against environment and
// registry, per spec §6. On any failure it returns a nil tree and a
// createError whose Error() string carries no detail about which clause
// misfired, matching spec §7's "the host reports a generic parse failure";
// the detailed *token.Error is reachable only through Unwrap.
func Create(text string, environment *env.Environment, registry *funcs.Registry) (ast.Node, error) {
	p := &Parser{
		lex:    lexer.New(text),
		env:    environment,
		funcs:  registry,
		macros: make(map[string]*macro),
		paren:  parenAllowed,
	}
	tree, err := p.run()
	if err != nil {
		p.rollback()
		return nil, &createError{cause: err}
	}
	return tree, nil
}

func (p *Parser) run() (ast.Node, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	for p.cur.Kind != token.EOF {
		if err := p.step(); err != nil {
			return nil, err
		}
	}
	return p.finish()
}

func (p *Parser) advance() error {
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

// step dispatches the current token. The EXPECTED-paren check happens here,
// ahead of the per-kind dispatch, because it applies regardless of what
// kind of token follows a callable identifier other than '('.
func (p *Parser) step() error {
	if p.paren == parenExpected && p.cur.Kind != token.LParen {
		return p.errf(token.BadCall, "'(' expected after callable %q", p.pendingCallee)
	}

	switch p.cur.Kind {
	case token.Number:
		p.es.Push(&ast.Const{Value: p.cur.Num})
		p.paren = parenForbidden
		return p.advance()
	case token.Ident:
		return p.stepIdent()
	case token.LParen:
		return p.stepLParen()
	case token.RParen:
		return p.stepRParen()
	case token.Op:
		return p.stepOp()
	}
	return p.errf(token.UnknownOperator, "unexpected token")
}

func (p *Parser) stepIdent() error {
	name, pos := p.cur.Text, p.cur.Pos
	if p.isCallable(name) {
		p.pendingCallee = name
		p.paren = parenExpected
		return p.advance()
	}
	v := p.env.LookupOrCreate(name)
	if v == nil {
		return &token.Error{Kind: token.UnexpectedWord, Pos: pos, Msg: "invalid identifier " + name}
	}
	p.es.Push(&ast.VarRef{Var: v})
	p.paren = parenForbidden
	return p.advance()
}

// isCallable reports whether name resolves to the macro-definition form,
// an already-defined macro, or a registered function — the priority order
// spec §4.3 states ("macro > function > error") collapsed into a boolean,
// since at the point an identifier is seen there is nothing useful to do
// with the distinction yet; the same priority is re-applied for real in
// resolveCall once the matching ')' arrives.
func (p *Parser) isCallable(name string) bool {
	if name == "$" {
		return true
	}
	if _, ok := p.macros[name]; ok {
		return true
	}
	if _, ok := p.funcs.Lookup(name); ok {
		return true
	}
	return false
}

func (p *Parser) stepLParen() error {
	switch p.paren {
	case parenExpected:
		p.os.Push(osEntry{barrier: braceBarrier})
		p.as.Push(&callFrame{callee: p.pendingCallee, esBase: p.es.Len()})
		p.pendingCallee = ""
	case parenAllowed:
		p.os.Push(osEntry{barrier: parenBarrier})
	case parenForbidden:
		return p.errf(token.BadCall, "'(' after a value that cannot be called")
	}
	p.paren = parenAllowed
	return p.advance()
}

func (p *Parser) stepRParen() error {
	barrier, found, err := p.reduceAllToBarrier()
	if err != nil {
		return err
	}
	if !found {
		return p.errf(token.MismatchedParen, "unbalanced ')'")
	}
	p.os.Pop()

	if barrier.barrier == braceBarrier {
		frame, _ := p.as.Pop()
		if p.es.Len() > frame.esBase {
			v, _ := p.es.Pop()
			frame.args = append(frame.args, v)
		}
		node, err := p.resolveCall(frame)
		if err != nil {
			return err
		}
		p.es.Push(node)
	}

	p.paren = parenForbidden
	return p.advance()
}

func (p *Parser) stepOp() error {
	op := ast.Op(p.cur.Text)
	if op == ast.OpComma {
		return p.stepComma()
	}
	if err := p.reduceWhile(op); err != nil {
		return err
	}
	p.os.Push(osEntry{op: op})
	p.paren = parenAllowed
	return p.advance()
}

// stepComma implements spec §4.5's "comma inside a call frame" rule.
// reduceWhile(OpComma) first flushes every pending operator of this
// argument — comma has the lowest binding weight, so every real operator
// reduces before it is shifted — which is what makes "is the top of os a
// brace barrier now" equivalent to "are we directly inside a call frame's
// argument list", matching the spec text's literal check.
func (p *Parser) stepComma() error {
	if err := p.reduceWhile(ast.OpComma); err != nil {
		return err
	}
	if top, ok := p.os.Peek(); ok && top.barrier == braceBarrier {
		if frame, ok := p.as.Peek(); ok {
			if v, ok := p.es.Pop(); ok {
				frame.args = append(frame.args, v)
			}
		}
	} else {
		p.os.Push(osEntry{op: ast.OpComma})
	}
	p.paren = parenAllowed
	return p.advance()
}

// reduceWhile pops and binds operators while the top of os is a real
// (non-barrier) operator that must reduce before incoming is shifted.
func (p *Parser) reduceWhile(incoming ast.Op) error {
	for {
		top, ok := p.os.Peek()
		if !ok || top.barrier != notBarrier {
			return nil
		}
		if !ast.ReducesBefore(top.op, incoming) {
			return nil
		}
		p.os.Pop()
		if err := p.bind(top.op); err != nil {
			return err
		}
	}
}

// reduceAllToBarrier pops and binds every operator above the nearest
// barrier, unconditionally (no precedence comparison — a ')' flushes an
// entire bracketed group regardless of what is pending). found is false
// if os ran out before any barrier was seen (unbalanced close).
func (p *Parser) reduceAllToBarrier() (osEntry, bool, error) {
	for {
		top, ok := p.os.Peek()
		if !ok {
			return osEntry{}, false, nil
		}
		if top.barrier != notBarrier {
			return top, true, nil
		}
		p.os.Pop()
		if err := p.bind(top.op); err != nil {
			return osEntry{}, false, err
		}
	}
}

// bind implements spec §4.5's bind(symbol, es): pop the operator's
// operands off es (one for unary, two for binary, left-then-right order
// preserved) and push the resulting node.
func (p *Parser) bind(op ast.Op) error {
	def, err := ast.Get(op)
	if err != nil {
		return err
	}
	if def.Arity == ast.Arity1 {
		v, ok := p.es.Pop()
		if !ok {
			return p.errf(token.MissingOperand, "missing operand for %s", def.Name)
		}
		p.es.Push(&ast.Unary{Op: op, Child: v})
		return nil
	}
	b, ok := p.es.Pop()
	if !ok {
		return p.errf(token.MissingOperand, "missing operand for %s", def.Name)
	}
	a, ok := p.es.Pop()
	if !ok {
		return p.errf(token.MissingOperand, "missing operand for %s", def.Name)
	}
	if op == ast.OpAssign {
		if _, ok := a.(*ast.VarRef); !ok {
			return p.errf(token.BadAssignment, "left side of = must be a variable")
		}
	}
	p.es.Push(&ast.Binary{Op: op, Left: a, Right: b})
	return nil
}

// resolveCall finalizes a closed call frame in the priority order spec
// §4.3 states: the "$" macro-definition apparatus, then an already-known
// macro, then a registered function.
func (p *Parser) resolveCall(frame *callFrame) (ast.Node, error) {
	if frame.callee == "$" {
		return p.defineMacro(frame.args)
	}
	if m, ok := p.macros[frame.callee]; ok {
		return p.expandMacro(m, frame.args), nil
	}
	if d, ok := p.funcs.Lookup(frame.callee); ok {
		return ast.NewFunc(d, frame.args), nil
	}
	return nil, p.errf(token.BadCall, "call to unresolvable name %q", frame.callee)
}

// defineMacro implements the "$(name, body...)" special form.
func (p *Parser) defineMacro(args []ast.Node) (ast.Node, error) {
	if len(args) == 0 {
		return nil, p.errf(token.BadMacro, "macro definition requires a name")
	}
	ref, ok := args[0].(*ast.VarRef)
	if !ok {
		return nil, p.errf(token.BadMacro, "macro name must be a bare variable reference")
	}
	p.macros[ref.Var.Name] = &macro{body: args[1:]}
	return &ast.Const{Value: 0}, nil
}

// expandMacro builds the nested comma chain of spec §4.5:
//
//	( $1 = A_1 , ( $2 = A_2 , ( … , ( copy(B_1) , ( copy(B_2) , … copy(B_m) ) ) ) ) )
//
// m.body is B_0..B_m; B_0 is ignored per §4.5's note and never cloned, so
// only m.body[1:] (B_1..B_m) feeds the chain.
//
// $1…$k are real, shared variables in the enclosing environment — deep
// copying the body does not fork them, matching the "known limitation"
// spec §9 documents.
func (p *Parser) expandMacro(m *macro, callArgs []ast.Node) ast.Node {
	var rest []ast.Node
	if len(m.body) > 0 {
		rest = m.body[1:]
	}
	body := make([]ast.Node, len(rest))
	for i, b := range rest {
		body[i] = ast.Clone(b)
	}

	var tail ast.Node
	if len(body) == 0 {
		tail = &ast.Const{Value: 0}
	} else {
		tail = body[len(body)-1]
		for i := len(body) - 2; i >= 0; i-- {
			tail = &ast.Binary{Op: ast.OpComma, Left: body[i], Right: tail}
		}
	}

	for i := len(callArgs) - 1; i >= 0; i-- {
		slot := p.env.LookupOrCreate(fmt.Sprintf("$%d", i+1))
		assign := &ast.Binary{Op: ast.OpAssign, Left: &ast.VarRef{Var: slot}, Right: callArgs[i]}
		tail = &ast.Binary{Op: ast.OpComma, Left: assign, Right: tail}
	}
	return tail
}

// finish implements spec §4.5's end-of-input handling: drain os, binding
// everything left (an unclosed bracket is an error), then the single
// remaining es value is the tree — or Const{Empty: true} if nothing was
// ever pushed.
func (p *Parser) finish() (ast.Node, error) {
	if p.paren == parenExpected {
		return nil, p.errf(token.BadCall, "'(' expected after callable %q", p.pendingCallee)
	}
	for {
		top, ok := p.os.Peek()
		if !ok {
			break
		}
		if top.barrier != notBarrier {
			return nil, p.errf(token.MismatchedParen, "unclosed '('")
		}
		p.os.Pop()
		if err := p.bind(top.op); err != nil {
			return nil, err
		}
	}
	v, ok := p.es.Pop()
	if !ok {
		return &ast.Const{Value: 0, Empty: true}, nil
	}
	if !p.es.IsEmpty() {
		return nil, p.errf(token.MismatchedParen, "incomplete expression")
	}
	return v, nil
}

// rollback destroys every partial structure left behind by a failed
// parse — es, every open call frame's collected args, and every macro
// body recorded so far — per spec §4.5/§7's full-rollback error policy.
func (p *Parser) rollback() {
	for {
		n, ok := p.es.Pop()
		if !ok {
			break
		}
		ast.Destroy(n)
	}
	for {
		frame, ok := p.as.Pop()
		if !ok {
			break
		}
		for _, a := range frame.args {
			ast.Destroy(a)
		}
	}
	for name, m := range p.macros {
		for _, b := range m.body {
			ast.Destroy(b)
		}
		delete(p.macros, name)
	}
}

func (p *Parser) errf(kind token.ErrorKind, format string, args ...any) error {
	return &token.Error{Kind: kind, Pos: p.cur.Pos, Msg: fmt.Sprintf(format, args...)}
}

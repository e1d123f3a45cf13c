// Package lexer implements the context-sensitive tokenizer of spec §4.4: a
// stateful, one-pass scanner whose classification of a byte (number start,
// identifier start, unary vs. binary operator, paren legality) depends on
// a small flags bitset carried from one token to the next.
//
// Adapted from the teacher's lexer/lexer.go position/readPosition/column
// bookkeeping, restructured from "scan everything up front into a
// []Token" into a pull-based Next() so the parser can react to paren/call-
// frame context the tokenizer alone can't resolve (macro name vs. function
// name — see parser.Parser.paren).
package lexer

import (
	"strconv"

	"expandex/ast"
	"expandex/env"
	"expandex/token"
)

// Flags is the tokenizer's context bitset (spec §4.4).
type Flags uint16

const (
	TNUMBER Flags = 1 << iota
	TWORD
	TOPEN
	TCLOSE
	TOP
	UNARY
	COMMA
)

// TDefault is the initial flags state: a number, a word or an opening
// paren may legally start the input.
const TDefault = TNUMBER | TWORD | TOPEN

// Lexer is a stateful scanner over a byte buffer.
type Lexer struct {
	buf   []byte
	pos   int
	flags Flags
}

// New returns a Lexer positioned at the start of src with the default
// flags state.
func New(src string) *Lexer {
	return &Lexer{buf: []byte(src), flags: TDefault}
}

// Flags returns the tokenizer's current context bitset, mostly useful for
// tests asserting unary-vs-binary classification.
func (l *Lexer) Flags() Flags { return l.flags }

// Pos returns the current byte offset, used for error reporting.
func (l *Lexer) Pos() int { return l.pos }

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\r' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// Next scans and returns the next token, advancing past it. At end of
// input it returns a token.EOF token with a nil error, matching spec
// §4.4's "the caller advances the buffer by n and repeats until n == 0".
func (l *Lexer) Next() (token.Token, error) {
	for {
		if l.pos >= len(l.buf) {
			return token.Token{Kind: token.EOF, Pos: l.pos}, nil
		}
		c := l.buf[l.pos]

		switch {
		case c == '\n':
			if tok, emitted, err := l.handleNewline(); err != nil {
				return token.Token{}, err
			} else if emitted {
				return tok, nil
			}
			continue

		case isSpace(c):
			l.pos++
			continue

		case c == '#':
			for l.pos < len(l.buf) && l.buf[l.pos] != '\n' {
				l.pos++
			}
			continue

		case isDigit(c) || c == '.':
			return l.scanNumber()

		case env.IsFirstVarChr(c):
			return l.scanIdent()

		case c == '(':
			return l.scanOpenParen()

		case c == ')':
			return l.scanCloseParen()

		default:
			return l.scanOperator()
		}
	}
}

func (l *Lexer) scanNumber() (token.Token, error) {
	if l.flags&TNUMBER == 0 {
		return token.Token{}, &token.Error{Kind: token.UnexpectedNumber, Pos: l.pos, Msg: "number not expected here"}
	}
	start := l.pos
	sawDot := false
	for l.pos < len(l.buf) {
		c := l.buf[l.pos]
		if isDigit(c) {
			l.pos++
			continue
		}
		if c == '.' && !sawDot {
			sawDot = true
			l.pos++
			continue
		}
		break
	}
	text := string(l.buf[start:l.pos])
	v, err := strconv.ParseFloat(text, 32)
	if err != nil {
		return token.Token{}, &token.Error{Kind: token.UnexpectedNumber, Pos: start, Msg: "malformed number " + text}
	}
	// TOPEN is set here (beyond §4.4's literal TOP|TCLOSE) so a '(' right
	// after a number tokenizes as an LParen instead of failing as a
	// structural MismatchedParen: spec §8 calls "2(3)" a BadCall, which is
	// the parser's own parenForbidden classification (the same path a
	// variable callee already hits, e.g. "x(3)") — not a tokenizer-level
	// bracket error.
	l.flags = TOP | TOPEN | TCLOSE | COMMA
	return token.Token{Kind: token.Number, Text: text, Num: float32(v), Pos: start}, nil
}

func (l *Lexer) scanIdent() (token.Token, error) {
	if l.flags&TWORD == 0 {
		return token.Token{}, &token.Error{Kind: token.UnexpectedWord, Pos: l.pos, Msg: "identifier not expected here"}
	}
	start := l.pos
	l.pos++
	for l.pos < len(l.buf) && env.IsVarChr(l.buf[l.pos]) {
		l.pos++
	}
	text := string(l.buf[start:l.pos])
	l.flags = TOP | TOPEN | TCLOSE | COMMA
	return token.Token{Kind: token.Ident, Text: text, Pos: start}, nil
}

func (l *Lexer) scanOpenParen() (token.Token, error) {
	if l.flags&TOPEN == 0 {
		return token.Token{}, &token.Error{Kind: token.MismatchedParen, Pos: l.pos, Msg: "unexpected '('"}
	}
	pos := l.pos
	l.pos++
	l.flags = TNUMBER | TWORD | TOPEN | TCLOSE
	return token.Token{Kind: token.LParen, Text: "(", Pos: pos}, nil
}

func (l *Lexer) scanCloseParen() (token.Token, error) {
	if l.flags&TCLOSE == 0 {
		return token.Token{}, &token.Error{Kind: token.MismatchedParen, Pos: l.pos, Msg: "unexpected ')'"}
	}
	pos := l.pos
	l.pos++
	l.flags = TOP | TCLOSE
	return token.Token{Kind: token.RParen, Text: ")", Pos: pos}, nil
}

// scanOperator handles every remaining byte: in value position (TOP
// unset) it must be one of the unary bytes; otherwise the tokenizer
// extends it greedily against the table of known binary operators,
// preferring the longest recognized prefix.
func (l *Lexer) scanOperator() (token.Token, error) {
	start := l.pos
	c := l.buf[l.pos]

	if l.flags&TOP == 0 {
		if op, ok := ast.UnaryOp(c); ok {
			l.pos++
			l.flags = TNUMBER | TWORD | TOPEN | UNARY
			return token.Token{Kind: token.Op, Text: string(op), Pos: start}, nil
		}
		if ast.IsKnownOperatorByte(c) {
			return token.Token{}, &token.Error{Kind: token.MissingOperand, Pos: start, Msg: "expected a value before operator"}
		}
		return token.Token{}, &token.Error{Kind: token.UnknownOperator, Pos: start, Msg: "unrecognized byte"}
	}

	lexeme, ok := ast.LongestBinaryMatch(l.buf[l.pos:])
	if !ok {
		return token.Token{}, &token.Error{Kind: token.UnknownOperator, Pos: start, Msg: "unrecognized operator"}
	}
	l.pos += len(lexeme)
	l.flags = TNUMBER | TWORD | TOPEN
	return token.Token{Kind: token.Op, Text: lexeme, Pos: start}, nil
}

// handleNewline implements the §4.4 newline rule: a run of whitespace
// containing a newline becomes a synthetic comma token iff the tokenizer
// had just completed an operand (flags&TOP != 0) and the next significant
// byte is neither end-of-input nor ')' — an empty statement at the tail of
// a block or script is not sequenced with a dangling comma.
func (l *Lexer) handleNewline() (token.Token, bool, error) {
	startedOnOperand := l.flags&TOP != 0
	pos := l.pos

	for pos < len(l.buf) {
		c := l.buf[pos]
		switch {
		case c == '\n' || isSpace(c):
			pos++
		case c == '#':
			for pos < len(l.buf) && l.buf[pos] != '\n' {
				pos++
			}
		default:
			goto done
		}
	}
done:
	synthPos := l.pos
	l.pos = pos

	if !startedOnOperand {
		return token.Token{}, false, nil
	}
	if l.pos >= len(l.buf) || l.buf[l.pos] == ')' {
		l.flags &^= COMMA
		return token.Token{}, false, nil
	}
	l.flags = TNUMBER | TWORD | TOPEN | COMMA
	return token.Token{Kind: token.Op, Text: ",", Pos: synthPos}, true, nil
}

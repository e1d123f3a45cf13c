package main

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"expandex/env"
	"expandex/funcs"
	"expandex/internal/builtins"
	"expandex/token"
)

// newRegistry builds the sample function registry every verb registers
// against — the core package graph never depends on internal/builtins
// itself (spec.md §1 scopes a standard library out of the engine).
func newRegistry() *funcs.Registry {
	return funcs.NewRegistry(builtins.Descriptors()...)
}

// reportParseError prints a parse failure to stderr. When the failure is a
// BadCall against an unrecognized name, it suggests the closest registered
// function name by fuzzy match — a host-side nicety layered entirely on
// top of parser.Create's generic error, never inside it.
func reportParseError(err error, registry *funcs.Registry, src string) {
	fmt.Fprintln(os.Stderr, "parse error:", err)

	var perr *token.Error
	if !errors.As(err, &perr) || perr.Kind != token.BadCall {
		return
	}
	name := identAt(src, perr.Pos)
	if name == "" {
		return
	}
	matches := fuzzy.RankFindFold(name, registry.Names())
	if len(matches) == 0 {
		return
	}
	sort.Sort(matches)
	fmt.Fprintf(os.Stderr, "  unknown function %q, did you mean %q?\n", name, matches[0].Target)
}

// identAt recovers the callee name of a BadCall reported at byte offset pos
// in src: the parser reports such a call at its '(', so this returns the
// identifier ending just before it (blanks allowed in between), or "" if
// there is none. It exists for the sole purpose of feeding the
// fuzzy-suggestion lookup above — the parser itself never needs this,
// since it already had the token.
func identAt(src string, pos int) string {
	if pos < 0 || pos >= len(src) || src[pos] != '(' {
		return ""
	}
	end := pos
	for end > 0 && (src[end-1] == ' ' || src[end-1] == '\t') {
		end--
	}
	start := end
	for start > 0 && env.IsVarChr(src[start-1]) {
		start--
	}
	if start == end || !env.IsFirstVarChr(src[start]) {
		return ""
	}
	return src[start:end]
}

// Package env implements the variable environment: a singly-linked,
// insertion-ordered table of named scalars owned by the host for the
// lifetime of one embedding session.
package env

import "expandex/numeric"

// IsFirstVarChr reports whether c may start a variable/function identifier.
//
//	isfirstvarchr(c) = (unsigned(c) >= '@' AND c != '^' AND c != '|') OR c == '$'
func IsFirstVarChr(c byte) bool {
	if c == '$' {
		return true
	}
	return c >= '@' && c != '^' && c != '|'
}

// IsVarChr reports whether c may appear after the first byte of an
// identifier: isvarchr(c) = isfirstvarchr(c) OR c == '#' OR c is a digit.
func IsVarChr(c byte) bool {
	return IsFirstVarChr(c) || c == '#' || (c >= '0' && c <= '9')
}

// ValidName reports whether name is non-empty and every byte obeys the
// first-char/rest-char predicates above.
func ValidName(name string) bool {
	if len(name) == 0 {
		return false
	}
	if !IsFirstVarChr(name[0]) {
		return false
	}
	for i := 1; i < len(name); i++ {
		if !IsVarChr(name[i]) {
			return false
		}
	}
	return true
}

// Variable is a single named scalar. Its address is stable for the life of
// the Environment that owns it: ast.VarRef nodes keep a *Variable, not a
// copy, so assignment through one reference is visible through every other
// reference to the same name.
type Variable struct {
	Name  string
	Value numeric.Scalar
	next  *Variable
}

// Environment is the live, mutable mapping from variable names to scalar
// values. The zero value is ready to use.
type Environment struct {
	head *Variable
	tail *Variable
}

// New returns an empty Environment.
func New() *Environment {
	return &Environment{}
}

// LookupOrCreate returns the Variable named name, creating it (with value
// 0) and appending it to the insertion order if it does not already exist.
// It returns nil if name is empty or violates the identifier predicates —
// the parser pre-validates every name it passes here, so this only matters
// for a host calling in directly per spec.md §4.2.
func (e *Environment) LookupOrCreate(name string) *Variable {
	if !ValidName(name) {
		return nil
	}
	for v := e.head; v != nil; v = v.next {
		if v.Name == name {
			return v
		}
	}
	v := &Variable{Name: name}
	if e.tail == nil {
		e.head = v
		e.tail = v
	} else {
		e.tail.next = v
		e.tail = v
	}
	return v
}

// Lookup returns the Variable named name without creating it, or nil.
func (e *Environment) Lookup(name string) *Variable {
	for v := e.head; v != nil; v = v.next {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// Destroy releases every variable in the environment. After Destroy,
// evaluating any tree that references a Variable owned by e is undefined —
// per spec.md §4.7, the tree and its environment are independently owned,
// but eval requires the environment to still be alive.
func (e *Environment) Destroy() {
	e.head = nil
	e.tail = nil
}

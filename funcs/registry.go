// Package funcs is the function registry: a read-only, host-supplied table
// mapping identifiers to invokable descriptors, consulted by the parser
// while it resolves a call's callee.
package funcs

import "expandex/numeric"

// InvokeFunc is the shape of a registered function. args is the ordered,
// unevaluated sequence of argument expressions the call was parsed with;
// the function decides whether and when to evaluate them by recursing into
// the supplied eval callback — this lets a function implement
// short-circuiting or argument-count-dependent behavior of its own. ctx is
// the node's persistent, zero-initialized scratch buffer, one allocation
// per call site, reused across every invocation of that site.
type InvokeFunc func(args []Arg, ctx []byte) numeric.Scalar

// CleanupFunc releases any resources an InvokeFunc stashed in ctx. It runs
// exactly once, when the Func node that owns ctx is destroyed.
type CleanupFunc func(ctx []byte)

// Arg is the minimal view of an argument expression an InvokeFunc needs: the
// ability to evaluate it. The concrete type is supplied by package eval,
// which implements this interface over its own node-plus-environment pair;
// funcs itself never imports ast or eval, keeping the registry a leaf
// package.
type Arg interface {
	Eval() numeric.Scalar
}

// Descriptor is one registered function: a name, its invocation contract,
// the number of scratch bytes its Func nodes should own, and an optional
// cleanup hook.
type Descriptor struct {
	Name    string
	Invoke  InvokeFunc
	CtxSize int
	Cleanup CleanupFunc
}

// Registry is the read-only, ordered table of descriptors a host builds
// once and hands to every call to parser.Create. The descriptors come
// from the host (spec.md §4.3); NewRegistry only stores them in order, and
// Registry only resolves names the parser looks up.
type Registry struct {
	descriptors []Descriptor
}

// NewRegistry builds a Registry from the given descriptors, in order.
func NewRegistry(descriptors ...Descriptor) *Registry {
	return &Registry{descriptors: descriptors}
}

// Lookup finds the descriptor registered under name, or reports ok=false.
// The scan is linear and the registry is never mutated after construction,
// matching the read-only contract spec.md §4.3 describes.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	if r == nil {
		return Descriptor{}, false
	}
	for _, d := range r.descriptors {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Names returns every registered function name, in registration order. Used
// by host tooling (e.g. "unknown function, did you mean…" suggestions) —
// never by the core parser/evaluator themselves.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, len(r.descriptors))
	for i, d := range r.descriptors {
		names[i] = d.Name
	}
	return names
}

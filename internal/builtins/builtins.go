// Package builtins is a small sample function library for a host embedding
// the engine — not part of the core (spec.md §1 scopes a standard function
// library out of the engine itself), kept under internal/ purely so
// cmd/expandex has something concrete to register.
package builtins

import (
	"math"

	"expandex/funcs"
	"expandex/numeric"
)

// Descriptors returns the sample registry: sin, cos, min, max, print.
func Descriptors() []funcs.Descriptor {
	return []funcs.Descriptor{
		unaryMath("sin", math.Sin),
		unaryMath("cos", math.Cos),
		{Name: "min", Invoke: foldNumeric(math.Min)},
		{Name: "max", Invoke: foldNumeric(math.Max)},
		{Name: "print", Invoke: invokePrint},
	}
}

func unaryMath(name string, fn func(float64) float64) funcs.Descriptor {
	return funcs.Descriptor{
		Name: name,
		Invoke: func(args []funcs.Arg, ctx []byte) numeric.Scalar {
			if len(args) == 0 {
				return numeric.Scalar(math.NaN())
			}
			return numeric.Scalar(fn(float64(args[0].Eval())))
		},
	}
}

// foldNumeric builds an Invoke that folds every argument through a
// two-argument float64 combiner (math.Min/math.Max), matching the way a
// variadic min/max is usually defined: the empty call has no identity
// element to fall back on, so it yields NaN rather than guessing one.
func foldNumeric(combine func(a, b float64) float64) funcs.InvokeFunc {
	return func(args []funcs.Arg, ctx []byte) numeric.Scalar {
		if len(args) == 0 {
			return numeric.Scalar(math.NaN())
		}
		acc := float64(args[0].Eval())
		for _, a := range args[1:] {
			acc = combine(acc, float64(a.Eval()))
		}
		return numeric.Scalar(acc)
	}
}

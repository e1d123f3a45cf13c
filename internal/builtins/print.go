package builtins

import (
	"fmt"
	"os"

	"expandex/funcs"
	"expandex/numeric"
)

// invokePrint evaluates every argument in order, writes each to stdout, and
// returns the last one evaluated (0 for a zero-argument call) — a
// pass-through debugging aid, the same shape as any other function in this
// sample registry.
func invokePrint(args []funcs.Arg, ctx []byte) numeric.Scalar {
	var last numeric.Scalar
	for i, a := range args {
		last = a.Eval()
		if i > 0 {
			fmt.Fprint(os.Stdout, " ")
		}
		fmt.Fprintf(os.Stdout, "%g", last)
	}
	fmt.Fprintln(os.Stdout)
	return last
}

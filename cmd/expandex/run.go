package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"expandex/env"
	"expandex/eval"
	"expandex/parser"
)

// runCmd executes a script file once and prints its result, the rewrite's
// analogue of the teacher's cmd_run.go.
type runCmd struct{}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "Evaluate an expression script from a file" }
func (*runCmd) Usage() string {
	return `run <file>:
  Parse and evaluate the expression script in <file>, printing its result.
`
}
func (*runCmd) SetFlags(*flag.FlagSet) {}

func (r *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "file not provided")
		return subcommands.ExitUsageError
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to read file:", err)
		return subcommands.ExitFailure
	}

	environment := env.New()
	registry := newRegistry()
	src := string(data)

	tree, err := parser.Create(src, environment, registry)
	if err != nil {
		reportParseError(err, registry, src)
		return subcommands.ExitFailure
	}

	result := eval.Eval(tree, environment)
	fmt.Println(result)
	return subcommands.ExitSuccess
}

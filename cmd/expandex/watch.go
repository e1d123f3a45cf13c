package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/google/subcommands"

	"expandex/env"
	"expandex/eval"
	"expandex/parser"
)

// watchCmd re-parses and re-evaluates a script file every time it changes
// on disk, using a fresh environment per run — there is no notion of
// "session state" here, unlike repl, since each write is its own complete
// script.
type watchCmd struct{}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "Re-evaluate a script file on every save" }
func (*watchCmd) Usage() string {
	return `watch <file>:
  Evaluate <file> now, then again every time it is written to. Ctrl-C to
  exit.
`
}
func (*watchCmd) SetFlags(*flag.FlagSet) {}

func (w *watchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "file not provided")
		return subcommands.ExitUsageError
	}
	path := args[0]

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to start watcher:", err)
		return subcommands.ExitFailure
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		fmt.Fprintln(os.Stderr, "failed to watch file:", err)
		return subcommands.ExitFailure
	}

	runScript(path)
	for {
		select {
		case evt, ok := <-watcher.Events:
			if !ok {
				return subcommands.ExitSuccess
			}
			if evt.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				runScript(path)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return subcommands.ExitSuccess
			}
			fmt.Fprintln(os.Stderr, "watch error:", err)
		case <-ctx.Done():
			return subcommands.ExitSuccess
		}
	}
}

func runScript(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to read file:", err)
		return
	}

	environment := env.New()
	registry := newRegistry()
	src := string(data)

	tree, err := parser.Create(src, environment, registry)
	if err != nil {
		reportParseError(err, registry, src)
		return
	}
	fmt.Fprintln(os.Stdout, eval.Eval(tree, environment))
}

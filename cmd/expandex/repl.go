package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"

	"expandex/env"
	"expandex/eval"
	"expandex/parser"
)

// replCmd is the interactive session, the rewrite's analogue of the
// teacher's cmd_repl.go — rebuilt on github.com/chzyer/readline for line
// editing and history instead of a bare bufio.Scanner loop, since the
// teacher's own go.mod already carried readline without ever importing it.
type replCmd struct{}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "Start an interactive REPL session" }
func (*replCmd) Usage() string {
	return `repl:
  Start an interactive session. Variables persist across lines within one
  session; a macro definition only lasts for the line it is defined on.
  Ctrl-D exits.
`
}
func (*replCmd) SetFlags(*flag.FlagSet) {}

func (r *replCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     historyFilePath(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "readline init failed:", err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	fmt.Fprintln(os.Stdout, "expandex REPL — Ctrl-D to exit")

	environment := env.New()
	registry := newRegistry()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return subcommands.ExitSuccess
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, "readline error:", err)
			return subcommands.ExitFailure
		}
		if line == "" {
			continue
		}

		tree, err := parser.Create(line, environment, registry)
		if err != nil {
			reportParseError(err, registry, line)
			continue
		}
		fmt.Fprintln(os.Stdout, eval.Eval(tree, environment))
	}
}

// historyFilePath picks a history file under the user's home directory,
// falling back to no history (an empty path, which readline treats as
// "disabled") if the home directory can't be resolved.
func historyFilePath() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, ".expandex_history")
}

// Command expandex is a sample host embedding the engine core: a REPL, a
// batch file runner, a debug tree dumper and a file watcher, registered the
// way the teacher's cmd_repl.go/cmd_run.go/cmd_emit_bytecode.go register
// themselves with google/subcommands.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&replCmd{}, "")
	subcommands.Register(&runCmd{}, "")
	subcommands.Register(&dumpCmd{}, "")
	subcommands.Register(&watchCmd{}, "")

	flag.Parse()
	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}

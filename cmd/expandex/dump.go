package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/subcommands"

	"expandex/ast"
	"expandex/env"
	"expandex/parser"
)

// treeDump is the CBOR-serializable debug shape of a compiled tree: kind,
// operator, child count, and whichever constant/varref/func payload a node
// carries. It exists because ast.Node's concrete structs hold unexported
// fields cbor can't walk (Variable.next, the VarRef pointer itself) — this
// is the rewrite's analogue of the teacher's cmd_emit_bytecode.go bytecode
// dump, a debug view of the compiled form rather than the compiled form
// itself.
type treeDump struct {
	Kind     string     `cbor:"kind"`
	Op       string     `cbor:"op,omitempty"`
	Value    float32    `cbor:"value,omitempty"`
	Var      string     `cbor:"var,omitempty"`
	Func     string     `cbor:"func,omitempty"`
	Children []treeDump `cbor:"children,omitempty"`
}

func dumpNode(n ast.Node) treeDump {
	switch v := n.(type) {
	case *ast.Const:
		return treeDump{Kind: "Const", Value: v.Value}
	case *ast.VarRef:
		return treeDump{Kind: "VarRef", Var: v.Var.Name}
	case *ast.Unary:
		return treeDump{Kind: "Unary", Op: string(v.Op), Children: []treeDump{dumpNode(v.Child)}}
	case *ast.Binary:
		return treeDump{Kind: "Binary", Op: string(v.Op), Children: []treeDump{dumpNode(v.Left), dumpNode(v.Right)}}
	case *ast.Func:
		children := make([]treeDump, len(v.Args))
		for i, a := range v.Args {
			children[i] = dumpNode(a)
		}
		return treeDump{Kind: "Func", Func: v.Descriptor.Name, Children: children}
	default:
		return treeDump{Kind: "Unknown"}
	}
}

// dumpCmd compiles a script and writes its tree's debug shape, CBOR-encoded,
// to stdout or -out.
type dumpCmd struct {
	out string
}

func (*dumpCmd) Name() string     { return "dump" }
func (*dumpCmd) Synopsis() string { return "Compile a script and dump its tree shape as CBOR" }
func (*dumpCmd) Usage() string {
	return `dump <file>:
  Parse <file> and write its compiled expression tree's debug shape,
  CBOR-encoded, to stdout (or -out).
`
}
func (c *dumpCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.out, "out", "", "write the encoded tree to this path instead of stdout")
}

func (c *dumpCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	encoded, err := cbor.Marshal(dumpNode(tree))
	if err != nil {
		fmt.Fprintln(os.Stderr, "cbor encode failed:", err)
		return subcommands.ExitFailure
	}

	if c.out == "" {
		os.Stdout.Write(encoded)
		return subcommands.ExitSuccess
	}
	if err := os.WriteFile(c.out, encoded, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "failed to write output:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"stockscope/internal/dashboard"
)

// symbolsCmd holds the flags for the 'symbols' subcommand.
type symbolsCmd struct {
	query string
	limit int
	raw   bool

	out io.Writer
}

func (*symbolsCmd) Name() string     { return "symbols" }
func (*symbolsCmd) Synopsis() string { return "search the tradable symbol directory" }
func (*symbolsCmd) Usage() string {
	return `stockscope symbols [-q <query>] [-limit <n>] [-raw]

  Lists symbols from the configured exchange, optionally filtered by a
  full-text query over symbol and company description.
`
}

func (c *symbolsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.query, "q", "", "search query; empty lists the first symbols alphabetically")
	f.IntVar(&c.limit, "limit", 20, "maximum number of symbols to print")
	f.BoolVar(&c.raw, "raw", false, "print plain markdown instead of rendering it")
}

func (c *symbolsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "Error: unexpected arguments %v\n", f.Args())
		return subcommands.ExitUsageError
	}
	if c.limit <= 0 {
		fmt.Fprintf(os.Stderr, "Error: -limit must be positive\n")
		return subcommands.ExitUsageError
	}

	e, err := loadEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	dir := e.directory(e.finnhub())
	if len(dir.Entries(ctx)) == 0 {
		fmt.Fprintf(os.Stderr, "Error: symbol directory unavailable\n")
		return subcommands.ExitFailure
	}

	printMarkdown(stdout(c.out), dashboard.SymbolsMarkdown(dir.Search(ctx, c.query, c.limit)), c.raw)
	return subcommands.ExitSuccess
}

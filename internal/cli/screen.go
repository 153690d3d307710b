package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/subcommands"

	"stockscope/internal/dashboard"
	"stockscope/internal/insight"
	"stockscope/internal/ranking"
	"stockscope/internal/store"
	"stockscope/internal/watchlist"
)

// screenCmd holds the flags for the 'screen' subcommand.
type screenCmd struct {
	export string
	raw    bool

	out io.Writer
}

func (*screenCmd) Name() string     { return "screen" }
func (*screenCmd) Synopsis() string { return "load up to four symbols and rank them" }
func (*screenCmd) Usage() string {
	return `stockscope screen [-export <file.parquet>] [-raw] SYMBOL...

  Loads a snapshot for each symbol (at most four), prints one card per
  symbol with its insights, then the best pick and suggested weights.
  With -export the ranking is also written to a Parquet file.
`
}

func (c *screenCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.export, "export", "", "write the ranking to this Parquet file")
	f.BoolVar(&c.raw, "raw", false, "print plain markdown instead of rendering it")
}

func (c *screenCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	symbols := f.Args()
	if len(symbols) == 0 {
		fmt.Fprintf(os.Stderr, "Error: at least one symbol is required\n")
		return subcommands.ExitUsageError
	}
	if len(symbols) > watchlist.MaxSlots {
		fmt.Fprintf(os.Stderr, "Error: at most %d symbols can be screened, got %d\n", watchlist.MaxSlots, len(symbols))
		return subcommands.ExitUsageError
	}

	e, err := loadEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	wl := watchlist.New(e.loader(e.finnhub()), e.log)
	for i, sym := range symbols {
		if _, err := wl.Load(ctx, i, sym); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", sym, err)
			return subcommands.ExitUsageError
		}
	}

	var b strings.Builder
	for _, s := range wl.Snapshots() {
		b.WriteString(dashboard.CardMarkdown(s, insight.Derive(s)))
		b.WriteString("\n---\n\n")
	}

	r, err := ranking.Rank(wl.Snapshots())
	switch {
	case errors.Is(err, ranking.ErrNoSymbolsSelected):
		b.WriteString(dashboard.NoSymbolsMarkdown())
	case err != nil:
		fmt.Fprintf(os.Stderr, "Error ranking: %v\n", err)
		return subcommands.ExitFailure
	default:
		b.WriteString(dashboard.SummaryMarkdown(r))
	}
	printMarkdown(stdout(c.out), b.String(), c.raw)

	if c.export == "" {
		return subcommands.ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: nothing to export: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := store.WriteRankingParquet(c.export, r, time.Now()); err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting ranking: %v\n", err)
		return subcommands.ExitFailure
	}
	e.log.Info("ranking exported", "path", c.export, "entries", len(r.Entries))
	return subcommands.ExitSuccess
}

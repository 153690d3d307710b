// Command stockscope screens a small watch-list of stocks: it loads
// snapshots from Finnhub, derives insights, and ranks the symbols.
//
// Usage:
//
//	stockscope [-config stockscope.yaml] symbols -q apple
//	stockscope screen -export ranking.parquet AAPL MSFT
//	stockscope serve
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"

	"stockscope/internal/cli"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	cli.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

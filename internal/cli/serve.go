package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/subcommands"

	"stockscope/internal/api"
	"stockscope/internal/httpapi"
	"stockscope/internal/mirror"
	"stockscope/internal/store"
	"stockscope/internal/watchlist"
)

// serveCmd holds the flags for the 'serve' subcommand.
type serveCmd struct {
	restore bool
	warm    bool
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the watch-list HTTP API and gRPC health" }
func (*serveCmd) Usage() string {
	return `stockscope serve [-restore=false] [-warm=false]

  Serves the REST API until interrupted. Slot assignments are saved to
  SQLite and reloaded on start. When Alpaca credentials are configured,
  held symbols are mirrored into an Alpaca watch-list.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.restore, "restore", true, "reload the slots saved by the previous run")
	f.BoolVar(&c.warm, "warm", true, "fetch the symbol directory before accepting requests")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "Error: unexpected arguments %v\n", f.Args())
		return subcommands.ExitUsageError
	}

	e, err := loadEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := serve(ctx, e, c.restore, c.warm); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// serve wires the full stack and blocks until ctx is cancelled.
func serve(ctx context.Context, e *env, restore, warm bool) error {
	slots, err := store.NewSQLiteStore(e.cfg.Storage.SQLitePath)
	if err != nil {
		return fmt.Errorf("opening slot store: %w", err)
	}
	defer slots.Close()

	client := e.finnhub()
	dir := e.directory(client)

	opts := []watchlist.Option{watchlist.WithStore(slots)}
	if a := e.cfg.Alpaca; a.Enabled() {
		opts = append(opts, watchlist.WithMirror(mirror.NewAlpaca(mirror.Options{
			APIKey:    a.APIKey,
			APISecret: a.APISecret,
			BaseURL:   a.BaseURL,
			Watchlist: a.Watchlist,
		}, e.log)))
		e.log.Info("alpaca mirror enabled", "watchlist", a.Watchlist)
	}
	wl := watchlist.New(e.loader(client), e.log, opts...)

	if warm {
		e.log.Info("symbol directory loaded", "symbols", len(dir.Entries(ctx)))
	}
	if restore {
		if err := wl.Restore(ctx); err != nil {
			return fmt.Errorf("restoring watchlist: %w", err)
		}
	}

	handler := httpapi.NewServer(dir, wl, e.log).Handler()
	return api.NewServer(e.cfg.Server, handler, e.log).ListenAndServe(ctx)
}

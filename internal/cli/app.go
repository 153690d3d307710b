// Package cli implements the stockscope subcommands.
package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"stockscope/internal/config"
	"stockscope/internal/directory"
	"stockscope/internal/finnhub"
	"stockscope/internal/snapshot"
	"stockscope/internal/util"
)

// wordWrap is the glamour wrap width for terminal output.
const wordWrap = 100

var configPath = flag.String("config", os.Getenv("STOCKSCOPE_CONFIG"), "path to the YAML configuration file (defaults apply when empty)")

// Register adds the stockscope subcommands to c.
func Register(c *subcommands.Commander) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")

	c.Register(&symbolsCmd{}, "market data")
	c.Register(&screenCmd{}, "market data")

	c.Register(&serveCmd{}, "server")
}

// env is the configuration and logger shared by every command.
type env struct {
	cfg *config.Config
	log *slog.Logger
}

func loadEnv() (*env, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	log := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(log)
	return &env{cfg: cfg, log: log}, nil
}

func (e *env) finnhub() *finnhub.Client {
	f := e.cfg.Finnhub
	return finnhub.NewClient(finnhub.Options{
		APIKey:           f.APIKey,
		BaseURL:          f.BaseURL,
		Throttle:         f.Throttle,
		Timeout:          f.Timeout,
		NewsLookbackDays: f.NewsLookbackDays,
	}, e.log)
}

func (e *env) directory(lister directory.Lister) *directory.Cache {
	d := e.cfg.Directory
	return directory.New(lister, directory.Options{
		Exchange:      d.Exchange,
		MIC:           d.MIC,
		TTL:           d.TTL,
		FetchAttempts: d.FetchAttempts,
		RetryDelay:    d.RetryDelay,
	}, e.log)
}

func (e *env) loader(fetcher snapshot.Fetcher) *snapshot.Loader {
	return snapshot.NewLoader(fetcher, e.cfg.Finnhub.FetchConcurrency, e.log)
}

// printMarkdown renders md for the terminal. With raw set, or when
// rendering fails, the markdown is written as is.
func printMarkdown(w io.Writer, md string, raw bool) {
	if !raw {
		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(wordWrap))
		if err == nil {
			out, err := r.Render(md)
			if err == nil {
				fmt.Fprint(w, out)
				return
			}
		}
	}
	fmt.Fprint(w, md)
}

func stdout(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}

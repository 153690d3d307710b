// Package mirror copies watch-list symbols into an Alpaca brokerage
// watch-list so they show up in the Alpaca apps.
package mirror

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	alpacaapi "github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
)

// watchlistAPI is the subset of the Alpaca trading client used here.
type watchlistAPI interface {
	GetWatchlists() ([]alpacaapi.Watchlist, error)
	CreateWatchlist(req alpacaapi.CreateWatchlistRequest) (*alpacaapi.Watchlist, error)
	GetWatchlist(watchlistID string) (*alpacaapi.Watchlist, error)
	AddSymbolToWatchlist(watchlistID string, req alpacaapi.AddSymbolToWatchlistRequest) (*alpacaapi.Watchlist, error)
	RemoveSymbolFromWatchlist(watchlistID string, req alpacaapi.RemoveSymbolFromWatchlistRequest) error
}

// Options configures an Alpaca mirror.
type Options struct {
	APIKey    string
	APISecret string
	BaseURL   string
	Watchlist string // name of the Alpaca watch-list to mirror into
}

// Alpaca mirrors symbols into one named Alpaca watch-list, creating it on
// first use.
type Alpaca struct {
	client watchlistAPI
	name   string
	log    *slog.Logger

	mu          sync.Mutex
	watchlistID string
}

// NewAlpaca creates a mirror backed by the Alpaca trading API.
func NewAlpaca(opts Options, log *slog.Logger) *Alpaca {
	client := alpacaapi.NewClient(alpacaapi.ClientOpts{
		APIKey:    opts.APIKey,
		APISecret: opts.APISecret,
		BaseURL:   opts.BaseURL,
	})
	return newAlpaca(client, opts.Watchlist, log)
}

func newAlpaca(client watchlistAPI, name string, log *slog.Logger) *Alpaca {
	if name == "" {
		name = "stockscope"
	}
	if log == nil {
		log = slog.Default()
	}
	return &Alpaca{
		client: client,
		name:   name,
		log:    log.With("component", "mirror"),
	}
}

// Add puts symbol on the watch-list.
func (a *Alpaca) Add(_ context.Context, symbol string) error {
	id, err := a.resolve()
	if err != nil {
		return err
	}
	symbol = strings.ToUpper(symbol)
	if _, err := a.client.AddSymbolToWatchlist(id, alpacaapi.AddSymbolToWatchlistRequest{Symbol: symbol}); err != nil {
		return fmt.Errorf("adding %s to watchlist: %w", symbol, err)
	}
	a.log.Info("symbol mirrored", "symbol", symbol, "watchlist", a.name)
	return nil
}

// Remove takes symbol off the watch-list.
func (a *Alpaca) Remove(_ context.Context, symbol string) error {
	id, err := a.resolve()
	if err != nil {
		return err
	}
	symbol = strings.ToUpper(symbol)
	if err := a.client.RemoveSymbolFromWatchlist(id, alpacaapi.RemoveSymbolFromWatchlistRequest{Symbol: symbol}); err != nil {
		return fmt.Errorf("removing %s from watchlist: %w", symbol, err)
	}
	a.log.Info("symbol unmirrored", "symbol", symbol, "watchlist", a.name)
	return nil
}

// Symbols returns the symbols currently on the watch-list, sorted.
func (a *Alpaca) Symbols(_ context.Context) ([]string, error) {
	id, err := a.resolve()
	if err != nil {
		return nil, err
	}
	wl, err := a.client.GetWatchlist(id)
	if err != nil {
		return nil, fmt.Errorf("getting watchlist: %w", err)
	}
	symbols := make([]string, 0, len(wl.Assets))
	for _, asset := range wl.Assets {
		symbols = append(symbols, asset.Symbol)
	}
	sort.Strings(symbols)
	return symbols, nil
}

// resolve finds the watch-list by name, creating it if missing. The ID is
// cached after the first success.
func (a *Alpaca) resolve() (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.watchlistID != "" {
		return a.watchlistID, nil
	}

	lists, err := a.client.GetWatchlists()
	if err != nil {
		return "", fmt.Errorf("listing watchlists: %w", err)
	}
	for _, w := range lists {
		if w.Name == a.name {
			a.watchlistID = w.ID
			a.log.Info("watchlist found", "id", w.ID)
			return w.ID, nil
		}
	}

	w, err := a.client.CreateWatchlist(alpacaapi.CreateWatchlistRequest{Name: a.name})
	if err != nil {
		return "", fmt.Errorf("creating watchlist: %w", err)
	}
	a.watchlistID = w.ID
	a.log.Info("watchlist created", "id", w.ID)
	return w.ID, nil
}

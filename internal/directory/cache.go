// Package directory maintains a time-bounded cache of the tradable symbol
// universe for one market, with label lookup and full-text search.
package directory

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"stockscope/internal/domain"
	"stockscope/internal/finnhub"
	"stockscope/internal/util"
)

// Lister fetches the raw exchange listing.
type Lister interface {
	ListSymbols(ctx context.Context, exchange string) ([]finnhub.SymbolRecord, error)
}

// Options configures a Cache.
type Options struct {
	Exchange      string        // provider exchange code, e.g. "US"
	MIC           string        // market identifier to keep, e.g. "XNAS"
	TTL           time.Duration // lifetime of a successful listing
	FetchAttempts int
	RetryDelay    time.Duration
}

// Cache holds the filtered listing until its TTL expires. Reads are safe
// for concurrent use; concurrent refreshes share one upstream request.
type Cache struct {
	lister Lister
	opts   Options
	now    func() time.Time
	log    *slog.Logger

	group singleflight.Group

	mu    sync.RWMutex
	state *listing
}

// listing is an immutable view of one successful fetch.
type listing struct {
	labels   map[string]string // label -> symbol
	entries  []domain.SymbolEntry
	bySymbol map[string]domain.SymbolEntry
	index    *searchIndex
	expires  time.Time
}

var emptyListing = &listing{
	labels:   map[string]string{},
	bySymbol: map[string]domain.SymbolEntry{},
}

// New creates a Cache. Nothing is fetched until the first read.
func New(lister Lister, opts Options, log *slog.Logger) *Cache {
	if opts.Exchange == "" {
		opts.Exchange = "US"
	}
	if log == nil {
		log = slog.Default()
	}
	return &Cache{
		lister: lister,
		opts:   opts,
		now:    time.Now,
		log:    log.With("component", "directory"),
	}
}

// Directory returns the label -> symbol mapping. Inside the TTL window no
// network access happens. On fetch failure the mapping is empty; the failure
// is not cached, so the next call tries again.
func (c *Cache) Directory(ctx context.Context) map[string]string {
	l := c.current(ctx)
	out := make(map[string]string, len(l.labels))
	for k, v := range l.labels {
		out[k] = v
	}
	return out
}

// Entries returns the cached entries sorted by symbol.
func (c *Cache) Entries(ctx context.Context) []domain.SymbolEntry {
	l := c.current(ctx)
	out := make([]domain.SymbolEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Lookup resolves one symbol, case-insensitively.
func (c *Cache) Lookup(ctx context.Context, symbol string) (domain.SymbolEntry, bool) {
	l := c.current(ctx)
	e, ok := l.bySymbol[strings.ToUpper(strings.TrimSpace(symbol))]
	return e, ok
}

// Search returns up to limit entries whose symbol or description matches
// query, best matches first. An empty query returns the first limit entries.
func (c *Cache) Search(ctx context.Context, query string, limit int) []domain.SymbolEntry {
	l := c.current(ctx)
	if limit <= 0 {
		limit = 20
	}

	query = strings.TrimSpace(query)
	if query == "" {
		n := min(limit, len(l.entries))
		out := make([]domain.SymbolEntry, n)
		copy(out, l.entries[:n])
		return out
	}
	if l.index == nil {
		return nil
	}

	ids, err := l.index.search(query, limit)
	if err != nil {
		c.log.Warn("searching directory", "query", query, "error", err)
		return nil
	}
	out := make([]domain.SymbolEntry, 0, len(ids))
	for _, id := range ids {
		if e, ok := l.bySymbol[id]; ok {
			out = append(out, e)
		}
	}
	return out
}

// current returns a fresh listing, refreshing synchronously when expired.
func (c *Cache) current(ctx context.Context) *listing {
	if l := c.fresh(); l != nil {
		return l
	}

	v, _, _ := c.group.Do("refresh", func() (any, error) {
		if l := c.fresh(); l != nil {
			return l, nil
		}
		l, err := c.refresh(ctx)
		if err != nil {
			c.log.Warn("refreshing symbol directory", "exchange", c.opts.Exchange, "error", err)
			return emptyListing, nil
		}
		c.mu.Lock()
		c.state = l
		c.mu.Unlock()
		c.log.Info("symbol directory refreshed", "mic", c.opts.MIC, "symbols", len(l.entries))
		return l, nil
	})
	return v.(*listing)
}

// fresh returns the cached listing if it has not expired.
func (c *Cache) fresh() *listing {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.state != nil && c.now().Before(c.state.expires) {
		return c.state
	}
	return nil
}

// refresh fetches, filters, and indexes the listing.
func (c *Cache) refresh(ctx context.Context) (*listing, error) {
	records, err := util.Retry(ctx, c.opts.FetchAttempts, c.opts.RetryDelay,
		func(ctx context.Context) ([]finnhub.SymbolRecord, error) {
			return c.lister.ListSymbols(ctx, c.opts.Exchange)
		})
	if err != nil {
		return nil, err
	}

	l := buildListing(records, c.opts.MIC)
	l.expires = c.now().Add(c.opts.TTL)

	idx, err := newSearchIndex(l.entries)
	if err != nil {
		// Label lookups still work without search.
		c.log.Warn("indexing symbol directory", "error", err)
	} else {
		l.index = idx
	}
	return l, nil
}

// buildListing keeps records on the given MIC that have both a symbol and a
// description. An empty mic keeps every market.
func buildListing(records []finnhub.SymbolRecord, mic string) *listing {
	l := &listing{
		labels:   make(map[string]string),
		bySymbol: make(map[string]domain.SymbolEntry),
	}
	for _, r := range records {
		if mic != "" && r.MIC != mic {
			continue
		}
		sym := strings.TrimSpace(r.Symbol)
		desc := strings.TrimSpace(r.Description)
		if sym == "" || desc == "" {
			continue
		}
		e := domain.SymbolEntry{
			Symbol:      sym,
			Label:       Label(sym, desc),
			Description: desc,
			MIC:         r.MIC,
		}
		if _, dup := l.bySymbol[sym]; dup {
			continue
		}
		l.labels[e.Label] = sym
		l.bySymbol[sym] = e
		l.entries = append(l.entries, e)
	}
	sort.Slice(l.entries, func(i, j int) bool { return l.entries[i].Symbol < l.entries[j].Symbol })
	return l
}

// Label formats the display label for a symbol.
func Label(symbol, description string) string {
	return symbol + " - " + description
}

package snapshot

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"stockscope/internal/domain"
	"stockscope/internal/finnhub"
)

// Fetcher retrieves one field for one symbol without failing loudly.
type Fetcher interface {
	Fetch(ctx context.Context, symbol string, kind domain.FieldKind) finnhub.Result
}

// Loader drives the per-field fetches for a symbol and assembles the result.
type Loader struct {
	fetcher     Fetcher
	concurrency int
	now         func() time.Time
	newID       func() string
	log         *slog.Logger
}

// NewLoader creates a Loader. concurrency bounds the in-flight fetches for
// one symbol; 1 (or less) fetches the fields one after another in
// canonical order.
func NewLoader(fetcher Fetcher, concurrency int, log *slog.Logger) *Loader {
	if concurrency < 1 {
		concurrency = 1
	}
	if log == nil {
		log = slog.Default()
	}
	return &Loader{
		fetcher:     fetcher,
		concurrency: concurrency,
		now:         time.Now,
		newID:       uuid.NewString,
		log:         log.With("component", "snapshot"),
	}
}

// Load fetches every field for symbol and returns the assembled snapshot.
// It always returns a renderable snapshot; a cancelled context only makes
// the pending fields unavailable.
func (l *Loader) Load(ctx context.Context, symbol string) domain.Snapshot {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	loadID := l.newID()
	start := l.now()

	results := make([]finnhub.Result, len(domain.FieldKinds))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, kind := range domain.FieldKinds {
		i, kind := i, kind
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = finnhub.Unavailable(kind, err)
				return nil
			}
			results[i] = l.fetcher.Fetch(gctx, symbol, kind)
			return nil
		})
	}
	_ = g.Wait()

	fields := make(map[domain.FieldKind]finnhub.Result, len(results))
	for i, res := range results {
		kind := domain.FieldKinds[i]
		res.Kind = kind
		fields[kind] = res
		if !res.Available() {
			l.log.Warn("field unavailable", "symbol", symbol, "field", kind, "load_id", loadID, "error", res.Err)
		}
	}

	s := Assemble(symbol, fields)
	s.LoadID = loadID
	s.LoadedAt = start
	l.log.Info("snapshot loaded",
		"symbol", symbol,
		"load_id", loadID,
		"unavailable", len(s.Unavailable),
		"elapsed", l.now().Sub(start))
	return s
}

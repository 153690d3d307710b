// Package watchlist holds up to four independently loadable snapshot slots.
package watchlist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"stockscope/internal/domain"
	"stockscope/internal/store"
)

// MaxSlots is the number of watch-list slots.
const MaxSlots = 4

var (
	// ErrInvalidSlot is returned for a slot index outside [0, MaxSlots).
	ErrInvalidSlot = errors.New("invalid slot")
	// ErrEmptySymbol is returned when a load names no symbol.
	ErrEmptySymbol = errors.New("empty symbol")
)

// Loader builds a fresh snapshot for a symbol.
type Loader interface {
	Load(ctx context.Context, symbol string) domain.Snapshot
}

// Mirror receives slot symbol changes, e.g. a brokerage watch-list.
type Mirror interface {
	Add(ctx context.Context, symbol string) error
	Remove(ctx context.Context, symbol string) error
}

// Held is an occupied slot.
type Held struct {
	Slot     int             `json:"slot"`
	Snapshot domain.Snapshot `json:"snapshot"`
}

// slot owns one snapshot. mu serializes loads into the slot; readers use
// the atomic pointer and never block on a load in progress.
type slot struct {
	mu   sync.Mutex
	snap atomic.Pointer[domain.Snapshot]
}

// Watchlist is a fixed array of snapshot slots. Slots share no mutable
// state; loading one slot never blocks reads or loads of another.
type Watchlist struct {
	loader Loader
	store  store.SlotStore
	mirror Mirror
	log    *slog.Logger

	slots [MaxSlots]slot
}

// Option customizes a Watchlist.
type Option func(*Watchlist)

// WithStore persists slot assignments so Restore can bring them back.
func WithStore(s store.SlotStore) Option {
	return func(w *Watchlist) { w.store = s }
}

// WithMirror forwards slot symbol changes to m.
func WithMirror(m Mirror) Option {
	return func(w *Watchlist) { w.mirror = m }
}

// New creates an empty Watchlist.
func New(loader Loader, log *slog.Logger, opts ...Option) *Watchlist {
	if log == nil {
		log = slog.Default()
	}
	w := &Watchlist{loader: loader, log: log.With("component", "watchlist")}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Load builds a fresh snapshot for symbol and replaces whatever slot held.
// Only input errors are returned; a symbol with no data still loads.
func (w *Watchlist) Load(ctx context.Context, slot int, symbol string) (domain.Snapshot, error) {
	if err := checkSlot(slot); err != nil {
		return domain.Snapshot{}, err
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return domain.Snapshot{}, ErrEmptySymbol
	}

	mirrored := w.holds(symbol)
	snap, prev := w.load(ctx, slot, symbol)

	if w.store != nil {
		if err := w.store.SaveSlot(ctx, slot, symbol); err != nil {
			w.log.Warn("saving slot", "slot", slot, "symbol", symbol, "error", err)
		}
	}
	if prev != nil && prev.Symbol != symbol {
		w.unmirror(ctx, prev.Symbol)
	}
	if !mirrored {
		w.mirrorAdd(ctx, symbol)
	}
	return snap, nil
}

// load swaps a freshly built snapshot into slot and returns it with the
// snapshot it replaced.
func (w *Watchlist) load(ctx context.Context, i int, symbol string) (domain.Snapshot, *domain.Snapshot) {
	s := &w.slots[i]
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := w.loader.Load(ctx, symbol)
	prev := s.snap.Swap(&snap)
	w.log.Info("slot loaded", "slot", i, "symbol", symbol, "load_id", snap.LoadID)
	return snap, prev
}

// Clear empties slot. Clearing an empty slot is a no-op.
func (w *Watchlist) Clear(ctx context.Context, slot int) error {
	if err := checkSlot(slot); err != nil {
		return err
	}

	s := &w.slots[slot]
	s.mu.Lock()
	prev := s.snap.Swap(nil)
	s.mu.Unlock()

	if w.store != nil {
		if err := w.store.DeleteSlot(ctx, slot); err != nil {
			w.log.Warn("deleting slot", "slot", slot, "error", err)
		}
	}
	if prev != nil {
		w.log.Info("slot cleared", "slot", slot, "symbol", prev.Symbol)
		w.unmirror(ctx, prev.Symbol)
	}
	return nil
}

// Get returns the snapshot in slot, if any.
func (w *Watchlist) Get(slot int) (domain.Snapshot, bool, error) {
	if err := checkSlot(slot); err != nil {
		return domain.Snapshot{}, false, err
	}
	p := w.slots[slot].snap.Load()
	if p == nil {
		return domain.Snapshot{}, false, nil
	}
	return *p, true, nil
}

// Held returns every occupied slot in slot order.
func (w *Watchlist) Held() []Held {
	out := make([]Held, 0, MaxSlots)
	for i := range w.slots {
		if p := w.slots[i].snap.Load(); p != nil {
			out = append(out, Held{Slot: i, Snapshot: *p})
		}
	}
	return out
}

// Snapshots returns the held snapshots in slot order, skipping empty slots.
func (w *Watchlist) Snapshots() []domain.Snapshot {
	held := w.Held()
	out := make([]domain.Snapshot, len(held))
	for i, h := range held {
		out[i] = h.Snapshot
	}
	return out
}

// Restore reloads the symbols saved in the slot store with fresh
// snapshots. Saved rows with a bad slot index or symbol are skipped.
func (w *Watchlist) Restore(ctx context.Context) error {
	if w.store == nil {
		return nil
	}
	records, err := w.store.ListSlots(ctx)
	if err != nil {
		return fmt.Errorf("listing saved slots: %w", err)
	}
	for _, r := range records {
		if checkSlot(r.Slot) != nil || strings.TrimSpace(r.Symbol) == "" {
			w.log.Warn("skipping saved slot", "slot", r.Slot, "symbol", r.Symbol)
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		w.load(ctx, r.Slot, strings.ToUpper(r.Symbol))
	}
	w.log.Info("watchlist restored", "slots", len(records))
	return nil
}

// holds reports whether any slot currently holds symbol.
func (w *Watchlist) holds(symbol string) bool {
	for i := range w.slots {
		if p := w.slots[i].snap.Load(); p != nil && p.Symbol == symbol {
			return true
		}
	}
	return false
}

func (w *Watchlist) mirrorAdd(ctx context.Context, symbol string) {
	if w.mirror == nil {
		return
	}
	if err := w.mirror.Add(ctx, symbol); err != nil {
		w.log.Warn("mirroring symbol", "symbol", symbol, "error", err)
	}
}

// unmirror removes symbol from the mirror unless another slot still holds it.
func (w *Watchlist) unmirror(ctx context.Context, symbol string) {
	if w.mirror == nil || w.holds(symbol) {
		return
	}
	if err := w.mirror.Remove(ctx, symbol); err != nil {
		w.log.Warn("unmirroring symbol", "symbol", symbol, "error", err)
	}
}

func checkSlot(slot int) error {
	if slot < 0 || slot >= MaxSlots {
		return fmt.Errorf("%w: %d (want 0-%d)", ErrInvalidSlot, slot, MaxSlots-1)
	}
	return nil
}

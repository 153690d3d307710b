// Package store persists which symbol occupies each watch-list slot and
// exports ranking summaries. Snapshots themselves are never stored.
package store

import (
	"context"
	"time"
)

// SlotRecord is the persisted occupant of one watch-list slot.
type SlotRecord struct {
	Slot      int
	Symbol    string
	UpdatedAt time.Time
}

// SlotStore persists watch-list slot assignments.
type SlotStore interface {
	// SaveSlot records symbol as the occupant of slot, replacing any
	// previous occupant.
	SaveSlot(ctx context.Context, slot int, symbol string) error

	// DeleteSlot forgets the occupant of slot. Deleting an empty slot is
	// not an error.
	DeleteSlot(ctx context.Context, slot int) error

	// ListSlots returns every occupied slot ordered by slot index.
	ListSlots(ctx context.Context) ([]SlotRecord, error)
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface check.
var _ SlotStore = (*SQLiteStore)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS slots (
	slot       INTEGER PRIMARY KEY,
	symbol     TEXT    NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLiteStore implements SlotStore backed by a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath, creates the
// schema if needed, and returns a ready-to-use SQLiteStore.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", dbPath, err)
	}
	// SQLite serializes writers; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveSlot inserts or replaces the occupant of slot.
func (s *SQLiteStore) SaveSlot(ctx context.Context, slot int, symbol string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO slots (slot, symbol, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(slot) DO UPDATE SET symbol = excluded.symbol, updated_at = excluded.updated_at`,
		slot, symbol, s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("saving slot %d: %w", slot, err)
	}
	return nil
}

// DeleteSlot removes the occupant of slot.
func (s *SQLiteStore) DeleteSlot(ctx context.Context, slot int) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM slots WHERE slot = ?`, slot); err != nil {
		return fmt.Errorf("deleting slot %d: %w", slot, err)
	}
	return nil
}

// ListSlots returns every occupied slot ordered by slot index.
func (s *SQLiteStore) ListSlots(ctx context.Context) ([]SlotRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT slot, symbol, updated_at FROM slots ORDER BY slot`)
	if err != nil {
		return nil, fmt.Errorf("listing slots: %w", err)
	}
	defer rows.Close()

	var out []SlotRecord
	for rows.Next() {
		var (
			r  SlotRecord
			ms int64
		)
		if err := rows.Scan(&r.Slot, &r.Symbol, &ms); err != nil {
			return nil, fmt.Errorf("scanning slot: %w", err)
		}
		r.UpdatedAt = time.UnixMilli(ms)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Package httpapi provides the JSON REST API over the symbol directory,
// the watch-list slots, and the ranking summary.
package httpapi

import (
	"stockscope/internal/domain"
)

// HealthResponse is returned by GET /api/health.
type HealthResponse struct {
	Status string `json:"status"`
}

// SymbolsResponse lists directory entries matching a query.
type SymbolsResponse struct {
	Query   string               `json:"query,omitempty"`
	Count   int                  `json:"count"`
	Symbols []domain.SymbolEntry `json:"symbols"`
}

// SlotJSON is one occupied slot with the insights derived from its
// snapshot at read time.
type SlotJSON struct {
	Slot     int              `json:"slot"`
	Snapshot domain.Snapshot  `json:"snapshot"`
	Insights []domain.Insight `json:"insights"`
}

// SlotsResponse lists every occupied slot in slot order.
type SlotsResponse struct {
	MaxSlots int        `json:"max_slots"`
	Slots    []SlotJSON `json:"slots"`
}

// LoadSlotRequest is the body of PUT /api/slots/{slot}.
type LoadSlotRequest struct {
	Symbol string `json:"symbol"`
}

// SummaryResponse is the ranking over the held snapshots. When nothing
// qualifies, Warning is set and the ranking fields are empty.
type SummaryResponse struct {
	Warning       string               `json:"warning,omitempty"`
	Entries       []domain.RankedEntry `json:"entries"`
	BestPick      string               `json:"best_pick,omitempty"`
	Justification string               `json:"justification,omitempty"`
	Weights       map[string]float64   `json:"weights"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

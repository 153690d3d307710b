package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"stockscope/internal/domain"
	"stockscope/internal/insight"
	"stockscope/internal/ranking"
	"stockscope/internal/watchlist"
)

const (
	defaultSymbolLimit = 20
	maxSymbolLimit     = 200
	maxBodyBytes       = 1 << 16
)

// Directory is the symbol universe as seen by the API.
type Directory interface {
	Search(ctx context.Context, query string, limit int) []domain.SymbolEntry
	Lookup(ctx context.Context, symbol string) (domain.SymbolEntry, bool)
	Entries(ctx context.Context) []domain.SymbolEntry
}

// Watchlist is the slot holder as seen by the API.
type Watchlist interface {
	Load(ctx context.Context, slot int, symbol string) (domain.Snapshot, error)
	Clear(ctx context.Context, slot int) error
	Get(slot int) (domain.Snapshot, bool, error)
	Held() []watchlist.Held
	Snapshots() []domain.Snapshot
}

// Server serves the REST API.
type Server struct {
	directory Directory
	watchlist Watchlist
	log       *slog.Logger
}

// NewServer creates a new API server.
func NewServer(directory Directory, wl Watchlist, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		directory: directory,
		watchlist: wl,
		log:       log.With("component", "httpapi"),
	}
}

// RegisterRoutes registers all API routes on r.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/symbols", s.handleSymbols)
		r.Route("/slots", func(r chi.Router) {
			r.Get("/", s.handleListSlots)
			r.Get("/{slot}", s.handleGetSlot)
			r.Put("/{slot}", s.handleLoadSlot)
			r.Delete("/{slot}", s.handleClearSlot)
		})
		r.Get("/summary", s.handleSummary)
	})
}

// Handler returns an http.Handler with recovery, request logging, and CORS.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(s.loggingMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	s.RegisterRoutes(r)
	return r
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, HealthResponse{Status: "ok"})
}

func (s *Server) handleSymbols(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	limit := defaultSymbolLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxSymbolLimit)
	}

	entries := s.directory.Search(r.Context(), q, limit)
	if entries == nil {
		entries = []domain.SymbolEntry{}
	}
	writeJSON(w, SymbolsResponse{Query: q, Count: len(entries), Symbols: entries})
}

func (s *Server) handleListSlots(w http.ResponseWriter, r *http.Request) {
	held := s.watchlist.Held()
	slots := make([]SlotJSON, 0, len(held))
	for _, h := range held {
		slots = append(slots, slotJSON(h.Slot, h.Snapshot))
	}
	writeJSON(w, SlotsResponse{MaxSlots: watchlist.MaxSlots, Slots: slots})
}

func (s *Server) handleGetSlot(w http.ResponseWriter, r *http.Request) {
	slot, ok := parseSlot(w, r)
	if !ok {
		return
	}
	snap, found, err := s.watchlist.Get(slot)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, fmt.Sprintf("slot %d is empty", slot))
		return
	}
	writeJSON(w, slotJSON(slot, snap))
}

func (s *Server) handleLoadSlot(w http.ResponseWriter, r *http.Request) {
	slot, ok := parseSlot(w, r)
	if !ok {
		return
	}

	var req LoadSlotRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Reject symbols outside the directory, unless the directory itself is
	// unavailable.
	if req.Symbol != "" && len(s.directory.Entries(r.Context())) > 0 {
		if _, known := s.directory.Lookup(r.Context(), req.Symbol); !known {
			writeError(w, http.StatusNotFound, fmt.Sprintf("unknown symbol %q", req.Symbol))
			return
		}
	}

	snap, err := s.watchlist.Load(r.Context(), slot, req.Symbol)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, watchlist.ErrInvalidSlot) || errors.Is(err, watchlist.ErrEmptySymbol) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, slotJSON(slot, snap))
}

func (s *Server) handleClearSlot(w http.ResponseWriter, r *http.Request) {
	slot, ok := parseSlot(w, r)
	if !ok {
		return
	}
	if err := s.watchlist.Clear(r.Context(), slot); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	rk, err := ranking.Rank(s.watchlist.Snapshots())
	if errors.Is(err, ranking.ErrNoSymbolsSelected) {
		writeJSON(w, SummaryResponse{
			Warning: err.Error(),
			Entries: []domain.RankedEntry{},
			Weights: map[string]float64{},
		})
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, SummaryResponse{
		Entries:       rk.Entries,
		BestPick:      rk.BestPick,
		Justification: rk.Justification,
		Weights:       rk.Weights,
	})
}

// slotJSON derives insights on every read; they are never cached.
func slotJSON(slot int, snap domain.Snapshot) SlotJSON {
	return SlotJSON{Slot: slot, Snapshot: snap, Insights: insight.Derive(snap)}
}

func parseSlot(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "slot")
	slot, err := strconv.Atoi(raw)
	if err != nil || slot < 0 || slot >= watchlist.MaxSlots {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid slot %q (want 0-%d)", raw, watchlist.MaxSlots-1))
		return 0, false
	}
	return slot, true
}

// Package stockscope is a Go client for the stockscope HTTP API.
package stockscope

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"stockscope/internal/domain"
	"stockscope/internal/httpapi"
)

// Response and value types returned by the API.
type (
	SymbolEntry = domain.SymbolEntry
	Snapshot    = domain.Snapshot
	Insight     = domain.Insight
	RankedEntry = domain.RankedEntry
	Slot        = httpapi.SlotJSON
	Summary     = httpapi.SummaryResponse
)

// ErrNoSymbolsSelected is returned by Summary when no held snapshot
// qualifies for ranking. The returned Summary carries the warning.
var ErrNoSymbolsSelected = errors.New("no symbols selected")

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("stockscope: status %d: %s", e.StatusCode, e.Message)
}

// Client provides a Go SDK for interacting with the stockscope server API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new stockscope API client. Loading a slot issues six
// rate-limited upstream requests, so the default timeout is generous.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

// Symbols searches the symbol directory. An empty query lists the first
// limit symbols; limit <= 0 uses the server default.
func (c *Client) Symbols(ctx context.Context, query string, limit int) ([]SymbolEntry, error) {
	params := url.Values{}
	if query != "" {
		params.Set("q", query)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	path := "/api/symbols"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var resp httpapi.SymbolsResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Symbols, nil
}

// Slots returns every occupied slot in slot order.
func (c *Client) Slots(ctx context.Context) ([]Slot, error) {
	var resp httpapi.SlotsResponse
	if err := c.do(ctx, http.MethodGet, "/api/slots", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Slots, nil
}

// Slot returns one occupied slot. An empty slot is an *APIError with
// status 404.
func (c *Client) Slot(ctx context.Context, slot int) (*Slot, error) {
	var resp Slot
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/slots/%d", slot), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LoadSlot loads a fresh snapshot for symbol into slot.
func (c *Client) LoadSlot(ctx context.Context, slot int, symbol string) (*Slot, error) {
	body, err := json.Marshal(httpapi.LoadSlotRequest{Symbol: symbol})
	if err != nil {
		return nil, err
	}
	var resp Slot
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/slots/%d", slot), body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ClearSlot empties slot.
func (c *Client) ClearSlot(ctx context.Context, slot int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/slots/%d", slot), nil, nil)
}

// Summary returns the ranking over the held snapshots.
func (c *Client) Summary(ctx context.Context) (*Summary, error) {
	var resp Summary
	if err := c.do(ctx, http.MethodGet, "/api/summary", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Warning != "" {
		return &resp, ErrNoSymbolsSelected
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("building %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e httpapi.ErrorResponse
		msg := resp.Status
		if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&e); err == nil && e.Error != "" {
			msg = e.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s: %w", method, path, err)
	}
	return nil
}

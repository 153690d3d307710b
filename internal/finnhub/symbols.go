package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// SymbolRecord is one row of the exchange symbol listing.
type SymbolRecord struct {
	Symbol        string `json:"symbol"`
	Description   string `json:"description"`
	DisplaySymbol string `json:"displaySymbol"`
	MIC           string `json:"mic"`
	Type          string `json:"type"`
	Currency      string `json:"currency"`
}

// ListSymbols returns the full symbol listing for an exchange code such as
// "US". Unlike Fetch, it reports failures so the caller can decide how to
// degrade.
func (c *Client) ListSymbols(ctx context.Context, exchange string) ([]SymbolRecord, error) {
	params := url.Values{}
	params.Set("exchange", exchange)

	body, err := c.get(ctx, "/stock/symbol", params)
	if err != nil {
		return nil, err
	}

	var records []SymbolRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("decoding symbol listing: %w", err)
	}
	return records, nil
}

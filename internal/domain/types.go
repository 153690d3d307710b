// Package domain defines the core value types shared by the snapshot,
// insight, ranking, and watch-list packages.
package domain

import (
	"time"
)

// ---------------------------------------------------------------------------
// Symbol universe
// ---------------------------------------------------------------------------

// SymbolEntry is one tradable instrument from the exchange listing.
type SymbolEntry struct {
	Symbol      string `json:"symbol"`
	Label       string `json:"label"`
	Description string `json:"description"`
	MIC         string `json:"mic"`
}

// ---------------------------------------------------------------------------
// Field kinds
// ---------------------------------------------------------------------------

// FieldKind names one independently fetched data field of a snapshot.
type FieldKind string

const (
	FieldProfile        FieldKind = "profile"
	FieldQuote          FieldKind = "quote"
	FieldMetrics        FieldKind = "metrics"
	FieldRecommendation FieldKind = "recommendation"
	FieldNews           FieldKind = "news"
	FieldSentiment      FieldKind = "sentiment"
)

// FieldKinds lists every field in canonical fetch order.
var FieldKinds = []FieldKind{
	FieldProfile,
	FieldQuote,
	FieldMetrics,
	FieldRecommendation,
	FieldNews,
	FieldSentiment,
}

// ---------------------------------------------------------------------------
// Snapshot
// ---------------------------------------------------------------------------

// Profile holds descriptive company data. A nil field was not retrieved.
type Profile struct {
	Name     *string `json:"name"`
	Exchange *string `json:"exchange"`
	Industry *string `json:"industry"`
	IPO      *string `json:"ipo"`
	LogoURL  *string `json:"logo_url"`
}

// Quote holds intraday prices. A nil field was not retrieved.
type Quote struct {
	Current       *float64 `json:"current"`
	High          *float64 `json:"high"`
	Low           *float64 `json:"low"`
	PreviousClose *float64 `json:"previous_close"`
}

// Metrics holds fundamental metrics. A nil field was not retrieved.
type Metrics struct {
	PERatio       *float64 `json:"pe_ratio"`
	DividendYield *float64 `json:"dividend_yield"`
	Volatility    *float64 `json:"volatility"`
	MarketCap     *float64 `json:"market_cap"`
}

// Recommendation holds the most recent analyst recommendation counts.
type Recommendation struct {
	Buy        *int   `json:"buy"`
	Hold       *int   `json:"hold"`
	Sell       *int   `json:"sell"`
	StrongBuy  *int   `json:"strong_buy"`
	StrongSell *int   `json:"strong_sell"`
	Period     string `json:"period,omitempty"`
}

// Article is a single company news item.
type Article struct {
	Headline  string    `json:"headline"`
	URL       string    `json:"url"`
	Source    string    `json:"source,omitempty"`
	Summary   string    `json:"summary,omitempty"`
	Published time.Time `json:"published,omitempty"`
}

// Sentiment holds social-media mention counts.
type Sentiment struct {
	RedditMentions  int `json:"reddit_mentions"`
	TwitterMentions int `json:"twitter_mentions"`
}

// Mentions returns the combined mention count across platforms.
func (s Sentiment) Mentions() int {
	return s.RedditMentions + s.TwitterMentions
}

// Snapshot is the assembled per-symbol unit of work. It is treated as an
// immutable value: a reload replaces the whole snapshot.
type Snapshot struct {
	Symbol         string          `json:"symbol"`
	LoadID         string          `json:"load_id"`
	LoadedAt       time.Time       `json:"loaded_at"`
	Profile        *Profile        `json:"profile"`
	Quote          *Quote          `json:"quote"`
	Metrics        *Metrics        `json:"metrics"`
	Recommendation *Recommendation `json:"recommendation"`
	News           []Article       `json:"news"`
	Sentiment      *Sentiment      `json:"sentiment"`
	Unavailable    []FieldKind     `json:"unavailable,omitempty"`
}

// Complete reports whether every field was fetched successfully.
func (s Snapshot) Complete() bool {
	return len(s.Unavailable) == 0
}

// ---------------------------------------------------------------------------
// Insights
// ---------------------------------------------------------------------------

// Polarity tags an insight as favourable or unfavourable.
type Polarity string

const (
	PolarityPositive Polarity = "positive"
	PolarityNegative Polarity = "negative"
)

// Insight is a qualitative observation derived from one snapshot.
type Insight struct {
	Rule     string   `json:"rule"`
	Message  string   `json:"message"`
	Polarity Polarity `json:"polarity"`
}

// ---------------------------------------------------------------------------
// Ranking
// ---------------------------------------------------------------------------

// RankedEntry is one scored snapshot in a ranking.
type RankedEntry struct {
	Symbol           string   `json:"symbol"`
	Score            int      `json:"score"`
	PERatio          *float64 `json:"pe_ratio"`
	DividendYield    float64  `json:"dividend_yield"`
	ReturnSinceClose float64  `json:"return_since_close"`
	Weight           float64  `json:"weight"`
}

// Ranking is the allocator's result for the currently held snapshots.
type Ranking struct {
	Entries       []RankedEntry      `json:"entries"`
	BestPick      string             `json:"best_pick"`
	Justification string             `json:"justification"`
	Weights       map[string]float64 `json:"weights"`
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }

// Package ranking scores held snapshots, orders them, picks the best one,
// and splits a portfolio across them in proportion to score.
package ranking

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"

	"stockscope/internal/domain"
)

// ErrNoSymbolsSelected is returned when no snapshot has both a metrics
// block and a quote.
var ErrNoSymbolsSelected = errors.New("no symbols selected")

// Justifications for the best pick, in priority order.
const (
	ReasonLowerPE        = "lower PE"
	ReasonHigherDividend = "higher dividend"
	ReasonPositiveReturn = "positive return"
)

var hundred = decimal.NewFromInt(100)

// Rank scores every qualifying snapshot and returns them best first. Ties
// keep input order. Snapshots missing metrics or a quote are left out
// rather than scored zero. Rank does not modify its input.
func Rank(snapshots []domain.Snapshot) (domain.Ranking, error) {
	entries := make([]domain.RankedEntry, 0, len(snapshots))
	for _, s := range snapshots {
		if !qualifies(s) {
			continue
		}
		entries = append(entries, score(s))
	}
	if len(entries) == 0 {
		return domain.Ranking{}, ErrNoSymbolsSelected
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Score > entries[j].Score })
	allocate(entries)

	weights := make(map[string]float64, len(entries))
	for _, e := range entries {
		weights[e.Symbol] += e.Weight
	}

	best := entries[0]
	return domain.Ranking{
		Entries:       entries,
		BestPick:      best.Symbol,
		Justification: justify(best),
		Weights:       weights,
	}, nil
}

func qualifies(s domain.Snapshot) bool {
	return s.Symbol != "" && s.Metrics != nil && s.Quote != nil
}

// score sums the sub-scores of one qualifying snapshot.
func score(s domain.Snapshot) domain.RankedEntry {
	e := domain.RankedEntry{
		Symbol:           s.Symbol,
		PERatio:          s.Metrics.PERatio,
		ReturnSinceClose: ReturnSinceClose(s.Quote),
	}
	if s.Metrics.DividendYield != nil {
		e.DividendYield = *s.Metrics.DividendYield
	}

	if pe := s.Metrics.PERatio; pe != nil {
		switch {
		case *pe < 15:
			e.Score += 2
		case *pe < 25:
			e.Score++
		}
	}

	switch {
	case e.DividendYield > 0.03:
		e.Score += 2
	case e.DividendYield > 0.01:
		e.Score++
	}

	switch {
	case e.ReturnSinceClose > 0.01:
		e.Score += 2
	case e.ReturnSinceClose > 0:
		e.Score++
	}

	if r := s.Recommendation; r != nil && r.Buy != nil {
		switch {
		case *r.Buy > 20:
			e.Score += 2
		case *r.Buy > 10:
			e.Score++
		}
	}

	if v := s.Metrics.Volatility; v != nil && *v < 3 {
		e.Score++
	}
	return e
}

// ReturnSinceClose is (current - previous close) / previous close, or 0
// when either price is unknown or the previous close is zero.
func ReturnSinceClose(q *domain.Quote) float64 {
	if q == nil || q.Current == nil || q.PreviousClose == nil || *q.PreviousClose == 0 {
		return 0
	}
	return (*q.Current - *q.PreviousClose) / *q.PreviousClose
}

// allocate sets each entry's weight to its share of the total score as a
// percentage. A zero total leaves every weight at zero.
func allocate(entries []domain.RankedEntry) {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(decimal.NewFromInt(int64(e.Score)))
	}
	if total.IsZero() {
		return
	}
	for i := range entries {
		w := decimal.NewFromInt(int64(entries[i].Score)).Div(total).Mul(hundred)
		entries[i].Weight = w.InexactFloat64()
	}
}

func justify(best domain.RankedEntry) string {
	switch {
	case best.PERatio != nil && *best.PERatio < 25:
		return ReasonLowerPE
	case best.DividendYield > 0.01:
		return ReasonHigherDividend
	default:
		return ReasonPositiveReturn
	}
}

// Package insight derives qualitative observations from a single snapshot
// using a fixed battery of threshold rules.
package insight

import "stockscope/internal/domain"

// Rule identifiers, in evaluation order.
const (
	RuleLowPE          = "low_pe"
	RuleHighPE         = "high_pe"
	RuleStrongDividend = "strong_dividend"
	RuleStrongBuy      = "strong_buy"
	RuleHighVolatility = "high_volatility"
	RuleTrending       = "trending"
)

// Thresholds.
const (
	LowPE              = 15.0
	HighPE             = 30.0
	StrongDividend     = 0.03
	StrongBuyCount     = 20
	HighIntradayRange  = 0.05
	TrendingMentionSum = 20
)

// rule evaluates one condition. It returns false when its inputs are
// unknown or the condition does not hold.
type rule struct {
	id       string
	message  string
	polarity domain.Polarity
	fires    func(s domain.Snapshot) bool
}

var rules = []rule{
	{
		id:       RuleLowPE,
		message:  "Appears undervalued with a low PE ratio.",
		polarity: domain.PolarityPositive,
		fires: func(s domain.Snapshot) bool {
			pe := peRatio(s)
			return pe != nil && *pe < LowPE
		},
	},
	{
		id:       RuleHighPE,
		message:  "High PE ratio suggests overvaluation.",
		polarity: domain.PolarityNegative,
		fires: func(s domain.Snapshot) bool {
			pe := peRatio(s)
			return pe != nil && *pe > HighPE
		},
	},
	{
		id:       RuleStrongDividend,
		message:  "Strong dividend yield, suitable for income investors.",
		polarity: domain.PolarityPositive,
		fires: func(s domain.Snapshot) bool {
			return s.Metrics != nil && s.Metrics.DividendYield != nil && *s.Metrics.DividendYield > StrongDividend
		},
	},
	{
		id:       RuleStrongBuy,
		message:  "Strong Buy consensus from analysts.",
		polarity: domain.PolarityPositive,
		fires: func(s domain.Snapshot) bool {
			r := s.Recommendation
			if r == nil || r.Buy == nil || r.Sell == nil {
				return false
			}
			return *r.Buy > StrongBuyCount && *r.Sell == 0
		},
	},
	{
		id:       RuleHighVolatility,
		message:  "High intraday volatility observed.",
		polarity: domain.PolarityNegative,
		fires: func(s domain.Snapshot) bool {
			q := s.Quote
			// A zero high would divide by zero; skip instead.
			if q == nil || q.High == nil || q.Low == nil || *q.High <= 0 {
				return false
			}
			return (*q.High-*q.Low) / *q.High > HighIntradayRange
		},
	},
	{
		id:       RuleTrending,
		message:  "Stock is trending on social platforms.",
		polarity: domain.PolarityPositive,
		fires: func(s domain.Snapshot) bool {
			return s.Sentiment != nil && s.Sentiment.Mentions() > TrendingMentionSum
		},
	},
}

func peRatio(s domain.Snapshot) *float64 {
	if s.Metrics == nil {
		return nil
	}
	return s.Metrics.PERatio
}

// Derive evaluates every rule against s and returns the insights that fire,
// in rule order. The result is empty, never nil, when nothing fires.
func Derive(s domain.Snapshot) []domain.Insight {
	out := make([]domain.Insight, 0, len(rules))
	for _, r := range rules {
		if r.fires(s) {
			out = append(out, domain.Insight{Rule: r.id, Message: r.message, Polarity: r.polarity})
		}
	}
	return out
}

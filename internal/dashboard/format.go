// Package dashboard formats snapshots, insights, and rankings for display.
// Unknown values render as "N/A", never as zero.
package dashboard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// NA is shown for any value that was not retrieved.
const NA = "N/A"

// FormatInt formats an integer with comma separators.
func FormatInt(n int) string {
	if n < 0 {
		return "-" + FormatInt(-n)
	}
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	start := len(s) % 3
	if start > 0 {
		b.WriteString(s[:start])
	}
	for i := start; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatOptional formats a number in its shortest form, or NA when nil.
func FormatOptional(v *float64) string {
	if v == nil {
		return NA
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// FormatOptionalString returns *s, or NA when nil.
func FormatOptionalString(s *string) string {
	if s == nil {
		return NA
	}
	return *s
}

// FormatOptionalInt formats a count, or NA when nil.
func FormatOptionalInt(n *int) string {
	if n == nil {
		return NA
	}
	return FormatInt(*n)
}

// FormatPrice formats a USD price as "$1,234.56", or NA when nil.
func FormatPrice(p *float64) string {
	if p == nil {
		return NA
	}
	cents := decimal.NewFromFloat(*p).Shift(2).Round(0).IntPart()
	return money.New(cents, money.USD).Display()
}

// FormatPercent formats a ratio as a percentage with two decimals, so 0.1
// becomes "10.00%".
func FormatPercent(ratio float64) string {
	return fmt.Sprintf("%.2f%%", ratio*100)
}

// FormatWeight formats a portfolio weight already expressed in percent.
func FormatWeight(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatMarketCap formats a market capitalization given in millions of USD
// with a T/B/M suffix, or NA when nil.
func FormatMarketCap(millions *float64) string {
	if millions == nil {
		return NA
	}
	return "$" + FormatCompact(*millions*1e6)
}

// FormatCompact formats a value with T/B/M/K suffixes.
func FormatCompact(v float64) string {
	switch {
	case v >= 1e12:
		return fmt.Sprintf("%.2fT", v/1e12)
	case v >= 1e9:
		return fmt.Sprintf("%.1fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%.1fK", v/1e3)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}

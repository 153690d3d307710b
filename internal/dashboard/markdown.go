package dashboard

import (
	"fmt"
	"strings"

	"stockscope/internal/domain"
	"stockscope/internal/ranking"
)

// headlinesPerCard is how many news items a snapshot card shows.
const headlinesPerCard = 2

// CardMarkdown renders one snapshot and its insights as a markdown card.
func CardMarkdown(s domain.Snapshot, insights []domain.Insight) string {
	var b strings.Builder

	title := s.Symbol
	if s.Profile != nil && s.Profile.Name != nil {
		title += " - " + *s.Profile.Name
	}
	fmt.Fprintf(&b, "## %s\n\n", title)

	if s.Profile != nil && s.Profile.LogoURL != nil {
		fmt.Fprintf(&b, "![%s logo](%s)\n\n", s.Symbol, *s.Profile.LogoURL)
	}

	b.WriteString("### Company Profile\n\n")
	var p domain.Profile
	if s.Profile != nil {
		p = *s.Profile
	}
	writeTable(&b, []string{"Field", "Value"}, [][]string{
		{"Company Name", FormatOptionalString(p.Name)},
		{"Exchange", FormatOptionalString(p.Exchange)},
		{"Industry", FormatOptionalString(p.Industry)},
		{"IPO Date", FormatOptionalString(p.IPO)},
	})

	b.WriteString("### Stock Details\n\n")
	var q domain.Quote
	if s.Quote != nil {
		q = *s.Quote
	}
	var m domain.Metrics
	if s.Metrics != nil {
		m = *s.Metrics
	}
	writeTable(&b, []string{"Field", "Value"}, [][]string{
		{"Current Price", FormatPrice(q.Current)},
		{"Previous Close", FormatPrice(q.PreviousClose)},
		{"Return Since Close", returnSinceClose(s.Quote)},
		{"High Today", FormatPrice(q.High)},
		{"Low Today", FormatPrice(q.Low)},
		{"Market Cap", FormatMarketCap(m.MarketCap)},
		{"PE Ratio", FormatOptional(m.PERatio)},
		{"Dividend Yield", FormatOptional(m.DividendYield)},
	})

	b.WriteString("### News & Social Sentiment\n\n")
	if len(s.News) == 0 {
		b.WriteString("No recent news.\n\n")
	} else {
		for _, a := range s.News[:min(headlinesPerCard, len(s.News))] {
			fmt.Fprintf(&b, "- [%s](%s)\n", escapeLinkText(a.Headline), a.URL)
		}
		b.WriteString("\n")
	}
	if s.Sentiment != nil {
		writeTable(&b, []string{"Source", "Mentions"}, [][]string{
			{"Reddit mentions", FormatInt(s.Sentiment.RedditMentions)},
			{"Twitter mentions", FormatInt(s.Sentiment.TwitterMentions)},
		})
	}

	b.WriteString("### Smart Insights\n\n")
	if len(insights) == 0 {
		b.WriteString("No insights for this symbol.\n\n")
	} else {
		for _, in := range insights {
			fmt.Fprintf(&b, "- %s %s\n", polarityMark(in.Polarity), in.Message)
		}
		b.WriteString("\n")
	}

	if len(s.Unavailable) > 0 {
		kinds := make([]string, len(s.Unavailable))
		for i, k := range s.Unavailable {
			kinds[i] = string(k)
		}
		fmt.Fprintf(&b, "_Unavailable: %s_\n", strings.Join(kinds, ", "))
	}
	return b.String()
}

// SummaryMarkdown renders the best pick, the weight suggestion, and the
// valuation guide.
func SummaryMarkdown(r domain.Ranking) string {
	var b strings.Builder

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "**Best Pick: %s**, due to its %s vs others.\n\n", r.BestPick, r.Justification)

	b.WriteString("### Portfolio Weights Suggestion\n\n")
	for _, e := range r.Entries {
		fmt.Fprintf(&b, "- **%s** → %s (score %d)\n", e.Symbol, FormatWeight(e.Weight), e.Score)
	}
	b.WriteString("\n")

	b.WriteString(GuideMarkdown())
	return b.String()
}

// NoSymbolsMarkdown is shown in place of a summary when nothing qualifies
// for ranking.
func NoSymbolsMarkdown() string {
	return "> **Warning:** No Stocks Selected. Load a symbol with metrics and a quote first.\n"
}

// SymbolsMarkdown renders directory entries as a table.
func SymbolsMarkdown(entries []domain.SymbolEntry) string {
	if len(entries) == 0 {
		return "No matching symbols.\n"
	}
	var b strings.Builder
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{e.Symbol, e.Description, e.MIC}
	}
	writeTable(&b, []string{"Symbol", "Description", "MIC"}, rows)
	return b.String()
}

// GuideMarkdown renders the PE ratio and dividend yield interpretation
// table.
func GuideMarkdown() string {
	var b strings.Builder
	b.WriteString("### PE & Dividend Yield Guide\n\n")
	writeTable(&b, []string{"Metric", "Category", "Interpretation"}, [][]string{
		{"PE Ratio", "Good", "< 15 (Undervalued)"},
		{"PE Ratio", "Average", "15 - 30"},
		{"PE Ratio", "High", "> 30 (Overvalued)"},
		{"Dividend Yield", "Strong", "> 3%"},
		{"Dividend Yield", "Moderate", "1% - 3%"},
		{"Dividend Yield", "Low / None", "< 1% or missing"},
	})
	return b.String()
}

func returnSinceClose(q *domain.Quote) string {
	if q == nil || q.Current == nil || q.PreviousClose == nil {
		return NA
	}
	return FormatPercent(ranking.ReturnSinceClose(q))
}

func polarityMark(p domain.Polarity) string {
	if p == domain.PolarityNegative {
		return "▼"
	}
	return "▲"
}

func writeTable(b *strings.Builder, header []string, rows [][]string) {
	b.WriteString("| " + strings.Join(header, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(header)) + "\n")
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = strings.ReplaceAll(c, "|", `\|`)
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	b.WriteString("\n")
}

func escapeLinkText(s string) string {
	return strings.NewReplacer("[", `\[`, "]", `\]`).Replace(s)
}

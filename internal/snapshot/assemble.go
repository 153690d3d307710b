// Package snapshot turns independently fetched provider fields into one
// immutable per-symbol Snapshot, and drives the fetches that feed it.
package snapshot

import (
	"time"

	"stockscope/internal/domain"
	"stockscope/internal/finnhub"
)

// Assemble builds a Snapshot from the fetched fields of one symbol. It never
// fails: a field that is missing from fields, unavailable, or not shaped as
// expected leaves its attribute nil and is listed in Snapshot.Unavailable.
func Assemble(symbol string, fields map[domain.FieldKind]finnhub.Result) domain.Snapshot {
	s := domain.Snapshot{Symbol: symbol, News: []domain.Article{}}

	for _, kind := range domain.FieldKinds {
		res, ok := fields[kind]
		if !ok || !res.Available() {
			s.Unavailable = append(s.Unavailable, kind)
			continue
		}

		var decoded bool
		switch kind {
		case domain.FieldProfile:
			s.Profile, decoded = profileFrom(res)
		case domain.FieldQuote:
			s.Quote, decoded = quoteFrom(res)
		case domain.FieldMetrics:
			s.Metrics, decoded = metricsFrom(res)
		case domain.FieldRecommendation:
			s.Recommendation, decoded = recommendationFrom(res)
		case domain.FieldNews:
			s.News, decoded = newsFrom(res)
		case domain.FieldSentiment:
			s.Sentiment, decoded = sentimentFrom(res)
		}
		if !decoded {
			s.Unavailable = append(s.Unavailable, kind)
		}
	}
	if s.News == nil {
		s.News = []domain.Article{}
	}
	return s
}

// profileFrom reads /stock/profile2. An empty object (unknown symbol) gives
// a nil profile.
func profileFrom(res finnhub.Result) (*domain.Profile, bool) {
	o, ok := decodeObject(res.Data)
	if !ok {
		return nil, false
	}
	p := &domain.Profile{
		Name:     o.str("name"),
		Exchange: o.str("exchange"),
		Industry: o.str("finnhubIndustry"),
		IPO:      o.str("ipo"),
		LogoURL:  o.str("logo"),
	}
	if p.Name == nil && p.Exchange == nil && p.Industry == nil && p.IPO == nil && p.LogoURL == nil {
		return nil, true
	}
	return p, true
}

// quoteFrom reads /quote.
func quoteFrom(res finnhub.Result) (*domain.Quote, bool) {
	o, ok := decodeObject(res.Data)
	if !ok {
		return nil, false
	}
	q := &domain.Quote{
		Current:       o.num("c"),
		High:          o.num("h"),
		Low:           o.num("l"),
		PreviousClose: o.num("pc"),
	}
	if q.Current == nil && q.High == nil && q.Low == nil && q.PreviousClose == nil {
		return nil, true
	}
	return q, true
}

// metricsFrom reads the "metric" block of /stock/metric. A missing or empty
// block gives nil metrics.
func metricsFrom(res finnhub.Result) (*domain.Metrics, bool) {
	o, ok := decodeObject(res.Data)
	if !ok {
		return nil, false
	}
	block, ok := decodeObject(o["metric"])
	if !ok || len(block) == 0 {
		return nil, true
	}
	return &domain.Metrics{
		PERatio:       block.num("peTTM"),
		DividendYield: block.num("dividendYieldIndicatedAnnual"),
		Volatility:    block.num("volatility"),
		MarketCap:     block.num("marketCapitalization"),
	}, true
}

// recommendationFrom reads the most recent period of /stock/recommendation.
func recommendationFrom(res finnhub.Result) (*domain.Recommendation, bool) {
	periods, ok := decodeArray(res.Data)
	if !ok {
		return nil, false
	}
	if len(periods) == 0 {
		return nil, true
	}
	o, ok := decodeObject(periods[0])
	if !ok {
		return nil, true
	}
	return &domain.Recommendation{
		Buy:        o.count("buy"),
		Hold:       o.count("hold"),
		Sell:       o.count("sell"),
		StrongBuy:  o.count("strongBuy"),
		StrongSell: o.count("strongSell"),
		Period:     o.stringOr("period"),
	}, true
}

// newsFrom reads /company-news, keeping provider order and dropping items
// without a headline or URL.
func newsFrom(res finnhub.Result) ([]domain.Article, bool) {
	items, ok := decodeArray(res.Data)
	if !ok {
		return nil, false
	}
	articles := make([]domain.Article, 0, len(items))
	for _, raw := range items {
		o, ok := decodeObject(raw)
		if !ok {
			continue
		}
		headline, url := o.str("headline"), o.str("url")
		if headline == nil || url == nil {
			continue
		}
		a := domain.Article{
			Headline: *headline,
			URL:      *url,
			Source:   o.stringOr("source"),
			Summary:  o.stringOr("summary"),
		}
		if ts := o.num("datetime"); ts != nil && *ts > 0 {
			a.Published = time.Unix(int64(*ts), 0).UTC()
		}
		articles = append(articles, a)
	}
	return articles, true
}

// sentimentFrom counts the reddit and twitter mention sequences of
// /stock/social-sentiment. An empty object gives nil sentiment.
func sentimentFrom(res finnhub.Result) (*domain.Sentiment, bool) {
	o, ok := decodeObject(res.Data)
	if !ok {
		return nil, false
	}
	if len(o) == 0 {
		return nil, true
	}
	return &domain.Sentiment{
		RedditMentions:  o.length("reddit"),
		TwitterMentions: o.length("twitter"),
	}, true
}

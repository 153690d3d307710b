package finnhub

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockscope/internal/domain"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Options{APIKey: "secret", BaseURL: srv.URL, Timeout: 2 * time.Second}, quietLogger())
}

func TestFetchEndpoints(t *testing.T) {
	cases := []struct {
		kind  domain.FieldKind
		path  string
		extra map[string]string
	}{
		{domain.FieldProfile, "/stock/profile2", nil},
		{domain.FieldQuote, "/quote", nil},
		{domain.FieldMetrics, "/stock/metric", map[string]string{"metric": "all"}},
		{domain.FieldRecommendation, "/stock/recommendation", nil},
		{domain.FieldNews, "/company-news", map[string]string{"from": "2025-04-14", "to": "2025-05-14"}},
		{domain.FieldSentiment, "/stock/social-sentiment", nil},
	}

	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			var gotPath string
			var gotQuery map[string]string
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotQuery = map[string]string{}
				for k := range r.URL.Query() {
					gotQuery[k] = r.URL.Query().Get(k)
				}
				_, _ = w.Write([]byte(`{"ok":true}`))
			})
			c.newsLookback = 30
			c.now = func() time.Time { return time.Date(2025, 5, 14, 12, 0, 0, 0, time.UTC) }

			res := c.Fetch(context.Background(), "AAPL", tc.kind)
			require.True(t, res.Available(), "fetch error: %v", res.Err)
			assert.Equal(t, tc.kind, res.Kind)
			assert.Equal(t, tc.path, gotPath)
			assert.Equal(t, "AAPL", gotQuery["symbol"])
			assert.Equal(t, "secret", gotQuery["token"])
			for k, v := range tc.extra {
				assert.Equal(t, v, gotQuery[k], "query param %s", k)
			}
		})
	}
}

func TestFetchFailuresAreUnavailable(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"status 500": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
		"status 429": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"API limit reached"}`))
		},
		"malformed": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"c": 1.5,`))
		},
		"empty": func(w http.ResponseWriter, _ *http.Request) {},
		"null": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`null`))
		},
		"provider error": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"error":"You don't have access to this resource."}`))
		},
	}

	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, handler)
			res := c.Fetch(context.Background(), "AAPL", domain.FieldQuote)
			assert.False(t, res.Available())
			assert.True(t, errors.Is(res.Err, ErrUnavailable), "error %v should wrap ErrUnavailable", res.Err)
			assert.Equal(t, domain.FieldQuote, res.Kind)
		})
	}
}

func TestFetchTransportErrorHidesToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	c := NewClient(Options{APIKey: "super-secret-token", BaseURL: srv.URL}, quietLogger())
	res := c.Fetch(context.Background(), "AAPL", domain.FieldProfile)

	require.False(t, res.Available())
	assert.NotContains(t, res.Err.Error(), "super-secret-token")
}

func TestFetchUnknownKind(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
	})

	res := c.Fetch(context.Background(), "AAPL", domain.FieldKind("dividends"))
	assert.False(t, res.Available())
	assert.Zero(t, calls.Load(), "unknown kind must not reach the network")
}

func TestFetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	c := NewClient(Options{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, quietLogger())
	res := c.Fetch(context.Background(), "AAPL", domain.FieldQuote)
	assert.False(t, res.Available())
}

func TestFetchThrottled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	throttle := 20 * time.Millisecond
	c := NewClient(Options{BaseURL: srv.URL, Throttle: throttle}, quietLogger())

	start := time.Now()
	for _, kind := range domain.FieldKinds {
		c.Fetch(context.Background(), "AAPL", kind)
	}
	assert.GreaterOrEqual(t, time.Since(start), time.Duration(len(domain.FieldKinds))*throttle)
}

func TestListSymbols(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stock/symbol", r.URL.Path)
		assert.Equal(t, "US", r.URL.Query().Get("exchange"))
		_, _ = w.Write([]byte(`[
			{"symbol":"AAPL","description":"APPLE INC","displaySymbol":"AAPL","mic":"XNAS","type":"Common Stock","currency":"USD"},
			{"symbol":"IBM","description":"INTL BUSINESS MACHINES CORP","mic":"XNYS"}
		]`))
	})

	records, err := c.ListSymbols(context.Background(), "US")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "AAPL", records[0].Symbol)
	assert.Equal(t, "XNAS", records[0].MIC)
	assert.Equal(t, "INTL BUSINESS MACHINES CORP", records[1].Description)
}

func TestListSymbolsWrongShape(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"symbol":"AAPL"}`))
	})

	_, err := c.ListSymbols(context.Background(), "US")
	assert.Error(t, err)
}

package directory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockscope/internal/finnhub"
)

type fakeLister struct {
	calls   atomic.Int32
	records []finnhub.SymbolRecord
	err     error
	gate    chan struct{} // when non-nil, each call blocks until closed
}

func (f *fakeLister) ListSymbols(ctx context.Context, exchange string) ([]finnhub.SymbolRecord, error) {
	f.calls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

var testListing = []finnhub.SymbolRecord{
	{Symbol: "AAPL", Description: "APPLE INC", MIC: "XNAS"},
	{Symbol: "MSFT", Description: "MICROSOFT CORP", MIC: "XNAS"},
	{Symbol: "AMZN", Description: "AMAZON.COM INC", MIC: "XNAS"},
	{Symbol: "IBM", Description: "INTL BUSINESS MACHINES CORP", MIC: "XNYS"},
	{Symbol: "NODESC", Description: "", MIC: "XNAS"},
	{Symbol: "", Description: "NO SYMBOL", MIC: "XNAS"},
}

func newTestCache(l Lister) (*Cache, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 5, 14, 9, 0, 0, 0, time.UTC)}
	c := New(l, Options{Exchange: "US", MIC: "XNAS", TTL: time.Hour, FetchAttempts: 1},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.now = clock.Now
	return c, clock
}

func TestDirectoryFiltersByMIC(t *testing.T) {
	c, _ := newTestCache(&fakeLister{records: testListing})

	dir := c.Directory(context.Background())
	assert.Equal(t, map[string]string{
		"AAPL - APPLE INC":      "AAPL",
		"MSFT - MICROSOFT CORP": "MSFT",
		"AMZN - AMAZON.COM INC": "AMZN",
	}, dir)
}

func TestDirectoryCachedWithinTTL(t *testing.T) {
	lister := &fakeLister{records: testListing}
	c, clock := newTestCache(lister)
	ctx := context.Background()

	c.Directory(ctx)
	clock.Advance(59 * time.Minute)
	c.Directory(ctx)
	assert.EqualValues(t, 1, lister.calls.Load(), "two calls inside the TTL should fetch once")

	clock.Advance(2 * time.Minute)
	c.Directory(ctx)
	assert.EqualValues(t, 2, lister.calls.Load(), "a call after expiry should fetch again")
}

func TestDirectoryFailureReturnsEmpty(t *testing.T) {
	lister := &fakeLister{err: errors.New("status 502")}
	c, _ := newTestCache(lister)
	ctx := context.Background()

	dir := c.Directory(ctx)
	assert.NotNil(t, dir)
	assert.Empty(t, dir)

	// Failures are not cached.
	lister.err = nil
	lister.records = testListing
	assert.Len(t, c.Directory(ctx), 3)
	assert.EqualValues(t, 2, lister.calls.Load())
}

func TestDirectoryRetriesListing(t *testing.T) {
	lister := &fakeLister{err: errors.New("timeout")}
	c, _ := newTestCache(lister)
	c.opts.FetchAttempts = 3

	c.Directory(context.Background())
	assert.EqualValues(t, 3, lister.calls.Load())
}

func TestDirectoryReturnsCopy(t *testing.T) {
	c, _ := newTestCache(&fakeLister{records: testListing})
	ctx := context.Background()

	dir := c.Directory(ctx)
	delete(dir, "AAPL - APPLE INC")
	assert.Len(t, c.Directory(ctx), 3)
}

func TestDirectoryConcurrentRefreshSharesFetch(t *testing.T) {
	lister := &fakeLister{records: testListing, gate: make(chan struct{})}
	c, _ := newTestCache(lister)

	var wg sync.WaitGroup
	results := make([]int, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = len(c.Directory(context.Background()))
		}(i)
	}

	// Let every goroutine reach the refresh before releasing the fetch.
	require.Eventually(t, func() bool { return lister.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(lister.gate)
	wg.Wait()

	assert.EqualValues(t, 1, lister.calls.Load())
	for _, n := range results {
		assert.Equal(t, 3, n)
	}
}

func TestEntriesSortedAndLookup(t *testing.T) {
	c, _ := newTestCache(&fakeLister{records: testListing})
	ctx := context.Background()

	entries := c.Entries(ctx)
	require.Len(t, entries, 3)
	assert.Equal(t, "AAPL", entries[0].Symbol)
	assert.Equal(t, "AMZN", entries[1].Symbol)
	assert.Equal(t, "MSFT", entries[2].Symbol)
	assert.Equal(t, "AAPL - APPLE INC", entries[0].Label)

	e, ok := c.Lookup(ctx, " msft ")
	require.True(t, ok)
	assert.Equal(t, "MICROSOFT CORP", e.Description)

	_, ok = c.Lookup(ctx, "IBM")
	assert.False(t, ok, "symbols on other markets are filtered out")
}

func TestSearch(t *testing.T) {
	c, _ := newTestCache(&fakeLister{records: testListing})
	ctx := context.Background()

	hits := c.Search(ctx, "aapl", 10)
	require.NotEmpty(t, hits)
	assert.Equal(t, "AAPL", hits[0].Symbol)

	hits = c.Search(ctx, "micro", 10)
	require.NotEmpty(t, hits)
	assert.Equal(t, "MSFT", hits[0].Symbol)

	hits = c.Search(ctx, "am", 10)
	require.NotEmpty(t, hits)
	assert.Equal(t, "AMZN", hits[0].Symbol)

	hits = c.Search(ctx, "", 2)
	assert.Len(t, hits, 2)

	assert.Empty(t, c.Search(ctx, "zzzz", 10))
}

func TestSearchOnEmptyDirectory(t *testing.T) {
	c, _ := newTestCache(&fakeLister{err: errors.New("down")})
	assert.Empty(t, c.Search(context.Background(), "aapl", 10))
}

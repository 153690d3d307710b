// Package finnhub fetches per-symbol data fields and the exchange symbol
// listing from the Finnhub HTTP API. Field fetches never fail loudly: every
// transport, status, or payload problem is folded into an unavailable Result.
package finnhub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stockscope/internal/domain"
	"stockscope/internal/util"
)

const (
	DefaultBaseURL = "https://finnhub.io/api/v1"

	// maxBodyBytes bounds a single response. The US symbol listing is the
	// largest payload at a few megabytes.
	maxBodyBytes = 64 << 20
)

// ErrUnavailable marks a field that could not be retrieved.
var ErrUnavailable = errors.New("field unavailable")

// Result is the outcome of fetching one field: either provider JSON or an
// error wrapping ErrUnavailable.
type Result struct {
	Kind domain.FieldKind
	Data json.RawMessage
	Err  error
}

// Available reports whether the field was retrieved.
func (r Result) Available() bool {
	return r.Err == nil && len(r.Data) > 0
}

// Unavailable builds a failed Result for kind with the given cause.
func Unavailable(kind domain.FieldKind, cause error) Result {
	return Result{Kind: kind, Err: fmt.Errorf("%w: %s: %v", ErrUnavailable, kind, cause)}
}

// Options configures a Client.
type Options struct {
	APIKey           string
	BaseURL          string
	Throttle         time.Duration
	Timeout          time.Duration
	NewsLookbackDays int
	// HTTPClient overrides the default client built from Timeout.
	HTTPClient *http.Client
}

// Client is a throttled Finnhub API client.
type Client struct {
	baseURL      string
	apiKey       string
	httpClient   *http.Client
	throttle     *util.Throttle
	newsLookback int
	now          func() time.Time
	log          *slog.Logger
}

// NewClient creates a Client. The throttle is shared by every call made
// through the client, so it also spaces concurrent loads.
func NewClient(opts Options, log *slog.Logger) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	if log == nil {
		log = slog.Default()
	}

	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiKey:       opts.APIKey,
		httpClient:   httpClient,
		throttle:     util.NewThrottle(opts.Throttle),
		newsLookback: opts.NewsLookbackDays,
		now:          time.Now,
		log:          log.With("component", "finnhub"),
	}
}

// Fetch retrieves one field for one symbol. It never returns an error
// separately and never panics; failures come back as an unavailable Result.
func (c *Client) Fetch(ctx context.Context, symbol string, kind domain.FieldKind) Result {
	path, params, err := c.endpoint(symbol, kind)
	if err != nil {
		return Unavailable(kind, err)
	}

	body, err := c.get(ctx, path, params)
	if err != nil {
		c.log.Debug("fetch failed", "symbol", symbol, "field", kind, "error", err)
		return Unavailable(kind, err)
	}

	return Result{Kind: kind, Data: body}
}

// endpoint maps a field kind to its API path and query parameters.
func (c *Client) endpoint(symbol string, kind domain.FieldKind) (string, url.Values, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	switch kind {
	case domain.FieldProfile:
		return "/stock/profile2", params, nil
	case domain.FieldQuote:
		return "/quote", params, nil
	case domain.FieldMetrics:
		params.Set("metric", "all")
		return "/stock/metric", params, nil
	case domain.FieldRecommendation:
		return "/stock/recommendation", params, nil
	case domain.FieldNews:
		w := util.LookbackWindow(c.now(), c.newsLookback)
		params.Set("from", w.FromString())
		params.Set("to", w.ToString())
		return "/company-news", params, nil
	case domain.FieldSentiment:
		return "/stock/social-sentiment", params, nil
	default:
		return "", nil, fmt.Errorf("unknown field kind %q", kind)
	}
}

// get waits on the throttle, issues the request, and validates the body.
func (c *Client) get(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	if err := c.throttle.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("token", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", path, stripURL(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("requesting %s: status %d", path, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return validatePayload(body)
}

// validatePayload rejects empty, null, malformed, and provider-error bodies.
func validatePayload(body []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, errors.New("empty payload")
	}
	if !json.Valid(trimmed) {
		return nil, errors.New("malformed payload")
	}
	if bytes.Equal(trimmed, []byte("null")) {
		return nil, errors.New("null payload")
	}
	if trimmed[0] == '{' {
		var probe struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(trimmed, &probe); err == nil && probe.Error != "" {
			return nil, fmt.Errorf("provider error: %s", probe.Error)
		}
	}
	return json.RawMessage(trimmed), nil
}

// stripURL drops the request URL from transport errors so the API token
// never reaches logs.
func stripURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}

package fx

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"tagtrack/internal/core"
)

const (
	// DefaultBaseURL serves the open.er-api.com response shape:
	// GET <base>/<FROM> -> {"result":"success","rates":{"USD":1.1,...}}
	DefaultBaseURL = "https://open.er-api.com/v6/latest"

	defaultCacheSize = 64
	defaultCacheTTL  = 30 * time.Minute
)

// Client fetches exchange rates over HTTP and caches them per currency pair.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cache      *rateCache[decimal.Decimal]
}

// NewClient creates a rate client for the given endpoint. An empty baseURL
// selects DefaultBaseURL; non-positive cache parameters select the defaults.
func NewClient(baseURL string, cacheSize int, cacheTTL time.Duration) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}
	return &Client{
		httpClient: newHTTPClientWithPooling(),
		baseURL:    strings.TrimRight(baseURL, "/"),
		cache:      newRateCache[decimal.Decimal](cacheSize, cacheTTL),
	}
}

// rateResponse is the subset of the endpoint's JSON body we read.
type rateResponse struct {
	Result string             `json:"result"`
	Rates  map[string]float64 `json:"rates"`
}

// Rate implements RateSource. Failures wrap core.ErrConversionUnavailable so
// callers can distinguish an unreachable rate service from bad input.
func (c *Client) Rate(ctx context.Context, from, to core.Currency) (decimal.Decimal, error) {
	key := string(from) + ":" + string(to)
	if cached, ok := c.cache.Get(key); ok {
		return cached, nil
	}

	url := fmt.Sprintf("%s/%s", c.baseURL, from)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: build request: %v", core.ErrConversionUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %v", core.ErrConversionUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Decimal{}, fmt.Errorf("%w: rate service returned %d", core.ErrConversionUnavailable, resp.StatusCode)
	}

	var body rateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: decode response: %v", core.ErrConversionUnavailable, err)
	}
	if body.Result != "" && body.Result != "success" {
		return decimal.Decimal{}, fmt.Errorf("%w: rate service result %q", core.ErrConversionUnavailable, body.Result)
	}

	raw, ok := body.Rates[string(to)]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%w: no %s rate in response", core.ErrConversionUnavailable, to)
	}

	rate := decimal.NewFromFloat(raw)
	c.cache.Set(key, rate)
	slog.DebugContext(ctx, "Fetched exchange rate", "from", from, "to", to, "rate", raw)
	return rate, nil
}

// newHTTPClientWithPooling builds an HTTP client with connection pooling and
// conservative timeouts for the rate endpoint.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext: dialer.DialContext,

		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     50,
		IdleConnTimeout:     90 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		DisableKeepAlives: false,
		ForceAttemptHTTP2: true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
	}
}

package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"MarketRadar/internal/model"
)

// ChipSource fetches per-ticker institutional flows. A failed fetch returns
// an empty map, never an error: missing entries mean "no data this run".
type ChipSource interface {
	FetchChips(ctx context.Context) model.ChipMap
	Name() string
}

// RevenueSource fetches trailing monthly revenue history plus the derived
// per-ticker stats. Empty maps on failure.
type RevenueSource interface {
	FetchRevenue(ctx context.Context) (map[string][]model.RevenuePoint, map[string]model.RevenueStats)
	Name() string
}

// QuoteSource fetches last price and trailing P/E for a set of tickers.
// Tickers absent from the result had no usable quote this run.
type QuoteSource interface {
	FetchQuotes(ctx context.Context, tickers []string, markets map[string]model.Market) map[string]model.Quote
	Name() string
}

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Client is the shared HTTP client for all fetchers: browser User-Agent,
// per-call timeout, optional proxy, and polite fixed-rate pacing so batched
// calls don't hammer the exchange endpoints.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Client with optional proxy support.
func NewClient(proxyURL string, timeout time.Duration) *Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &Client{
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// Get performs a paced GET and returns the body. Non-200 is an error.
func (c *Client) Get(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rawURL, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get %s: status %d", rawURL, resp.StatusCode)
	}
	return body, nil
}

// validTicker reports whether code is a 4-character listing identifier.
func validTicker(code string) bool {
	return len(code) == 4
}

package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"MarketRadar/internal/model"
)

// YahooQuotes fetches last price and trailing P/E in batches from the Yahoo
// Finance quote API. A batch that fails all retries is a batch-level gap,
// not a record-level failure: its tickers are simply absent from the result.
type YahooQuotes struct {
	BaseURL   string
	BatchSize int
	client    *Client

	retries int
	backoff time.Duration
}

// NewYahooQuotes creates the batch quote fetcher.
func NewYahooQuotes(baseURL string, batchSize int, client *Client) *YahooQuotes {
	return &YahooQuotes{
		BaseURL:   baseURL,
		BatchSize: batchSize,
		client:    client,
		retries:   3,
		backoff:   2 * time.Second,
	}
}

func (f *YahooQuotes) Name() string { return "yahoo-quotes" }

// yahooQuoteResponse is the v7 quote envelope, only the fields the P/E
// fallback chain needs.
type yahooQuoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol              string  `json:"symbol"`
			RegularMarketPrice  float64 `json:"regularMarketPrice"`
			PreviousClose       float64 `json:"regularMarketPreviousClose"`
			MarketChangePercent float64 `json:"regularMarketChangePercent"`
			DayHigh             float64 `json:"regularMarketDayHigh"`
			DayLow              float64 `json:"regularMarketDayLow"`
			TrailingPE          float64 `json:"trailingPE"`
			EPSTrailing         float64 `json:"epsTrailingTwelveMonths"`
			ForwardPE           float64 `json:"forwardPE"`
		} `json:"result"`
		Error *struct {
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteResponse"`
}

// FetchQuotes resolves each ticker to its exchange symbol, fetches in
// batches with retry, and applies the P/E fallback chain per ticker:
// trailing P/E, then price/EPS, then forward P/E, then none.
func (f *YahooQuotes) FetchQuotes(ctx context.Context, tickers []string, markets map[string]model.Market) map[string]model.Quote {
	quotes := make(map[string]model.Quote, len(tickers))

	for start := 0; start < len(tickers); start += f.BatchSize {
		end := start + f.BatchSize
		if end > len(tickers) {
			end = len(tickers)
		}
		batch := tickers[start:end]

		symbols := make([]string, 0, len(batch))
		bySymbol := make(map[string]string, len(batch))
		for _, t := range batch {
			sym := quoteSymbol(t, markets[t])
			symbols = append(symbols, sym)
			bySymbol[sym] = t
		}

		resp, err := f.fetchBatch(ctx, symbols)
		if err != nil {
			log.Printf("[WARN] quote batch %d-%d skipped: %v", start, end, err)
			continue
		}
		for _, r := range resp.QuoteResponse.Result {
			ticker, ok := bySymbol[r.Symbol]
			if !ok {
				continue
			}
			pe := r.TrailingPE
			if pe <= 0 && r.EPSTrailing > 0 && r.RegularMarketPrice > 0 {
				pe = r.RegularMarketPrice / r.EPSTrailing
			}
			if pe <= 0 {
				pe = r.ForwardPE
			}
			if pe < 0 {
				pe = 0
			}
			quotes[ticker] = model.Quote{Price: r.RegularMarketPrice, TrailingPE: pe}
		}
	}
	log.Printf("[INFO] quotes: %d of %d tickers resolved", len(quotes), len(tickers))
	return quotes
}

// DaySnapshot is a single symbol's intraday summary, used by the macro and
// global updaters rather than the merge pipeline.
type DaySnapshot struct {
	Price         float64
	PreviousClose float64
	ChangePct     float64
	High          float64
	Low           float64
}

// FetchDaySnapshots fetches price, previous close and day range for a mixed
// set of symbols (Taiwan tickers, US symbols, FX pairs, indices).
func (f *YahooQuotes) FetchDaySnapshots(ctx context.Context, tickers []string, markets map[string]model.Market) map[string]DaySnapshot {
	out := make(map[string]DaySnapshot, len(tickers))

	for start := 0; start < len(tickers); start += f.BatchSize {
		end := start + f.BatchSize
		if end > len(tickers) {
			end = len(tickers)
		}
		batch := tickers[start:end]

		symbols := make([]string, 0, len(batch))
		bySymbol := make(map[string]string, len(batch))
		for _, t := range batch {
			sym := quoteSymbol(t, markets[t])
			symbols = append(symbols, sym)
			bySymbol[sym] = t
		}

		resp, err := f.fetchBatch(ctx, symbols)
		if err != nil {
			log.Printf("[WARN] day-snapshot batch %d-%d skipped: %v", start, end, err)
			continue
		}
		for _, r := range resp.QuoteResponse.Result {
			ticker, ok := bySymbol[r.Symbol]
			if !ok {
				continue
			}
			chg := r.MarketChangePercent
			if chg == 0 && r.PreviousClose > 0 {
				chg = (r.RegularMarketPrice - r.PreviousClose) / r.PreviousClose * 100
			}
			out[ticker] = DaySnapshot{
				Price:         r.RegularMarketPrice,
				PreviousClose: r.PreviousClose,
				ChangePct:     chg,
				High:          r.DayHigh,
				Low:           r.DayLow,
			}
		}
	}
	return out
}

// fetchBatch retries the whole batch call with a fixed backoff.
func (f *YahooQuotes) fetchBatch(ctx context.Context, symbols []string) (*yahooQuoteResponse, error) {
	u := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", f.BaseURL, url.QueryEscape(strings.Join(symbols, ",")))

	var lastErr error
	for attempt := 1; attempt <= f.retries; attempt++ {
		body, err := f.client.Get(ctx, u, nil)
		if err == nil {
			var resp yahooQuoteResponse
			if err := json.Unmarshal(body, &resp); err != nil {
				return nil, fmt.Errorf("decode quotes: %w", err)
			}
			if resp.QuoteResponse.Error != nil {
				return nil, fmt.Errorf("quote api: %s", resp.QuoteResponse.Error.Description)
			}
			return &resp, nil
		}
		lastErr = err
		log.Printf("[WARN] quote batch attempt %d/%d: %v", attempt, f.retries, err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.backoff):
		}
	}
	return nil, fmt.Errorf("all %d attempts failed: %w", f.retries, lastErr)
}

// quoteSymbol maps a ticker to its Yahoo symbol: Taiwan listings get a
// market suffix, anything non-numeric (US anchors in the global updater)
// passes through unchanged.
func quoteSymbol(ticker string, market model.Market) string {
	if !isNumericTicker(ticker) {
		return ticker
	}
	if market == model.MarketTPEX {
		return ticker + ".TWO"
	}
	return ticker + ".TW"
}

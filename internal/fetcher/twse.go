package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"MarketRadar/internal/model"
)

// TWSEChips fetches the listed-market institutional flow table (T86).
// It probes a small trailing window of dates, skipping weekends, and stops
// at the first date that returns a well-formed table.
type TWSEChips struct {
	BaseURL   string
	ProbeDays int
	client    *Client
	now       func() time.Time
}

// NewTWSEChips creates the listed-market chips fetcher.
func NewTWSEChips(baseURL string, probeDays int, client *Client) *TWSEChips {
	return &TWSEChips{BaseURL: baseURL, ProbeDays: probeDays, client: client, now: time.Now}
}

func (f *TWSEChips) Name() string { return "twse-chips" }

// t86Response is the TWSE open-data JSON envelope.
type t86Response struct {
	Stat   string     `json:"stat"`
	Fields []string   `json:"fields"`
	Data   [][]string `json:"data"`
}

// FetchChips walks back up to ProbeDays calendar days and parses at most one
// winning date. On total failure it returns an empty map.
func (f *TWSEChips) FetchChips(ctx context.Context) model.ChipMap {
	now := f.now()
	for i := 0; i < f.ProbeDays; i++ {
		target := now.AddDate(0, 0, -i)
		if wd := target.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		dateStr := target.Format("20060102")
		u := fmt.Sprintf("%s/rwd/zh/fund/T86?date=%s&selectType=ALL&response=json", f.BaseURL, dateStr)

		body, err := f.client.Get(ctx, u, nil)
		if err != nil {
			log.Printf("[WARN] twse chips %s: %v", dateStr, err)
			continue
		}
		var resp t86Response
		if err := json.Unmarshal(body, &resp); err != nil || resp.Stat != "OK" {
			continue
		}
		chips := parseT86(&resp)
		if len(chips) > 0 {
			log.Printf("[INFO] twse chips: %d tickers for %s", len(chips), dateStr)
			return chips
		}
	}
	log.Printf("[WARN] twse chips: no usable date in %d-day window", f.ProbeDays)
	return model.ChipMap{}
}

func parseT86(resp *t86Response) model.ChipMap {
	// Locate columns by header keyword; the documented last resort is the
	// long-observed positional layout.
	idxForeign, idxTrust := 4, 10
	for i, field := range resp.Fields {
		if strings.Contains(field, "外陸資買賣超") {
			idxForeign = i
		}
		if strings.Contains(field, "投信買賣超") {
			idxTrust = i
		}
	}

	chips := make(model.ChipMap)
	for _, row := range resp.Data {
		if len(row) <= idxForeign || len(row) <= idxTrust {
			continue
		}
		code := strings.TrimSpace(row[0])
		if !validTicker(code) {
			continue
		}
		chips[code] = model.Chip{
			Name:       strings.TrimSpace(row[1]),
			ForeignNet: parseShareLots(row[idxForeign]),
			TrustNet:   parseShareLots(row[idxTrust]),
			Market:     model.MarketTWSE,
		}
	}
	return chips
}

// parseShareLots converts a comma-grouped share count to lots (1000 shares).
// Unparseable cells count as 0, not as a row failure.
func parseShareLots(s string) int64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n / 1000
}

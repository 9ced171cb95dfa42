package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"MarketRadar/internal/model"
)

// TPEXChips fetches the over-the-counter institutional flow table
// (3itrade_hedge). The endpoint has shipped two envelope formats (tables vs
// aaData) and its column layout has drifted, so the foreign/trust offsets
// come from configuration.
type TPEXChips struct {
	BaseURL    string
	ProbeDays  int
	ForeignCol int
	TrustCol   int
	client     *Client
	now        func() time.Time
}

// NewTPEXChips creates the OTC chips fetcher with configured column offsets.
func NewTPEXChips(baseURL string, probeDays, foreignCol, trustCol int, client *Client) *TPEXChips {
	return &TPEXChips{
		BaseURL:    baseURL,
		ProbeDays:  probeDays,
		ForeignCol: foreignCol,
		TrustCol:   trustCol,
		client:     client,
		now:        time.Now,
	}
}

func (f *TPEXChips) Name() string { return "tpex-chips" }

// tpexResponse accepts both envelope generations of the 3itrade feed.
type tpexResponse struct {
	Tables []struct {
		Data [][]string `json:"data"`
	} `json:"tables"`
	AAData [][]string `json:"aaData"`
}

func (r *tpexResponse) rows() [][]string {
	if len(r.Tables) > 0 && len(r.Tables[0].Data) > 0 {
		return r.Tables[0].Data
	}
	return r.AAData
}

// FetchChips probes the trailing date window like the TWSE fetcher, using
// ROC-era date strings. Empty map on total failure.
func (f *TPEXChips) FetchChips(ctx context.Context) model.ChipMap {
	now := f.now()
	headers := map[string]string{"Referer": f.BaseURL + "/"}
	for i := 0; i < f.ProbeDays; i++ {
		target := now.AddDate(0, 0, -i)
		if wd := target.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		rocDate := fmt.Sprintf("%d/%02d/%02d", target.Year()-1911, target.Month(), target.Day())
		u := fmt.Sprintf("%s/web/stock/3insti/daily_trade/3itrade_hedge_result.php?l=zh-tw&o=json&se=EW&t=D&d=%s", f.BaseURL, rocDate)

		body, err := f.client.Get(ctx, u, headers)
		if err != nil {
			log.Printf("[WARN] tpex chips %s: %v", rocDate, err)
			continue
		}
		var resp tpexResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			continue
		}
		rows := resp.rows()
		if len(rows) == 0 {
			continue
		}
		chips := f.parseRows(rows)
		if len(chips) > 0 {
			log.Printf("[INFO] tpex chips: %d tickers for %s", len(chips), rocDate)
			return chips
		}
	}
	log.Printf("[WARN] tpex chips: no usable date in %d-day window", f.ProbeDays)
	return model.ChipMap{}
}

func (f *TPEXChips) parseRows(rows [][]string) model.ChipMap {
	chips := make(model.ChipMap)
	for _, row := range rows {
		if len(row) <= f.ForeignCol {
			continue
		}
		code := strings.TrimSpace(row[0])
		if !validTicker(code) {
			continue
		}
		// Rows shorter than the configured trust column fall back to the
		// pre-revision layout.
		trustCol := f.TrustCol
		if len(row) <= trustCol {
			trustCol = 7
		}
		if len(row) <= trustCol {
			continue
		}
		chips[code] = model.Chip{
			Name:       strings.TrimSpace(row[1]),
			ForeignNet: parseShareLots(row[f.ForeignCol]),
			TrustNet:   parseShareLots(row[trustCol]),
			Market:     model.MarketTPEX,
		}
	}
	return chips
}

// MergeChips overlays OTC chips onto the listed-market set. OTC wins on the
// (rare) ticker present in both.
func MergeChips(twse, tpex model.ChipMap) model.ChipMap {
	merged := make(model.ChipMap, len(twse)+len(tpex))
	for code, chip := range twse {
		merged[code] = chip
	}
	for code, chip := range tpex {
		merged[code] = chip
	}
	return merged
}

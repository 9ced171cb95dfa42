package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/transform"

	"MarketRadar/internal/model"
	"MarketRadar/internal/sanitize"
)

// minRevenuePageSize filters out the stub pages MOPS serves for months with
// no published data yet.
const minRevenuePageSize = 5000

// MOPSRevenue builds the trailing monthly revenue history from the MOPS
// static report pages (Big5-encoded HTML tables, one page per market per
// month). An anchor search first walks backward month by month until it
// finds a parseable page; the anchor then drives extraction of the trailing
// window for both market segments.
type MOPSRevenue struct {
	BaseURL       string
	AnchorMonths  int
	HistoryMonths int
	client        *Client
	now           func() time.Time
}

// NewMOPSRevenue creates the revenue-history fetcher.
func NewMOPSRevenue(baseURL string, anchorMonths, historyMonths int, client *Client) *MOPSRevenue {
	return &MOPSRevenue{
		BaseURL:       baseURL,
		AnchorMonths:  anchorMonths,
		HistoryMonths: historyMonths,
		client:        client,
		now:           time.Now,
	}
}

func (f *MOPSRevenue) Name() string { return "mops-revenue" }

// FetchRevenue returns per-ticker history oldest to newest, bounded to the
// trailing window, plus derived stats. MoM is recomputed from the two most
// recent retained points; YoY is taken from the feed's own column the first
// time a ticker is seen and never overwritten. Empty maps on total failure.
func (f *MOPSRevenue) FetchRevenue(ctx context.Context) (map[string][]model.RevenuePoint, map[string]model.RevenueStats) {
	history := make(map[string][]model.RevenuePoint)
	stats := make(map[string]model.RevenueStats)

	anchor, ok := f.findAnchor(ctx)
	if !ok {
		log.Printf("[WARN] mops revenue: no parseable month within %d months", f.AnchorMonths)
		return history, stats
	}
	log.Printf("[INFO] mops revenue: anchor month %s", anchor.Format("2006-01"))

	for i := 0; i < f.HistoryMonths; i++ {
		target := anchor.AddDate(0, -i, 0)
		month := target.Format("2006-01")
		for _, mkt := range []string{"sii", "otc"} {
			doc, err := f.fetchMonth(ctx, mkt, target)
			if err != nil {
				log.Printf("[WARN] mops revenue %s %s: %v", mkt, month, err)
				continue
			}
			f.collectRows(doc, month, history, stats)
		}
	}

	// Pages were visited newest first; flip to chronological and derive MoM.
	for code, hist := range history {
		for l, r := 0, len(hist)-1; l < r; l, r = l+1, r-1 {
			hist[l], hist[r] = hist[r], hist[l]
		}
		if mom := MoMPercent(hist); mom != 0 {
			st := stats[code]
			st.MoM = mom
			stats[code] = st
		}
	}
	log.Printf("[INFO] mops revenue: %d tickers with history", len(history))
	return history, stats
}

// MoMPercent derives the month-over-month change from the two most recent
// points of a chronological history, rather than trusting the feed's own
// column. Histories shorter than two points yield 0.
func MoMPercent(hist []model.RevenuePoint) float64 {
	if len(hist) < 2 {
		return 0
	}
	latest, prev := hist[len(hist)-1].Revenue, hist[len(hist)-2].Revenue
	if prev <= 0 {
		return 0
	}
	return sanitize.Round((latest-prev)/prev*100, 2)
}

// findAnchor walks backward from last month until a month's listed-market
// page is present and parseable.
func (f *MOPSRevenue) findAnchor(ctx context.Context) (time.Time, bool) {
	start := monthStart(f.now())
	for i := 1; i <= f.AnchorMonths; i++ {
		probe := start.AddDate(0, -i, 0)
		doc, err := f.fetchMonth(ctx, "sii", probe)
		if err != nil {
			continue
		}
		if hasRevenueTable(doc) {
			return probe, true
		}
	}
	return time.Time{}, false
}

func (f *MOPSRevenue) fetchMonth(ctx context.Context, market string, target time.Time) (*goquery.Document, error) {
	rocYear := target.Year() - 1911
	u := fmt.Sprintf("%s/nas/t21/%s/t21sc03_%d_%d_0.html", f.BaseURL, market, rocYear, int(target.Month()))
	raw, err := f.client.Get(ctx, u, nil)
	if err != nil {
		return nil, err
	}
	if len(raw) < minRevenuePageSize {
		return nil, fmt.Errorf("page too small (%d bytes)", len(raw))
	}
	decoded, _, err := transform.Bytes(traditionalchinese.Big5.NewDecoder(), raw)
	if err != nil {
		return nil, fmt.Errorf("big5 decode: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(decoded))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// collectRows appends one month of revenue for every company row found in
// the document. A bad row is skipped; the rest of the table still counts.
func (f *MOPSRevenue) collectRows(doc *goquery.Document, month string, history map[string][]model.RevenuePoint, stats map[string]model.RevenueStats) {
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td")
			if cells.Length() <= 6 {
				return
			}
			code := strings.TrimSpace(cells.Eq(0).Text())
			if !isNumericTicker(code) {
				return
			}
			revText := strings.TrimSpace(cells.Eq(2).Text())
			if revText == "" || revText == "-" {
				return
			}
			rev, err := strconv.ParseFloat(strings.ReplaceAll(revText, ",", ""), 64)
			if err != nil {
				return
			}
			// The report lists thousands of TWD; store raw dollars.
			rev *= 1000

			hist := history[code]
			if len(hist) > 0 && hist[len(hist)-1].Month == month {
				return // same company repeated within a page
			}
			history[code] = append(hist, model.RevenuePoint{Month: month, Revenue: rev})

			if _, seen := stats[code]; !seen {
				stats[code] = model.RevenueStats{YoY: sanitize.Value(cells.Eq(6).Text())}
			}
		})
	})
}

func hasRevenueTable(doc *goquery.Document) bool {
	found := false
	doc.Find("table tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cells := row.Find("td")
		if cells.Length() > 6 && isNumericTicker(strings.TrimSpace(cells.Eq(0).Text())) {
			found = true
			return false
		}
		return true
	})
	return found
}

func isNumericTicker(code string) bool {
	if len(code) != 4 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

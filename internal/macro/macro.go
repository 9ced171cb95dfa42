// Package macro builds the market-wide dashboard document: TAIEX history,
// market-level institutional flows, TX futures positioning, the USD/TWD rate
// and sector turnover shares. Independent of the per-ticker pipeline; each
// section degrades to its zero value on failure instead of failing the run.
package macro

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"MarketRadar/internal/fetcher"
	"MarketRadar/internal/model"
	"MarketRadar/internal/sanitize"
)

const (
	historyDays = 20

	taiexSymbol  = "^TWII"
	usdTWDSymbol = "USDTWD=X"
)

// Names excluded from the sector table: composite indices, not sectors.
var compositeIndexNames = map[string]bool{
	"發行量加權股價指數": true,
	"未含金融保險股指數": true,
	"未含電子股指數":   true,
	"未含金融電子股指數": true,
}

// Updater assembles one MacroSnapshot per run.
type Updater struct {
	TWSEBaseURL   string
	TaifexBaseURL string
	TaifexOICol   int
	ProbeDays     int

	client *fetcher.Client
	quotes *fetcher.YahooQuotes
	now    func() time.Time
}

// NewUpdater creates the macro updater.
func NewUpdater(twseBaseURL, taifexBaseURL string, taifexOICol, probeDays int, client *fetcher.Client, quotes *fetcher.YahooQuotes) *Updater {
	return &Updater{
		TWSEBaseURL:   twseBaseURL,
		TaifexBaseURL: taifexBaseURL,
		TaifexOICol:   taifexOICol,
		ProbeDays:     probeDays,
		client:        client,
		quotes:        quotes,
		now:           time.Now,
	}
}

// twseEnvelope is the shared TWSE open-data JSON shape.
type twseEnvelope struct {
	Stat string     `json:"stat"`
	Data [][]string `json:"data"`
}

// Build fetches every section and assembles the snapshot. Only an empty
// index history fails the run; everything else degrades in place.
func (u *Updater) Build(ctx context.Context) (*model.MacroSnapshot, error) {
	history := u.fetchIndexHistory(ctx)
	if len(history) == 0 {
		return nil, fmt.Errorf("no index history")
	}
	latest := history[len(history)-1]

	institutional := u.fetchInstitutional(ctx, latest.Date)
	sectorFlow := u.fetchSectorFlow(ctx)
	futures := u.fetchFuturesChips(ctx)

	day := u.quotes.FetchDaySnapshots(ctx, []string{taiexSymbol, usdTWDSymbol}, nil)

	prevClose := latest.Close - latest.Change
	changePct := 0.0
	if prevClose > 0 {
		changePct = sanitize.Round(latest.Change/prevClose*100, 2)
	}
	snap := &model.MacroSnapshot{
		LastUpdated: u.now().Format("2006-01-02 15:04"),
		MarketStatus: model.MarketStatus{
			TaiexClose:    latest.Close,
			Change:        latest.Change,
			ChangePercent: changePct,
			High:          day[taiexSymbol].High,
			Low:           day[taiexSymbol].Low,
			Volume:        latest.Volume,
		},
		History:       history,
		Institutional: institutional,
		Chips:         futures,
		Currency:      currencyRate(day[usdTWDSymbol]),
		SectorFlow:    sectorFlow,
	}
	return snap, nil
}

// fetchIndexHistory pulls the FMTQIK daily summary for the current and
// previous month, deduplicates the overlap, and keeps the trailing window.
func (u *Updater) fetchIndexHistory(ctx context.Context) []model.IndexDay {
	byDate := make(map[string]model.IndexDay)
	for _, offset := range []int{0, 1} {
		target := u.now().AddDate(0, -offset, 0)
		url := fmt.Sprintf("%s/rwd/zh/afterTrading/FMTQIK?date=%s01&response=json", u.TWSEBaseURL, target.Format("200601"))
		raw, err := u.client.Get(ctx, url, nil)
		if err != nil {
			log.Printf("[WARN] taiex history month -%d: %v", offset, err)
			continue
		}
		var env twseEnvelope
		if err := json.Unmarshal(raw, &env); err != nil || env.Stat != "OK" {
			log.Printf("[WARN] taiex history month -%d: bad payload", offset)
			continue
		}
		// Row: [date, shares, turnover, transactions, close, change]
		for _, row := range env.Data {
			if len(row) < 6 {
				continue
			}
			date := rocToDate(row[0])
			byDate[date] = model.IndexDay{
				Date:   date,
				Close:  sanitize.Value(row[4]),
				Volume: sanitize.Value(row[2]) / 1e8,
				Change: sanitize.Value(row[5]),
			}
		}
	}

	history := make([]model.IndexDay, 0, len(byDate))
	for _, day := range byDate {
		history = append(history, day)
	}
	sort.Slice(history, func(i, j int) bool { return history[i].Date < history[j].Date })
	if len(history) > historyDays {
		history = history[len(history)-historyDays:]
	}
	log.Printf("[INFO] taiex history: %d days", len(history))
	return history
}

// fetchInstitutional pulls BFI82U for the given trading day and folds the
// two dealer lines (proprietary and hedge) into one.
func (u *Updater) fetchInstitutional(ctx context.Context, date string) []model.InstitutionalNet {
	url := fmt.Sprintf("%s/rwd/zh/fund/BFI82U?date=%s&response=json", u.TWSEBaseURL, strings.ReplaceAll(date, "-", ""))
	raw, err := u.client.Get(ctx, url, nil)
	if err != nil {
		log.Printf("[WARN] institutional flows: %v", err)
		return nil
	}
	var env twseEnvelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Stat != "OK" {
		log.Printf("[WARN] institutional flows: bad payload")
		return nil
	}

	// Row: [name, buy, sell, net], amounts in TWD; report in 1e8.
	var dealerSelf, dealerHedge, trust, foreign float64
	for _, row := range env.Data {
		if len(row) < 4 {
			continue
		}
		name := row[0]
		net := sanitize.Value(row[3]) / 1e8
		switch {
		case strings.Contains(name, "自行買賣"):
			dealerSelf = net
		case strings.Contains(name, "避險"):
			dealerHedge = net
		case strings.Contains(name, "投信"):
			trust = net
		case strings.Contains(name, "外資"):
			foreign = net
		}
	}
	return []model.InstitutionalNet{
		{Name: "外資", Net: sanitize.Round(foreign, 2)},
		{Name: "投信", Net: sanitize.Round(trust, 2)},
		{Name: "自營商", Net: sanitize.Round(dealerSelf+dealerHedge, 2)},
	}
}

// fetchSectorFlow probes backward for the latest BFIAMU sector turnover
// table and reduces it to the top five shares plus a remainder bucket.
func (u *Updater) fetchSectorFlow(ctx context.Context) []model.SectorShare {
	var env *twseEnvelope
	day := u.now()
	for i := 0; i < u.ProbeDays; i++ {
		url := fmt.Sprintf("%s/rwd/zh/afterTrading/BFIAMU?date=%s&response=json", u.TWSEBaseURL, day.Format("20060102"))
		raw, err := u.client.Get(ctx, url, nil)
		if err == nil {
			var e twseEnvelope
			if json.Unmarshal(raw, &e) == nil && e.Stat == "OK" {
				env = &e
				break
			}
		}
		day = day.AddDate(0, 0, -1)
	}
	if env == nil {
		log.Printf("[WARN] sector flow: no data within %d days", u.ProbeDays)
		return nil
	}

	type sector struct {
		name  string
		value float64
	}
	var sectors []sector
	var total float64
	for _, row := range env.Data {
		if len(row) < 3 {
			continue
		}
		value := sanitize.Value(row[2])
		if value <= 0 {
			continue
		}
		total += value
		if !compositeIndexNames[row[0]] {
			sectors = append(sectors, sector{name: row[0], value: value})
		}
	}
	if total <= 0 {
		return nil
	}
	sort.Slice(sectors, func(i, j int) bool { return sectors[i].value > sectors[j].value })

	var out []model.SectorShare
	var rest float64
	for i, s := range sectors {
		if i >= 5 {
			rest += s.value
			continue
		}
		ratio := s.value / total * 100
		out = append(out, model.SectorShare{
			Name:  strings.ReplaceAll(s.name, "類", ""),
			Ratio: sanitize.Round(ratio, 1),
			Trend: sectorTrend(ratio),
		})
	}
	if rest > 0 {
		out = append(out, model.SectorShare{
			Name:  "其他",
			Ratio: sanitize.Round(rest/total*100, 1),
			Trend: "Normal",
		})
	}
	return out
}

func sectorTrend(ratio float64) string {
	switch {
	case ratio > 30:
		return "Hot"
	case ratio < 5:
		return "Cool"
	default:
		return "Normal"
	}
}

// fetchFuturesChips scrapes the TAIFEX institutional futures report for the
// foreign net open interest on the full-size TX contract.
func (u *Updater) fetchFuturesChips(ctx context.Context) model.FuturesChips {
	oi, err := u.fetchFuturesOI(ctx)
	if err != nil {
		log.Printf("[WARN] futures OI: %v", err)
		return model.FuturesChips{FuturesStatus: "Bearish", FuturesColor: "green"}
	}
	chips := model.FuturesChips{FuturesNetOI: oi}
	if oi > 0 {
		chips.FuturesStatus = "Bullish"
		chips.FuturesColor = "red"
	} else {
		chips.FuturesStatus = "Bearish"
		chips.FuturesColor = "green"
	}
	return chips
}

func (u *Updater) fetchFuturesOI(ctx context.Context) (int64, error) {
	raw, err := u.client.Get(ctx, u.TaifexBaseURL+"/cht/3/futContractsDate", nil)
	if err != nil {
		return 0, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(raw)))
	if err != nil {
		return 0, fmt.Errorf("parse html: %w", err)
	}

	var oi int64
	found := false
	doc.Find("table tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		text := row.Text()
		if !strings.Contains(text, "臺股期貨") || strings.Contains(text, "小型") || !strings.Contains(text, "外資") {
			return true
		}
		cells := row.Find("td")
		if cells.Length() <= u.TaifexOICol {
			return true
		}
		oi = int64(sanitize.Value(strings.TrimSpace(cells.Eq(u.TaifexOICol).Text())))
		found = true
		return false
	})
	if !found {
		return 0, fmt.Errorf("foreign TX row not found")
	}
	return oi, nil
}

func currencyRate(day fetcher.DaySnapshot) model.CurrencyRate {
	if day.Price <= 0 {
		return model.CurrencyRate{USDTWD: 32.5, Trend: "Stable"}
	}
	trend := "Appreciating"
	if day.Price > day.PreviousClose {
		// A rising USD/TWD quote means the TWD is weakening.
		trend = "Depreciating"
	}
	return model.CurrencyRate{USDTWD: sanitize.Round(day.Price, 2), Trend: trend}
}

// rocToDate converts "113/02/06" to "2024-02-06"; unparseable input passes
// through unchanged.
func rocToDate(roc string) string {
	parts := strings.Split(roc, "/")
	if len(parts) != 3 {
		return roc
	}
	var year int
	if _, err := fmt.Sscanf(parts[0], "%d", &year); err != nil {
		return roc
	}
	return fmt.Sprintf("%d-%s-%s", year+1911, parts[1], parts[2])
}

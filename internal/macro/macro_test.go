package macro

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"MarketRadar/internal/fetcher"
)

func testUpdater(twseURL, taifexURL string) *Updater {
	client := fetcher.NewClient("", 5*time.Second)
	u := NewUpdater(twseURL, taifexURL, 13, 5, client, fetcher.NewYahooQuotes(twseURL, 50, client))
	u.now = func() time.Time { return time.Date(2026, 2, 6, 18, 0, 0, 0, time.UTC) }
	return u
}

func TestRocToDate(t *testing.T) {
	tests := []struct{ in, want string }{
		{"115/02/06", "2026-02-06"},
		{"113/12/31", "2024-12-31"},
		{"garbage", "garbage"},
		{"115/02", "115/02"},
	}
	for _, tt := range tests {
		if got := rocToDate(tt.in); got != tt.want {
			t.Errorf("rocToDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSectorTrend(t *testing.T) {
	tests := []struct {
		ratio float64
		want  string
	}{
		{45, "Hot"},
		{30, "Normal"},
		{5, "Normal"},
		{4.9, "Cool"},
	}
	for _, tt := range tests {
		if got := sectorTrend(tt.ratio); got != tt.want {
			t.Errorf("sectorTrend(%v) = %q, want %q", tt.ratio, got, tt.want)
		}
	}
}

func TestCurrencyRate(t *testing.T) {
	up := currencyRate(fetcher.DaySnapshot{Price: 32.8, PreviousClose: 32.5})
	if up.Trend != "Depreciating" {
		t.Errorf("rising USD/TWD should read Depreciating, got %q", up.Trend)
	}
	down := currencyRate(fetcher.DaySnapshot{Price: 32.2, PreviousClose: 32.5})
	if down.Trend != "Appreciating" {
		t.Errorf("falling USD/TWD should read Appreciating, got %q", down.Trend)
	}
	missing := currencyRate(fetcher.DaySnapshot{})
	if missing.USDTWD != 32.5 || missing.Trend != "Stable" {
		t.Errorf("missing quote fallback wrong: %+v", missing)
	}
}

func TestFetchIndexHistory_DedupeAndWindow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Same payload for both month queries: the overlap must collapse.
		w.Write([]byte(`{
			"stat": "OK",
			"data": [
				["115/02/05", "9,000,000,000", "500,000,000,000", "2,000,000", "23,400.00", "-50.00"],
				["115/02/06", "9,100,000,000", "520,000,000,000", "2,100,000", "23,500.00", "100.00"]
			]
		}`))
	}))
	defer srv.Close()

	u := testUpdater(srv.URL, srv.URL)
	history := u.fetchIndexHistory(context.Background())

	if len(history) != 2 {
		t.Fatalf("expected 2 deduplicated days, got %d", len(history))
	}
	if history[0].Date != "2026-02-05" || history[1].Date != "2026-02-06" {
		t.Errorf("history not chronological: %+v", history)
	}
	latest := history[1]
	if latest.Close != 23500 {
		t.Errorf("close = %v", latest.Close)
	}
	if latest.Volume != 5200 {
		t.Errorf("turnover should be reported in 1e8 TWD: got %v", latest.Volume)
	}
	if latest.Change != 100 {
		t.Errorf("change = %v", latest.Change)
	}
}

func TestFetchInstitutional_DealerLinesSummed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"stat": "OK",
			"data": [
				["自營商(自行買賣)", "1", "1", "2,000,000,000"],
				["自營商(避險)", "1", "1", "3,000,000,000"],
				["投信", "1", "1", "5,500,000,000"],
				["外資及陸資(不含外資自營商)", "1", "1", "-12,300,000,000"]
			]
		}`))
	}))
	defer srv.Close()

	u := testUpdater(srv.URL, srv.URL)
	inst := u.fetchInstitutional(context.Background(), "2026-02-06")

	if len(inst) != 3 {
		t.Fatalf("expected 3 investor classes, got %d", len(inst))
	}
	byName := map[string]float64{}
	for _, class := range inst {
		byName[class.Name] = class.Net
	}
	if byName["外資"] != -123 {
		t.Errorf("foreign net = %v, want -123 (1e8 TWD)", byName["外資"])
	}
	if byName["投信"] != 55 {
		t.Errorf("trust net = %v, want 55", byName["投信"])
	}
	if byName["自營商"] != 50 {
		t.Errorf("dealer lines should sum: got %v, want 50", byName["自營商"])
	}
}

func TestFetchSectorFlow_TopFivePlusRemainder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"stat": "OK",
			"data": [
				["發行量加權股價指數", "1", "1,000,000,000"],
				["半導體類", "1", "400,000,000"],
				["電腦及週邊設備類", "1", "200,000,000"],
				["金融保險類", "1", "150,000,000"],
				["航運類", "1", "100,000,000"],
				["電子零組件類", "1", "80,000,000"],
				["光電類", "1", "40,000,000"],
				["鋼鐵類", "1", "30,000,000"]
			]
		}`))
	}))
	defer srv.Close()

	u := testUpdater(srv.URL, srv.URL)
	flow := u.fetchSectorFlow(context.Background())

	if len(flow) != 6 {
		t.Fatalf("expected top 5 + remainder, got %d entries", len(flow))
	}
	if flow[0].Name != "半導體" {
		t.Errorf("top sector = %q, the 類 suffix should be stripped", flow[0].Name)
	}
	if flow[5].Name != "其他" {
		t.Errorf("last entry should be the remainder bucket, got %q", flow[5].Name)
	}
	for _, s := range flow[:5] {
		if s.Name == "發行量加權股價指數" {
			t.Error("composite index rows must be excluded")
		}
	}
}

func TestFetchFuturesOI_ForeignTXRow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><table>
			<tr><td>1</td><td>臺股期貨</td><td>自營商</td><td>0</td><td>0</td><td>0</td><td>0</td><td>0</td><td>0</td><td>0</td><td>0</td><td>0</td><td>0</td><td>1,111</td><td>0</td></tr>
			<tr><td>1</td><td>小型臺指期貨</td><td>外資</td><td>0</td><td>0</td><td>0</td><td>0</td><td>0</td><td>0</td><td>0</td><td>0</td><td>0</td><td>0</td><td>9,999</td><td>0</td></tr>
			<tr><td>1</td><td>臺股期貨</td><td>外資</td><td>0</td><td>0</td><td>0</td><td>0</td><td>0</td><td>0</td><td>0</td><td>0</td><td>0</td><td>0</td><td>-21,500</td><td>0</td></tr>
		</table></body></html>`))
	}))
	defer srv.Close()

	u := testUpdater(srv.URL, srv.URL)
	oi, err := u.fetchFuturesOI(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if oi != -21500 {
		t.Errorf("net OI = %d, want -21500 from the full-size foreign row", oi)
	}

	chips := u.fetchFuturesChips(context.Background())
	if chips.FuturesStatus != "Bearish" || chips.FuturesColor != "green" {
		t.Errorf("net short should read Bearish/green: %+v", chips)
	}
}

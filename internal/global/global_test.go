package global

import (
	"testing"
	"time"

	"MarketRadar/internal/fetcher"
	"MarketRadar/internal/model"
)

func TestSympathySignal(t *testing.T) {
	tests := []struct {
		name   string
		us, tw float64
		want   string
	}{
		{"us flies tw sleeps", 3.5, 0.2, "Lagging (Buy?)"},
		{"both rally", 2.5, 2.8, "Sympathy Rally"},
		{"us selloff", -2.5, 1.0, "Risk Alert"},
		{"quiet", 0.5, 0.3, "Neutral"},
		{"us up tw mid", 2.5, 1.5, "Neutral"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sympathySignal(tt.us, tt.tw); got != tt.want {
				t.Errorf("sympathySignal(%v, %v) = %q, want %q", tt.us, tt.tw, got, tt.want)
			}
		})
	}
}

func TestEventStatus(t *testing.T) {
	evt := model.TechEvent{Date: "2026-03-18", EndDate: "2026-03-21"}
	day := func(s string) time.Time {
		d, _ := time.Parse("2006-01-02", s)
		return d
	}
	tests := []struct {
		today string
		want  string
	}{
		{"2026-02-01", "Upcoming"},
		{"2026-03-05", "Imminent"},
		{"2026-03-18", "Ongoing"},
		{"2026-03-21", "Ongoing"},
		{"2026-03-22", "Finished"},
	}
	for _, tt := range tests {
		today := day(tt.today)
		daysToStart := int(day(evt.Date).Sub(today).Hours() / 24)
		if got := eventStatus(evt, today, daysToStart); got != tt.want {
			t.Errorf("on %s: status = %q, want %q", tt.today, got, tt.want)
		}
	}
}

func TestEnrichEvent(t *testing.T) {
	evt := model.TechEvent{
		Event:   "NVIDIA GTC 大會 2026",
		Date:    "2026-03-18",
		EndDate: "2026-03-21",
		SupplyChain: []model.SupplyChainGroup{
			{USSymbol: "NVDA", USName: "輝達", TWTickers: []string{"2330", "2382"}, TWSector: "AI 伺服器"},
		},
	}
	today, _ := time.Parse("2006-01-02", "2026-02-06")
	prices := map[string]fetcher.DaySnapshot{
		"NVDA": {Price: 1250.123, ChangePct: 3.456},
		"2330": {Price: 1050, ChangePct: 0.5},
		// 2382 intentionally missing: zero-value enrichment.
	}

	out := enrichEvent(evt, today, prices)

	if out.Status != "Upcoming" || out.DaysToGo != 40 {
		t.Errorf("status/days = %q/%d", out.Status, out.DaysToGo)
	}
	if len(out.Chains) != 1 {
		t.Fatalf("chains = %d", len(out.Chains))
	}
	chain := out.Chains[0]
	if chain.USStock.Price != 1250.12 || chain.USStock.Change != 3.46 {
		t.Errorf("us anchor should be rounded: %+v", chain.USStock)
	}
	if len(chain.TWStocks) != 2 {
		t.Fatalf("tw stocks = %d", len(chain.TWStocks))
	}
	if chain.TWStocks[0].Signal != "Lagging (Buy?)" {
		t.Errorf("2330 signal = %q", chain.TWStocks[0].Signal)
	}
	if chain.TWStocks[1].Price != 0 {
		t.Errorf("missing price should stay 0: %+v", chain.TWStocks[1])
	}
}

func TestCalendar_ParsesAndCarriesChains(t *testing.T) {
	for _, evt := range eventCalendar {
		if _, err := time.Parse("2006-01-02", evt.Date); err != nil {
			t.Errorf("event %q: bad start date %q", evt.Event, evt.Date)
		}
		if _, err := time.Parse("2006-01-02", evt.EndDate); err != nil {
			t.Errorf("event %q: bad end date %q", evt.Event, evt.EndDate)
		}
		if len(evt.SupplyChain) == 0 {
			t.Errorf("event %q has no supply chain", evt.Event)
		}
		for _, group := range evt.SupplyChain {
			if group.USSymbol == "" || len(group.TWTickers) == 0 {
				t.Errorf("event %q: incomplete group %+v", evt.Event, group)
			}
		}
	}
}

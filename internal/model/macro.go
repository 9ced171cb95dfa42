package model

// IndexDay is one day of TAIEX history.
type IndexDay struct {
	Date   string  `json:"date"` // "2026-02-06"
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"` // turnover in 1e8 TWD
	Change float64 `json:"change"` // points vs previous close
}

// InstitutionalNet is one investor class's net buy for the whole market.
type InstitutionalNet struct {
	Name string  `json:"name"`
	Net  float64 `json:"net"` // 1e8 TWD
}

// MarketStatus summarizes the latest TAIEX session.
type MarketStatus struct {
	TaiexClose    float64 `json:"taiex_close"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Volume        float64 `json:"volume"`
}

// FuturesChips is the foreign net open interest on the TX contract.
type FuturesChips struct {
	FuturesNetOI  int64  `json:"futures_net_oi"`
	FuturesStatus string `json:"futures_status"` // "Bullish" / "Bearish"
	FuturesColor  string `json:"futures_color"`  // "red" / "green"
}

// CurrencyRate is the USD/TWD spot.
type CurrencyRate struct {
	USDTWD float64 `json:"usd_twd"`
	Trend  string  `json:"trend"` // "Appreciating" / "Depreciating" / "Stable"
}

// SectorShare is one sector's share of total turnover.
type SectorShare struct {
	Name  string  `json:"name"`
	Ratio float64 `json:"ratio"` // percent of total turnover
	Trend string  `json:"trend"` // "Hot" / "Normal" / "Cool"
}

// MacroSnapshot is the secondary persisted document: one macro-market record.
type MacroSnapshot struct {
	LastUpdated   string             `json:"last_updated"`
	MarketStatus  MarketStatus       `json:"market_status"`
	History       []IndexDay         `json:"history"`
	Institutional []InstitutionalNet `json:"institutional"`
	Chips         FuturesChips       `json:"chips"`
	Currency      CurrencyRate       `json:"currency"`
	SectorFlow    []SectorShare      `json:"sector_flow"`
}

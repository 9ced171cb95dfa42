package model

// SupplyChainGroup links a US anchor stock to its Taiwan supply chain.
type SupplyChainGroup struct {
	USSymbol  string   `json:"us_symbol"`
	USName    string   `json:"us_name"`
	TWTickers []string `json:"tw_tickers"`
	TWSector  string   `json:"tw_sector"`
}

// TechEvent is one calendar entry before price enrichment.
type TechEvent struct {
	Event       string             `json:"event"`
	Date        string             `json:"date"` // "2026-03-18"
	EndDate     string             `json:"end_date"`
	Theme       string             `json:"theme"`
	Description string             `json:"description"`
	SupplyChain []SupplyChainGroup `json:"-"`
}

// PriceChange is a batch-fetched last price and day change percent.
type PriceChange struct {
	Price  float64 `json:"price"`
	Change float64 `json:"change"`
}

// TWStockSignal is a Taiwan ticker with its sympathy signal vs the US anchor.
type TWStockSignal struct {
	Ticker string  `json:"ticker"`
	Price  float64 `json:"price"`
	Change float64 `json:"change"`
	Signal string  `json:"signal"`
}

// EnrichedChain is one supply-chain group after price enrichment.
type EnrichedChain struct {
	USStock  USStock         `json:"us_stock"`
	TWSector string          `json:"tw_sector"`
	TWStocks []TWStockSignal `json:"tw_stocks"`
}

// USStock is the enriched US anchor.
type USStock struct {
	Symbol string  `json:"symbol"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	Change float64 `json:"change"`
}

// EnrichedEvent is a calendar entry with status and price-enriched chains.
type EnrichedEvent struct {
	Event       string          `json:"event"`
	Date        string          `json:"date"`
	EndDate     string          `json:"end_date"`
	Theme       string          `json:"theme"`
	Description string          `json:"description"`
	Status      string          `json:"status"` // Upcoming / Imminent / Ongoing / Finished
	DaysToGo    int             `json:"days_to_go"`
	Chains      []EnrichedChain `json:"chains"`
}

// GlobalSnapshot is the persisted global-intelligence document.
type GlobalSnapshot struct {
	LastUpdated string          `json:"last_updated"`
	Events      []EnrichedEvent `json:"events"`
}

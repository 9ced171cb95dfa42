package model

// Market identifies which exchange a ticker trades on. It drives the
// quote-symbol suffix (.TW vs .TWO) and is not persisted.
type Market string

const (
	MarketTWSE Market = "twse"
	MarketTPEX Market = "tpex"
)

// Chip is one ticker's institutional flow as fetched, plus its market origin.
type Chip struct {
	Name       string
	ForeignNet int64 // net buy lots, foreign institutional
	TrustNet   int64 // net buy lots, domestic trust
	Market     Market
}

// ChipMap is keyed by 4-character ticker.
type ChipMap map[string]Chip

// InstitutionalFlow is the persisted chips section of a record.
type InstitutionalFlow struct {
	Name       string `json:"name,omitempty"`
	ForeignNet int64  `json:"foreign_net"`
	TrustNet   int64  `json:"trust_net"`
}

// RevenuePoint is one month of revenue in raw dollars.
type RevenuePoint struct {
	Month   string  `json:"date"` // "2026-02"
	Revenue float64 `json:"revenue"`
}

// RevenueStats holds the derived percentages for the most recent month.
type RevenueStats struct {
	MoM float64
	YoY float64
}

// RevenueSummary is the persisted revenue section: latest point, derived
// stats, and the trailing history oldest to newest.
type RevenueSummary struct {
	Date    string         `json:"date"`
	Revenue float64        `json:"revenue"`
	MoM     float64        `json:"mom"`
	YoY     float64        `json:"yoy"`
	History []RevenuePoint `json:"history"`
}

// Quote is a single ticker's live price and trailing P/E. TrailingPE is 0
// when no variant of the fallback chain produced one.
type Quote struct {
	Price      float64
	TrailingPE float64
}

// Valuation status buckets.
const (
	StatusHighPremium = "High Premium"
	StatusUndervalued = "Undervalued"
	StatusFairValue   = "Fair Value"
	StatusUnknown     = "N/A"
)

// Valuation is the derived P/E positioning of a ticker.
type Valuation struct {
	StockID   string  `json:"stock_id"`
	CurrentPE float64 `json:"current_pe"`
	SectorPE  float64 `json:"sector_pe"`
	PEScore   float64 `json:"pe_score"`
	Status    string  `json:"status"`
	Price     float64 `json:"price"`
}

// MergedRecord is the unit of persistence: one ticker's merged view across
// the quote, revenue and chips sources.
type MergedRecord struct {
	StockID   string            `json:"stock_id"`
	StockName string            `json:"stock_name"`
	Valuation Valuation         `json:"valuation"`
	Revenue   RevenueSummary    `json:"revenue"`
	Chips     InstitutionalFlow `json:"chips"`
}

// Snapshot is the full keyed record set, the sole persisted artifact of the
// stock updater.
type Snapshot map[string]*MergedRecord

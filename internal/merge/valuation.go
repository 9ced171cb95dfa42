package merge

import (
	"MarketRadar/internal/model"
	"MarketRadar/internal/sanitize"
)

// PE score thresholds for the valuation buckets.
const (
	premiumThreshold     = 1.2
	undervaluedThreshold = 0.8
)

// ComputeValuation derives the P/E positioning of a ticker against the
// sector constant. A non-positive price or an unresolvable P/E yields the
// Unknown status; the score stays 0.
func ComputeValuation(ticker string, q model.Quote, sectorPE float64) model.Valuation {
	price := sanitize.Float(q.Price)
	pe := sanitize.Float(q.TrailingPE)

	v := model.Valuation{
		StockID:   ticker,
		CurrentPE: sanitize.Round(pe, 2),
		SectorPE:  sanitize.Float(sectorPE),
		Status:    model.StatusUnknown,
		Price:     sanitize.Round(price, 1),
	}
	if price <= 0 {
		return v
	}
	if pe > 0 && sectorPE > 0 {
		score := pe / sectorPE
		v.PEScore = sanitize.Round(score, 2)
		switch {
		case score > premiumThreshold:
			v.Status = model.StatusHighPremium
		case score < undervaluedThreshold:
			v.Status = model.StatusUndervalued
		default:
			v.Status = model.StatusFairValue
		}
	}
	return v
}

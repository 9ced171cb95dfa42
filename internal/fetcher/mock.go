package fetcher

import (
	"context"

	"MarketRadar/internal/model"
)

// MockChips returns controllable fixed data for development and testing.
type MockChips struct {
	Chips model.ChipMap
}

func (m *MockChips) Name() string { return "mock-chips" }

func (m *MockChips) FetchChips(_ context.Context) model.ChipMap {
	if m.Chips == nil {
		return model.ChipMap{}
	}
	return m.Chips
}

// MockRevenue returns fixed revenue history for testing.
type MockRevenue struct {
	History map[string][]model.RevenuePoint
	Stats   map[string]model.RevenueStats
}

func (m *MockRevenue) Name() string { return "mock-revenue" }

func (m *MockRevenue) FetchRevenue(_ context.Context) (map[string][]model.RevenuePoint, map[string]model.RevenueStats) {
	hist := m.History
	if hist == nil {
		hist = map[string][]model.RevenuePoint{}
	}
	stats := m.Stats
	if stats == nil {
		stats = map[string]model.RevenueStats{}
	}
	return hist, stats
}

// MockQuotes returns fixed quotes for testing.
type MockQuotes struct {
	Quotes map[string]model.Quote
}

func (m *MockQuotes) Name() string { return "mock-quotes" }

func (m *MockQuotes) FetchQuotes(_ context.Context, _ []string, _ map[string]model.Market) map[string]model.Quote {
	if m.Quotes == nil {
		return map[string]model.Quote{}
	}
	return m.Quotes
}

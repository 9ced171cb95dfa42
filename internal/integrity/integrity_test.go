package integrity

import (
	"errors"
	"testing"

	"MarketRadar/internal/model"
)

func snapshotOf(n int, canaryPrice float64) model.Snapshot {
	snap := make(model.Snapshot, n)
	tickers := []string{"2330", "2317", "2454", "2603", "2881", "8069"}
	for i := 0; i < n && i < len(tickers); i++ {
		code := tickers[i]
		price := 100.0
		if code == "2330" {
			price = canaryPrice
		}
		snap[code] = &model.MergedRecord{
			StockID:   code,
			Valuation: model.Valuation{StockID: code, Price: price},
		}
	}
	return snap
}

func TestCheck_Accepts(t *testing.T) {
	gate := Gate{MinRecords: 5, CanaryTicker: "2330"}
	if err := gate.Check(snapshotOf(5, 1050)); err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
}

func TestCheck_TooFewRecords(t *testing.T) {
	gate := Gate{MinRecords: 5, CanaryTicker: "2330"}
	err := gate.Check(snapshotOf(4, 1050))
	if !errors.Is(err, ErrTooFewRecords) {
		t.Fatalf("want ErrTooFewRecords, got %v", err)
	}
}

func TestCheck_CountBeforeCanary(t *testing.T) {
	// A snapshot failing both checks reports the count failure.
	gate := Gate{MinRecords: 5, CanaryTicker: "2330"}
	err := gate.Check(snapshotOf(3, 0))
	if !errors.Is(err, ErrTooFewRecords) {
		t.Fatalf("want ErrTooFewRecords first, got %v", err)
	}
}

func TestCheck_CanaryMissing(t *testing.T) {
	gate := Gate{MinRecords: 5, CanaryTicker: "2330"}
	snap := snapshotOf(5, 1050)
	delete(snap, "2330")
	snap["5347"] = &model.MergedRecord{StockID: "5347", Valuation: model.Valuation{Price: 50}}

	err := gate.Check(snap)
	if !errors.Is(err, ErrCanaryInvalid) {
		t.Fatalf("want ErrCanaryInvalid, got %v", err)
	}
}

func TestCheck_CanaryZeroPrice(t *testing.T) {
	gate := Gate{MinRecords: 5, CanaryTicker: "2330"}
	err := gate.Check(snapshotOf(5, 0))
	if !errors.Is(err, ErrCanaryInvalid) {
		t.Fatalf("want ErrCanaryInvalid, got %v", err)
	}
}

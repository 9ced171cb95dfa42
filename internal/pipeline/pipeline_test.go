package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"MarketRadar/internal/fetcher"
	"MarketRadar/internal/integrity"
	"MarketRadar/internal/merge"
	"MarketRadar/internal/model"
	"MarketRadar/internal/store"
)

func testRunner(t *testing.T, chips model.ChipMap, quotes map[string]model.Quote) *Runner {
	t.Helper()
	return &Runner{
		Store:   store.NewSnapshotStore(filepath.Join(t.TempDir(), "stock_data.json")),
		TWSE:    &fetcher.MockChips{Chips: chips},
		TPEX:    &fetcher.MockChips{},
		Revenue: &fetcher.MockRevenue{},
		Quotes:  &fetcher.MockQuotes{Quotes: quotes},
		Gate:    integrity.Gate{MinRecords: 2, CanaryTicker: "2330"},
		Options: merge.Options{
			SectorPE:     20,
			CanaryTicker: "2330",
			ChipFloor:    0,
		},
		MaxAge: 12 * time.Hour,
	}
}

func healthyInputs() (model.ChipMap, map[string]model.Quote) {
	chips := model.ChipMap{
		"2330": {Name: "台積電", ForeignNet: 12500, TrustNet: 3500, Market: model.MarketTWSE},
		"2317": {Name: "鴻海", ForeignNet: 2000, Market: model.MarketTWSE},
	}
	quotes := map[string]model.Quote{
		"2330": {Price: 1050, TrailingPE: 28.5},
		"2317": {Price: 180, TrailingPE: 11},
	}
	return chips, quotes
}

func TestRun_PersistsAcceptedSnapshot(t *testing.T) {
	chips, quotes := healthyInputs()
	r := testRunner(t, chips, quotes)

	outcome, err := r.Run(context.Background(), true)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if outcome != OutcomeUpdated {
		t.Fatalf("outcome = %v, want OutcomeUpdated", outcome)
	}

	snap, err := r.Store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(snap) != 2 {
		t.Fatalf("persisted %d records, want 2", len(snap))
	}
	if snap["2330"].Valuation.Price != 1050 {
		t.Errorf("canary price = %v", snap["2330"].Valuation.Price)
	}
}

func TestRun_RejectedCandidateLeavesStoreUntouched(t *testing.T) {
	r := testRunner(t, nil, nil)
	r.Options.FallbackTickers = nil

	// Seed a store that is already below the record minimum. An empty fetch
	// can only carry it forward, so the candidate fails the count check.
	seed := model.Snapshot{
		"2330": {StockID: "2330", StockName: "台積電", Valuation: model.Valuation{StockID: "2330", Price: 1000}},
	}
	if err := r.Store.Save(seed); err != nil {
		t.Fatal(err)
	}

	outcome, err := r.Run(context.Background(), true)
	if outcome != OutcomeRejected {
		t.Fatalf("outcome = %v, want OutcomeRejected", outcome)
	}
	if !errors.Is(err, ErrGateRejected) {
		t.Fatalf("want ErrGateRejected, got %v", err)
	}

	after, err := r.Store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(after) != 1 || after["2330"].Valuation.Price != 1000 {
		t.Fatalf("store mutated by rejected run: %+v", after)
	}
}

func TestRun_FreshStoreSkips(t *testing.T) {
	chips, quotes := healthyInputs()
	r := testRunner(t, chips, quotes)

	if _, err := r.Run(context.Background(), true); err != nil {
		t.Fatal(err)
	}

	// Swap in fetchers that would fail if consulted.
	r.TWSE = &fetcher.MockChips{}
	r.Quotes = &fetcher.MockQuotes{}

	outcome, err := r.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("fresh skip must not error: %v", err)
	}
	if outcome != OutcomeSkippedFresh {
		t.Fatalf("outcome = %v, want OutcomeSkippedFresh", outcome)
	}
}

func TestRun_ForceBypassesFreshness(t *testing.T) {
	chips, quotes := healthyInputs()
	r := testRunner(t, chips, quotes)

	if _, err := r.Run(context.Background(), true); err != nil {
		t.Fatal(err)
	}
	outcome, err := r.Run(context.Background(), true)
	if err != nil {
		t.Fatalf("forced rerun: %v", err)
	}
	if outcome != OutcomeUpdated {
		t.Fatalf("outcome = %v, want OutcomeUpdated", outcome)
	}
}

func TestRun_EmptyBaseWithDegradedFetchIsRejected(t *testing.T) {
	// First-ever run with nothing fetched: only the injected canary record
	// exists, below MinRecords. The store file must not be created.
	r := testRunner(t, nil, nil)
	r.Options.FallbackTickers = nil

	outcome, err := r.Run(context.Background(), true)
	if outcome != OutcomeRejected || !errors.Is(err, ErrGateRejected) {
		t.Fatalf("outcome = %v err = %v, want rejection", outcome, err)
	}
	if _, exists := r.Store.Age(); exists {
		t.Error("rejected first run must not create the store file")
	}
}

// Package pipeline orchestrates one update run: freshness check, the three
// fetch phases, merge, the integrity gate, and the atomic store write.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"MarketRadar/internal/fetcher"
	"MarketRadar/internal/integrity"
	"MarketRadar/internal/merge"
	"MarketRadar/internal/model"
	"MarketRadar/internal/notifier"
	"MarketRadar/internal/recorder"
	"MarketRadar/internal/store"
)

// Outcome classifies how a run ended, for process exit codes.
type Outcome int

const (
	// OutcomeUpdated means the candidate was accepted and persisted.
	OutcomeUpdated Outcome = iota
	// OutcomeSkippedFresh means the store was still fresh and nothing was fetched.
	OutcomeSkippedFresh
	// OutcomeRejected means the candidate failed the gate; the store is untouched.
	OutcomeRejected
)

// ErrGateRejected wraps the gate failure so callers can map it to an exit
// code while still logging the underlying reason.
var ErrGateRejected = errors.New("candidate snapshot rejected")

// Runner wires the fetchers, merge, gate and store into one run.
type Runner struct {
	Store    *store.SnapshotStore
	TWSE     fetcher.ChipSource
	TPEX     fetcher.ChipSource
	Revenue  fetcher.RevenueSource
	Quotes   fetcher.QuoteSource
	Gate     integrity.Gate
	Options  merge.Options
	MaxAge   time.Duration
	Recorder recorder.Recorder
	Notifier *notifier.TelegramNotifier
}

// Run executes one update. force bypasses the freshness check; a fresh
// store otherwise short-circuits the whole run.
func (r *Runner) Run(ctx context.Context, force bool) (Outcome, error) {
	if !force && r.Store.Fresh(r.MaxAge) {
		age, _ := r.Store.Age()
		log.Printf("[INFO] store is fresh (%s old), skipping update", age.Round(time.Minute))
		return OutcomeSkippedFresh, nil
	}
	started := time.Now()

	base, err := r.Store.Load()
	if err != nil {
		return OutcomeRejected, fmt.Errorf("load prior snapshot: %w", err)
	}
	log.Printf("[INFO] prior snapshot: %d records", len(base))

	chips := fetcher.MergeChips(r.TWSE.FetchChips(ctx), r.TPEX.FetchChips(ctx))
	history, stats := r.Revenue.FetchRevenue(ctx)

	in := merge.Inputs{Chips: chips, History: history, Stats: stats}
	tickers := merge.CandidateTickers(in, r.Options)
	markets := make(map[string]model.Market, len(chips))
	for code, chip := range chips {
		markets[code] = chip.Market
	}
	in.Quotes = r.Quotes.FetchQuotes(ctx, tickers, markets)

	candidate := merge.Build(base, in, r.Options)

	evt := &recorder.RunEvent{
		Kind:         "stock",
		Records:      len(candidate),
		ChipTickers:  len(chips),
		QuoteTickers: len(in.Quotes),
		DurationMS:   time.Since(started).Milliseconds(),
	}

	if err := r.Gate.Check(candidate); err != nil {
		evt.Reason = err.Error()
		r.record(evt)
		r.notify(notifier.FormatGateAlert(err.Error(), len(candidate)))
		return OutcomeRejected, fmt.Errorf("%w: %v", ErrGateRejected, err)
	}

	if err := r.Store.Save(candidate); err != nil {
		evt.Reason = err.Error()
		r.record(evt)
		return OutcomeRejected, fmt.Errorf("save snapshot: %w", err)
	}

	evt.Accepted = true
	evt.DurationMS = time.Since(started).Milliseconds()
	r.record(evt)
	r.notify(notifier.FormatRunSummary(evt))
	log.Printf("[INFO] snapshot saved: %d records in %s", len(candidate), time.Since(started).Round(time.Second))
	return OutcomeUpdated, nil
}

func (r *Runner) record(evt *recorder.RunEvent) {
	if r.Recorder == nil {
		return
	}
	if err := r.Recorder.RecordRun(evt); err != nil {
		log.Printf("[ERROR] record run: %v", err)
	}
}

func (r *Runner) notify(text string) {
	if r.Notifier == nil || r.Notifier.BotToken == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := r.Notifier.SendWithRetry(ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}

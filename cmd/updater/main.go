package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"MarketRadar/internal/config"
	"MarketRadar/internal/fetcher"
	"MarketRadar/internal/global"
	"MarketRadar/internal/integrity"
	"MarketRadar/internal/macro"
	"MarketRadar/internal/merge"
	"MarketRadar/internal/notifier"
	"MarketRadar/internal/pipeline"
	"MarketRadar/internal/recorder"
	"MarketRadar/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	var (
		cfgPath   = flag.String("config", "configs/config.yaml", "config file path")
		force     = flag.Bool("force", false, "update even when the store is still fresh")
		runMacro  = flag.Bool("macro", false, "update the macro dashboard instead of the stock snapshot")
		runGlobal = flag.Bool("global", false, "update the global event dashboard instead of the stock snapshot")
	)
	flag.Parse()

	if v := os.Getenv("CONFIG_PATH"); v != "" && !isFlagSet("config") {
		*cfgPath = v
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Cancel on Ctrl+C so a hung scrape doesn't need a kill -9.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client := fetcher.NewClient(cfg.Proxy, time.Duration(cfg.Sources.TimeoutSeconds)*time.Second)
	quotes := fetcher.NewYahooQuotes(cfg.Sources.QuoteBaseURL, cfg.Sources.BatchSize, client)

	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	switch {
	case *runMacro:
		log.Println("[INFO] MarketRadar macro update starting...")
		u := macro.NewUpdater(cfg.Sources.TWSEBaseURL, cfg.Sources.TaifexBaseURL,
			cfg.Sources.TaifexOICol, cfg.Sources.ProbeDays, client, quotes)
		runDocumentUpdate(ctx, rec, "macro", cfg.Store.MacroPath, func(ctx context.Context) (any, error) {
			return u.Build(ctx)
		})
	case *runGlobal:
		log.Println("[INFO] MarketRadar global update starting...")
		u := global.NewUpdater(quotes)
		runDocumentUpdate(ctx, rec, "global", cfg.Store.GlobalPath, func(ctx context.Context) (any, error) {
			return u.Build(ctx)
		})
	default:
		log.Println("[INFO] MarketRadar stock update starting...")
		runStockUpdate(ctx, cfg, client, quotes, rec, *force)
	}
}

func runStockUpdate(ctx context.Context, cfg *config.Config, client *fetcher.Client, quotes *fetcher.YahooQuotes, rec recorder.Recorder, force bool) {
	runner := &pipeline.Runner{
		Store:   store.NewSnapshotStore(cfg.Store.StockPath),
		TWSE:    fetcher.NewTWSEChips(cfg.Sources.TWSEBaseURL, cfg.Sources.ProbeDays, client),
		TPEX:    fetcher.NewTPEXChips(cfg.Sources.TPEXBaseURL, cfg.Sources.ProbeDays, cfg.Sources.TPEXForeignCol, cfg.Sources.TPEXTrustCol, client),
		Revenue: fetcher.NewMOPSRevenue(cfg.Sources.MOPSBaseURL, cfg.Sources.AnchorMonths, cfg.Sources.HistoryMonths, client),
		Quotes:  quotes,
		Gate: integrity.Gate{
			MinRecords:   cfg.Pipeline.MinRecords,
			CanaryTicker: cfg.Pipeline.CanaryTicker,
		},
		Options: merge.Options{
			SectorPE:        cfg.Pipeline.SectorPE,
			CanaryTicker:    cfg.Pipeline.CanaryTicker,
			FallbackTickers: cfg.Pipeline.FallbackTickers,
			ChipFloor:       cfg.Pipeline.ChipFloor,
		},
		MaxAge:   time.Duration(cfg.Store.FreshnessHours * float64(time.Hour)),
		Recorder: rec,
	}
	if cfg.Telegram.BotToken != "" {
		runner.Notifier = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	}

	outcome, err := runner.Run(ctx, force)
	if err != nil {
		if errors.Is(err, pipeline.ErrGateRejected) {
			log.Printf("[ERROR] %v", err)
		} else {
			log.Printf("[ERROR] update failed: %v", err)
		}
		os.Exit(1)
	}
	if outcome == pipeline.OutcomeSkippedFresh {
		log.Println("[INFO] nothing to do")
	}
}

// runDocumentUpdate builds and persists one of the standalone dashboard
// documents, recording the run either way.
func runDocumentUpdate(ctx context.Context, rec recorder.Recorder, kind, path string, build func(context.Context) (any, error)) {
	started := time.Now()
	doc, err := build(ctx)
	evt := &recorder.RunEvent{Kind: kind, DurationMS: time.Since(started).Milliseconds()}
	if err != nil {
		evt.Reason = err.Error()
		recordRun(rec, evt)
		log.Printf("[ERROR] %s update failed: %v", kind, err)
		os.Exit(1)
	}
	if err := store.WriteDocument(path, doc); err != nil {
		evt.Reason = err.Error()
		recordRun(rec, evt)
		log.Printf("[ERROR] save %s document: %v", kind, err)
		os.Exit(1)
	}
	evt.Accepted = true
	evt.DurationMS = time.Since(started).Milliseconds()
	recordRun(rec, evt)
	log.Printf("[INFO] %s document saved to %s", kind, path)
}

func recordRun(rec recorder.Recorder, evt *recorder.RunEvent) {
	if err := rec.RecordRun(evt); err != nil {
		log.Printf("[ERROR] record run: %v", err)
	}
}

func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

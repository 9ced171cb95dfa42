package main

import (
	"context"
	"errors"
	"log"
	"net/http"
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
	"MarketRadar/internal/report"
	"MarketRadar/internal/scheduler"
	"MarketRadar/internal/server"
	"MarketRadar/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] MarketRadar server starting...")

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	stocks := store.NewSnapshotStore(cfg.Store.StockPath)
	if _, exists := stocks.Age(); !exists {
		log.Printf("[WARN] %s not found, run the updater first", cfg.Store.StockPath)
	}

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

	engine := report.NewEngine(cfg.Report.GeminiAPIKey, cfg.Report.GeminiModel,
		time.Duration(cfg.Report.TimeoutSeconds)*time.Second)
	log.Printf("[INFO] report strategy: %s", engine.Strategy())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := startScheduler(ctx, cfg, stocks, rec); err != nil {
		log.Fatalf("[FATAL] %v", err)
	}

	srv := &server.Server{
		Stocks:     stocks,
		MacroPath:  cfg.Store.MacroPath,
		GlobalPath: cfg.Store.GlobalPath,
		Engine:     engine,
		Recorder:   rec,
	}
	if err := srv.ListenAndServe(ctx, cfg.HTTP.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("[FATAL] serve: %v", err)
	}
	log.Println("[INFO] MarketRadar server stopped")
}

// startScheduler wires the in-process cron tasks. All three schedules are
// optional; with none configured the server stays purely read-only and the
// updater binary owns all writes.
func startScheduler(ctx context.Context, cfg *config.Config, stocks *store.SnapshotStore, rec recorder.Recorder) error {
	if cfg.Schedule.UpdateCron == "" && cfg.Schedule.MacroCron == "" && cfg.Schedule.GlobalCron == "" {
		return nil
	}

	client := fetcher.NewClient(cfg.Proxy, time.Duration(cfg.Sources.TimeoutSeconds)*time.Second)
	quotes := fetcher.NewYahooQuotes(cfg.Sources.QuoteBaseURL, cfg.Sources.BatchSize, client)

	runner := &pipeline.Runner{
		Store:   stocks,
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
	macroUpdater := macro.NewUpdater(cfg.Sources.TWSEBaseURL, cfg.Sources.TaifexBaseURL,
		cfg.Sources.TaifexOICol, cfg.Sources.ProbeDays, client, quotes)
	globalUpdater := global.NewUpdater(quotes)

	sched := scheduler.NewScheduler(ctx)
	err := sched.Register("stock", cfg.Schedule.UpdateCron, func(ctx context.Context) {
		if _, err := runner.Run(ctx, false); err != nil {
			log.Printf("[ERROR] scheduled stock update: %v", err)
		}
	})
	if err != nil {
		return err
	}
	err = sched.Register("macro", cfg.Schedule.MacroCron, func(ctx context.Context) {
		doc, err := macroUpdater.Build(ctx)
		if err != nil {
			log.Printf("[ERROR] scheduled macro update: %v", err)
			return
		}
		if err := store.WriteDocument(cfg.Store.MacroPath, doc); err != nil {
			log.Printf("[ERROR] save macro document: %v", err)
		}
	})
	if err != nil {
		return err
	}
	err = sched.Register("global", cfg.Schedule.GlobalCron, func(ctx context.Context) {
		doc, err := globalUpdater.Build(ctx)
		if err != nil {
			log.Printf("[ERROR] scheduled global update: %v", err)
			return
		}
		if err := store.WriteDocument(cfg.Store.GlobalPath, doc); err != nil {
			log.Printf("[ERROR] save global document: %v", err)
		}
	})
	if err != nil {
		return err
	}

	sched.Start()
	go func() {
		<-ctx.Done()
		sched.Stop()
	}()
	return nil
}

// Package server exposes the persisted documents over a read-only HTTP API.
// Handlers never mutate the stores; updates happen out of process (or on the
// in-process schedule) through the pipeline.
package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"MarketRadar/internal/model"
	"MarketRadar/internal/recorder"
	"MarketRadar/internal/report"
	"MarketRadar/internal/store"
)

const httpShutdownTimeout = 10 * time.Second

// Server serves the dashboard endpoints.
type Server struct {
	Stocks     *store.SnapshotStore
	MacroPath  string
	GlobalPath string
	Engine     *report.Engine
	Recorder   recorder.Recorder
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /dashboard/{query}", s.handleDashboard)
	mux.HandleFunc("GET /macro/dashboard", s.documentHandler(s.MacroPath, map[string]any{
		"status": "No Data",
		"note":   "run the macro updater first",
	}))
	mux.HandleFunc("GET /global/dashboard", s.documentHandler(s.GlobalPath, map[string]any{
		"status": "No Data",
		"events": []any{},
	}))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"})
	})
	return mux
}

type dashboardResponse struct {
	StockID   string                  `json:"stock_id"`
	StockName string                  `json:"stock_name"`
	Valuation model.Valuation         `json:"valuation"`
	Revenue   model.RevenueSummary    `json:"revenue"`
	Chips     model.InstitutionalFlow `json:"chips"`
	Analysis  model.Report            `json:"analysis"`
}

// handleDashboard resolves the query as a ticker first, then as a name
// substring, and attaches a freshly generated report. An unknown query is a
// 200 with an explicit no-data shape, not a 404; the frontend renders it.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	query := r.PathValue("query")

	snap, err := s.Stocks.Load()
	if err != nil {
		log.Printf("[ERROR] load snapshot: %v", err)
		http.Error(w, "snapshot unavailable", http.StatusInternalServerError)
		return
	}

	rec := resolveRecord(snap, query)
	if rec == nil {
		writeJSON(w, map[string]any{
			"stock_id":  query,
			"valuation": nil,
			"revenue":   nil,
			"note":      "no data",
		})
		return
	}

	analysis := s.Engine.Generate(r.Context(), rec)
	s.recordReport(rec.StockID, analysis)

	writeJSON(w, dashboardResponse{
		StockID:   rec.StockID,
		StockName: rec.StockName,
		Valuation: rec.Valuation,
		Revenue:   rec.Revenue,
		Chips:     rec.Chips,
		Analysis:  analysis,
	})
}

// resolveRecord tries a direct ticker match, then a substring match on the
// stock name. Single-character queries only match exactly, so a lone CJK
// character doesn't hit half the market.
func resolveRecord(snap model.Snapshot, query string) *model.MergedRecord {
	if rec, ok := snap[query]; ok {
		return rec
	}
	for _, rec := range snap {
		if query == rec.StockName {
			return rec
		}
		if utf8.RuneCountInString(query) > 1 && strings.Contains(rec.StockName, query) {
			return rec
		}
	}
	return nil
}

// documentHandler serves a persisted JSON file verbatim, with a fallback
// body when the file does not exist yet.
func (s *Server) documentHandler(path string, fallback map[string]any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		data, err := store.ReadRaw(path)
		if err != nil {
			if os.IsNotExist(err) {
				writeJSON(w, fallback)
				return
			}
			log.Printf("[ERROR] read %s: %v", path, err)
			http.Error(w, "document unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Write(data)
	}
}

func (s *Server) recordReport(ticker string, rpt model.Report) {
	if s.Recorder == nil {
		return
	}
	err := s.Recorder.RecordReport(&recorder.ReportEvent{
		Ticker:   ticker,
		Score:    rpt.Score,
		Verdict:  rpt.Verdict,
		Strategy: s.Engine.Strategy(),
	})
	if err != nil {
		log.Printf("[ERROR] record report: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		log.Printf("[ERROR] encode response: %v", err)
	}
}

// ListenAndServe blocks serving the API until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[INFO] api listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

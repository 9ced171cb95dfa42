package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so the API process can read history while an updater writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS pipeline_runs (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			kind          TEXT,
			records       INTEGER,
			chip_tickers  INTEGER,
			quote_tickers INTEGER,
			accepted      INTEGER,
			reason        TEXT,
			duration_ms   INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON pipeline_runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS reports (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			ticker    TEXT,
			score     INTEGER,
			verdict   TEXT,
			strategy  TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_ts ON reports(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(evt *RunEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	accepted := 0
	if evt.Accepted {
		accepted = 1
	}
	_, err := r.db.Exec(`INSERT INTO pipeline_runs
		(timestamp, kind, records, chip_tickers, quote_tickers, accepted, reason, duration_ms)
		VALUES (?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), evt.Kind, evt.Records,
		evt.ChipTickers, evt.QuoteTickers,
		accepted, evt.Reason, evt.DurationMS,
	)
	return err
}

func (r *SQLiteRecorder) RecordReport(evt *ReportEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO reports
		(timestamp, ticker, score, verdict, strategy)
		VALUES (?,?,?,?,?)`,
		time.Now().Unix(), evt.Ticker, evt.Score, evt.Verdict, evt.Strategy,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}

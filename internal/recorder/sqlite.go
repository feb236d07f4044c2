package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"NovaInsights/internal/model"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists batch history to a SQLite database.
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

	// WAL mode so dashboards can read while a batch writes.
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
		`CREATE TABLE IF NOT EXISTS batch_runs (
			run_id      TEXT PRIMARY KEY,
			trigger     TEXT,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			summarized  INTEGER,
			skipped     INTEGER,
			columns     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON batch_runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS ticker_summaries (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id       TEXT NOT NULL,
			ticker       TEXT NOT NULL,
			bar_date     INTEGER NOT NULL,
			close        REAL,
			high_52w     REAL,
			low_52w      REAL,
			position_52w REAL,
			signal_score REAL,
			signal_tier  TEXT,
			indicators   TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_summaries_ticker ON ticker_summaries(ticker, bar_date)`,

		`CREATE TABLE IF NOT EXISTS skipped_tickers (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id  TEXT NOT NULL,
			ticker  TEXT NOT NULL,
			reason  TEXT,
			message TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_skipped_run ON skipped_tickers(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// nullFloat stores NaN as NULL.
func nullFloat(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

// RecordBatch writes the run, its summaries and its skipped tickers in
// one transaction.
func (r *SQLiteRecorder) RecordBatch(report *model.BatchReport, trigger model.TriggerType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	columns, err := json.Marshal(report.Columns)
	if err != nil {
		return fmt.Errorf("encode columns: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO batch_runs
		(run_id, trigger, started_at, finished_at, summarized, skipped, columns)
		VALUES (?,?,?,?,?,?,?)`,
		report.RunID, string(trigger), report.StartedAt.Unix(), report.FinishedAt.Unix(),
		len(report.Summaries), len(report.Skipped), string(columns),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, rec := range report.Summaries {
		values := make(map[string]float64, len(rec.Values))
		for k, v := range rec.Values {
			if !math.IsNaN(v) {
				values[k] = v
			}
		}
		indicators, err := json.Marshal(values)
		if err != nil {
			return fmt.Errorf("encode %s indicators: %w", rec.Ticker, err)
		}
		score, tier := math.NaN(), ""
		if sig, ok := report.Signals[rec.Ticker]; ok {
			score, tier = sig.TotalScore, sig.Tier.Label
		}
		if _, err := tx.Exec(`INSERT INTO ticker_summaries
			(run_id, ticker, bar_date, close, high_52w, low_52w, position_52w, signal_score, signal_tier, indicators)
			VALUES (?,?,?,?,?,?,?,?,?,?)`,
			report.RunID, rec.Ticker, rec.Date.Unix(), nullFloat(rec.Close),
			nullFloat(rec.High52w), nullFloat(rec.Low52w), nullFloat(rec.Position52w),
			nullFloat(score), tier, string(indicators),
		); err != nil {
			return fmt.Errorf("insert %s summary: %w", rec.Ticker, err)
		}
	}

	for _, s := range report.Skipped {
		if _, err := tx.Exec(`INSERT INTO skipped_tickers (run_id, ticker, reason, message) VALUES (?,?,?,?)`,
			report.RunID, s.Ticker, s.Reason, s.Message,
		); err != nil {
			return fmt.Errorf("insert %s skip: %w", s.Ticker, err)
		}
	}
	return tx.Commit()
}

// TickerHistory returns the most recent summaries of ticker, newest first.
func (r *SQLiteRecorder) TickerHistory(ticker string, limit int) ([]TickerPoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT run_id, bar_date, close, signal_score, signal_tier, indicators
		FROM ticker_summaries WHERE ticker = ? ORDER BY id DESC LIMIT ?`, ticker, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var points []TickerPoint
	for rows.Next() {
		var (
			p          TickerPoint
			barDate    int64
			close      sql.NullFloat64
			score      sql.NullFloat64
			tier       sql.NullString
			indicators string
		)
		if err := rows.Scan(&p.RunID, &barDate, &close, &score, &tier, &indicators); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		p.Date = time.Unix(barDate, 0).UTC()
		p.Close = orNaN(close)
		p.SignalScore = orNaN(score)
		p.SignalTier = tier.String
		if err := json.Unmarshal([]byte(indicators), &p.Indicators); err != nil {
			return nil, fmt.Errorf("decode indicators: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func orNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}

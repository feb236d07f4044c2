package model

import (
	"math"
	"time"
)

// SummaryRecord is the latest fully computed row of one ticker's frame.
type SummaryRecord struct {
	Ticker string
	Date   time.Time
	Close  float64
	// Names holds the tracked indicator columns in frame order; Values is
	// keyed by the same names.
	Names  []string
	Values map[string]float64

	High52w     float64
	Low52w      float64
	Position52w float64 // 0.0 ~ 1.0
}

// Get returns the named indicator value, or NaN when it is not tracked.
func (r *SummaryRecord) Get(name string) float64 {
	if v, ok := r.Values[name]; ok {
		return v
	}
	return math.NaN()
}

// SkippedTicker is one diagnostic entry for a ticker excluded from the
// summary table.
type SkippedTicker struct {
	Ticker  string
	Reason  string
	Message string
}

// BatchReport is the outcome of one batch run.
type BatchReport struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	// Columns is the summary table header (indicator names) shared by
	// every record.
	Columns   []string
	Summaries []SummaryRecord // sorted by ticker
	Skipped   []SkippedTicker // sorted by ticker
	Frames    map[string]*IndicatorFrame
	Signals   map[string]*TradeSignal
}

// Summary looks up the record for ticker.
func (r *BatchReport) Summary(ticker string) (*SummaryRecord, bool) {
	for i := range r.Summaries {
		if r.Summaries[i].Ticker == ticker {
			return &r.Summaries[i], true
		}
	}
	return nil, false
}

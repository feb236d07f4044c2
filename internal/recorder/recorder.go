package recorder

import (
	"time"

	"NovaInsights/internal/model"
)

// TickerPoint is one historical summary of a ticker.
type TickerPoint struct {
	RunID       string
	Date        time.Time
	Close       float64
	SignalScore float64
	SignalTier  string
	Indicators  map[string]float64
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordBatch(report *model.BatchReport, trigger model.TriggerType) error
	TickerHistory(ticker string, limit int) ([]TickerPoint, error)
	Close() error
}

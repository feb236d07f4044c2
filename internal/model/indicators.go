package model

import (
	"fmt"
	"math"
)

// Indicator column prefixes. Windowed indicators are suffixed with their
// period, e.g. SMA_20.
const (
	ColSMA        = "SMA"
	ColEMA        = "EMA"
	ColRSI        = "RSI"
	ColMACD       = "MACD"
	ColMACDSignal = "MACD_SIGNAL"
	ColMACDHist   = "MACD_HIST"
	ColATR        = "ATR"
	ColGrowth     = "GROWTH"
	ColVolatility = "VOL"
	ColMovAve     = "MOVAVE"
)

// ColumnName joins an indicator prefix and its window.
func ColumnName(prefix string, window int) string {
	return fmt.Sprintf("%s_%d", prefix, window)
}

// Column is one indicator series aligned index-for-index with the bars.
// Undefined (warm-up) entries are NaN. A frame's columns must not be
// modified once the pipeline returns it.
type Column struct {
	Name   string
	Values []float64
}

// IndicatorFrame is a PriceSeries enriched with indicator columns.
type IndicatorFrame struct {
	Series  *PriceSeries
	Columns []Column
	// Degraded lists columns filled with NaN because history was shorter
	// than their window.
	Degraded []string
}

// Len returns the number of rows.
func (f *IndicatorFrame) Len() int { return f.Series.Len() }

// Names returns the column names in frame order.
func (f *IndicatorFrame) Names() []string {
	names := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		names[i] = c.Name
	}
	return names
}

// Column returns a copy of the named column's values.
func (f *IndicatorFrame) Column(name string) ([]float64, bool) {
	vals, ok := f.values(name)
	if !ok {
		return nil, false
	}
	return append([]float64(nil), vals...), true
}

// Value returns the named column at row i, or NaN when the column is absent.
func (f *IndicatorFrame) Value(name string, i int) float64 {
	vals, ok := f.values(name)
	if !ok || i < 0 || i >= len(vals) {
		return math.NaN()
	}
	return vals[i]
}

func (f *IndicatorFrame) values(name string) ([]float64, bool) {
	for _, c := range f.Columns {
		if c.Name == name {
			return c.Values, true
		}
	}
	return nil, false
}

package model

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

var (
	// ErrEmptySeries indicates no bar with a usable close survived construction.
	ErrEmptySeries = errors.New("model: price series has no bars with a close price")
	// ErrDuplicateDate indicates two bars share the same date.
	ErrDuplicateDate = errors.New("model: duplicate bar date")
)

// OHLCV represents a single candlestick bar. Missing values are NaN.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceSeries holds the date-ordered daily bars of one ticker.
// It is immutable after NewPriceSeries returns.
type PriceSeries struct {
	Symbol string
	bars   []OHLCV
}

// NewPriceSeries copies bars, drops rows with a missing close and orders
// the rest by date. Dates must be unique.
func NewPriceSeries(symbol string, bars []OHLCV) (*PriceSeries, error) {
	kept := make([]OHLCV, 0, len(bars))
	for _, b := range bars {
		if math.IsNaN(b.Close) {
			continue
		}
		kept = append(kept, b)
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, ErrEmptySeries)
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Time.Before(kept[j].Time) })
	for i := 1; i < len(kept); i++ {
		if kept[i].Time.Equal(kept[i-1].Time) {
			return nil, fmt.Errorf("%s %s: %w", symbol, kept[i].Time.Format("2006-01-02"), ErrDuplicateDate)
		}
	}
	return &PriceSeries{Symbol: symbol, bars: kept}, nil
}

// Len returns the number of bars.
func (s *PriceSeries) Len() int { return len(s.bars) }

// Bar returns the i-th bar.
func (s *PriceSeries) Bar(i int) OHLCV { return s.bars[i] }

// Bars returns a copy of all bars.
func (s *PriceSeries) Bars() []OHLCV {
	out := make([]OHLCV, len(s.bars))
	copy(out, s.bars)
	return out
}

// Dates returns a copy of the bar dates.
func (s *PriceSeries) Dates() []time.Time {
	out := make([]time.Time, len(s.bars))
	for i, b := range s.bars {
		out[i] = b.Time
	}
	return out
}

// Opens, Highs, Lows, Closes and Volumes return a copy of one field per bar.
func (s *PriceSeries) Opens() []float64   { return s.column(func(b OHLCV) float64 { return b.Open }) }
func (s *PriceSeries) Highs() []float64   { return s.column(func(b OHLCV) float64 { return b.High }) }
func (s *PriceSeries) Lows() []float64    { return s.column(func(b OHLCV) float64 { return b.Low }) }
func (s *PriceSeries) Closes() []float64  { return s.column(func(b OHLCV) float64 { return b.Close }) }
func (s *PriceSeries) Volumes() []float64 { return s.column(func(b OHLCV) float64 { return b.Volume }) }

func (s *PriceSeries) column(pick func(OHLCV) float64) []float64 {
	out := make([]float64, len(s.bars))
	for i, b := range s.bars {
		out[i] = pick(b)
	}
	return out
}

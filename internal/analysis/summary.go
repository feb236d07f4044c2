package analysis

import (
	"errors"
	"fmt"
	"log"
	"math"

	"NovaInsights/internal/calculator"
	"NovaInsights/internal/model"
)

// ErrNoCompleteRow indicates no row of a frame has every tracked column defined.
var ErrNoCompleteRow = errors.New("analysis: no fully computed row")

// Summarize returns the last row of frame where every tracked column is
// defined. An empty tracked list means every column of the frame.
func Summarize(frame *model.IndicatorFrame, tracked []string) (*model.SummaryRecord, error) {
	if len(tracked) == 0 {
		tracked = frame.Names()
	}
	cols := make([][]float64, len(tracked))
	for i, name := range tracked {
		vals, ok := frame.Column(name)
		if !ok {
			return nil, fmt.Errorf("%s: tracked column %s missing from frame", frame.Series.Symbol, name)
		}
		cols[i] = vals
	}

	row := -1
	for i := frame.Len() - 1; i >= 0 && row < 0; i-- {
		complete := true
		for _, vals := range cols {
			if math.IsNaN(vals[i]) {
				complete = false
				break
			}
		}
		if complete {
			row = i
		}
	}
	if row < 0 {
		return nil, fmt.Errorf("%s: %d rows: %w", frame.Series.Symbol, frame.Len(), ErrNoCompleteRow)
	}

	bar := frame.Series.Bar(row)
	rec := &model.SummaryRecord{
		Ticker: frame.Series.Symbol,
		Date:   bar.Time,
		Close:  bar.Close,
		Names:  append([]string(nil), tracked...),
		Values: make(map[string]float64, len(tracked)),
	}
	for i, name := range tracked {
		rec.Values[name] = cols[i][row]
	}

	if high, low, err := calculator.TrailingRange(frame.Series.Highs(), frame.Series.Lows(), row, calculator.SessionsPerYear); err != nil {
		log.Printf("[WARN] %s: 52-week range calculation failed: %v", rec.Ticker, err)
		rec.High52w, rec.Low52w, rec.Position52w = bar.Close, bar.Close, 0.5
	} else {
		rec.High52w, rec.Low52w = high, low
		if pos, err := calculator.RangePosition(bar.Close, high, low); err != nil {
			log.Printf("[WARN] %s: 52-week position calculation failed: %v", rec.Ticker, err)
			rec.Position52w = 0.5
		} else {
			rec.Position52w = pos
		}
	}
	return rec, nil
}

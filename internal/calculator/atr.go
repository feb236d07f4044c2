package calculator

import "math"

// TrueRange returns TR[i] = max(high-low, |high-prevClose|, |low-prevClose|)
// with TR[0] = high[0]-low[0].
func TrueRange(highs, lows, closes []float64) ([]float64, error) {
	if len(highs) != len(closes) || len(lows) != len(closes) {
		return nil, invalidf("true range inputs differ in length: %d/%d/%d", len(highs), len(lows), len(closes))
	}
	tr := make([]float64, len(closes))
	for i := range closes {
		if i == 0 {
			tr[i] = highs[i] - lows[i]
			continue
		}
		prev := closes[i-1]
		tr[i] = math.Max(highs[i]-lows[i], math.Max(math.Abs(highs[i]-prev), math.Abs(lows[i]-prev)))
	}
	return tr, nil
}

// ATR computes the Wilder-smoothed average true range. Like RSI, the seed
// is the mean of TR[1..period] placed at index period, so the first
// period entries are NaN.
func ATR(highs, lows, closes []float64, period int) ([]float64, error) {
	if period < 1 {
		return nil, invalidf("ATR period %d must be positive", period)
	}
	tr, err := TrueRange(highs, lows, closes)
	if err != nil {
		return nil, err
	}
	out := nanSlice(len(closes))
	if len(closes) < period+1 {
		return out, nil
	}

	atr := windowMean(tr[1 : period+1])
	out[period] = atr
	p := float64(period)
	for i := period + 1; i < len(closes); i++ {
		atr = wilder(atr, tr[i], p)
		out[i] = atr
	}
	return out, nil
}

package calculator

import (
	"errors"
	"math"
)

// SessionsPerYear is the trading-day lookback of a 52-week range.
const SessionsPerYear = 252

// TrailingRange scans highs/lows over at most lookback sessions ending at
// index end (inclusive) and returns the high and low. NaN entries are
// ignored.
func TrailingRange(highs, lows []float64, end, lookback int) (high, low float64, err error) {
	if len(highs) == 0 || len(highs) != len(lows) {
		return 0, 0, errors.New("range: highs and lows must be non-empty and aligned")
	}
	if end < 0 || end >= len(highs) {
		return 0, 0, invalidf("range end %d outside %d sessions", end, len(highs))
	}
	if lookback < 1 {
		return 0, 0, invalidf("range lookback %d must be positive", lookback)
	}
	start := end - lookback + 1
	if start < 0 {
		start = 0
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for i := start; i <= end; i++ {
		if highs[i] > high {
			high = highs[i]
		}
		if lows[i] < low {
			low = lows[i]
		}
	}
	if math.IsInf(high, 0) || math.IsInf(low, 0) {
		return 0, 0, errors.New("range: no defined highs or lows in window")
	}
	return high, low, nil
}

// RangePosition returns where current sits within [low, high] (0.0~1.0).
func RangePosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("range: high must be >= low")
	}
	pos := (current - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}

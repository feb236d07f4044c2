package calculator

import "math"

// Growth computes the fractional change over n sessions:
// out[i] = (closes[i]-closes[i-n]) / closes[i-n]. A zero base yields NaN.
func Growth(closes []float64, n int) ([]float64, error) {
	if n < 1 {
		return nil, invalidf("growth sessions %d must be positive", n)
	}
	out := nanSlice(len(closes))
	for i := n; i < len(closes); i++ {
		base := closes[i-n]
		if base == 0 {
			continue
		}
		out[i] = (closes[i] - base) / base
	}
	return out, nil
}

// Volatility computes the rolling sample standard deviation (ddof=1) of
// closes over window. Entries before window-1 are NaN.
func Volatility(closes []float64, window int) ([]float64, error) {
	if window < 2 {
		return nil, invalidf("volatility window %d must be at least 2", window)
	}
	out := nanSlice(len(closes))
	for i := window - 1; i < len(closes); i++ {
		out[i] = sampleStdDev(closes[i-window+1 : i+1])
	}
	return out, nil
}

// MovingAverage is the trailing rolling mean used alongside growth and
// volatility. It shares SMA's algorithm and hard minimum.
func MovingAverage(closes []float64, window int) ([]float64, error) {
	return SMA(closes, window)
}

func sampleStdDev(values []float64) float64 {
	mean := windowMean(values)
	ss := 0.0
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)-1))
}

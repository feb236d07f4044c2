package calculator

import "math"

// SMA computes the simple moving average of prices over period.
// out[i] = mean(prices[i-period+1..i]); the first period-1 entries are NaN.
func SMA(prices []float64, period int) ([]float64, error) {
	if period < 1 {
		return nil, invalidf("SMA period %d must be positive", period)
	}
	if period > len(prices) {
		return nil, invalidf("SMA period %d exceeds %d prices", period, len(prices))
	}
	out := nanSlice(len(prices))
	for i := period - 1; i < len(prices); i++ {
		out[i] = windowMean(prices[i-period+1 : i+1])
	}
	return out, nil
}

// EMA computes the exponential moving average with alpha = 2/(period+1),
// seeded with the SMA of the first period prices. Leading NaN entries are
// treated as absent, so the seed window starts at the first defined price.
func EMA(prices []float64, period int) ([]float64, error) {
	if period < 1 {
		return nil, invalidf("EMA period %d must be positive", period)
	}
	out := nanSlice(len(prices))
	start := firstDefined(prices)
	seed := start + period - 1
	if start < 0 || seed >= len(prices) {
		return out, nil
	}

	alpha := 2.0 / float64(period+1)
	out[seed] = windowMean(prices[start : seed+1])
	for i := seed + 1; i < len(prices); i++ {
		out[i] = alpha*prices[i] + (1-alpha)*out[i-1]
	}
	return out, nil
}

func windowMean(prices []float64) float64 {
	sum := 0.0
	for _, p := range prices {
		sum += p
	}
	return sum / float64(len(prices))
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// firstDefined returns the index of the first non-NaN value, or -1.
func firstDefined(values []float64) int {
	for i, v := range values {
		if !math.IsNaN(v) {
			return i
		}
	}
	return -1
}

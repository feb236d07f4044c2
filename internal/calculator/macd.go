package calculator

import "math"

// MACDResult holds the three MACD series, each aligned with the input.
type MACDResult struct {
	Line      []float64
	Signal    []float64
	Histogram []float64
}

// MACD computes EMA(fast) - EMA(slow), its EMA(signal) and the histogram.
// The line is defined from index slow-1, the signal and histogram from
// index slow+signal-2.
func MACD(closes []float64, fast, slow, signal int) (*MACDResult, error) {
	if fast < 1 || slow < 1 || signal < 1 {
		return nil, invalidf("MACD periods %d/%d/%d must be positive", fast, slow, signal)
	}
	if fast >= slow {
		return nil, invalidf("MACD fast period %d must be below slow period %d", fast, slow)
	}

	fastEMA, err := EMA(closes, fast)
	if err != nil {
		return nil, err
	}
	slowEMA, err := EMA(closes, slow)
	if err != nil {
		return nil, err
	}

	line := nanSlice(len(closes))
	for i := range closes {
		if math.IsNaN(fastEMA[i]) || math.IsNaN(slowEMA[i]) {
			continue
		}
		line[i] = fastEMA[i] - slowEMA[i]
	}

	sig, err := EMA(line, signal)
	if err != nil {
		return nil, err
	}

	hist := nanSlice(len(closes))
	for i := range closes {
		if math.IsNaN(line[i]) || math.IsNaN(sig[i]) {
			continue
		}
		hist[i] = line[i] - sig[i]
	}
	return &MACDResult{Line: line, Signal: sig, Histogram: hist}, nil
}

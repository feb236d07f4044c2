package calculator

// RSI computes Wilder's relative strength index over period.
// The first value is at index period, once period price changes exist;
// shorter inputs yield an all-NaN result.
func RSI(closes []float64, period int) ([]float64, error) {
	if period < 1 {
		return nil, invalidf("RSI period %d must be positive", period)
	}
	out := nanSlice(len(closes))
	if len(closes) < period+1 {
		return out, nil
	}

	// Initial average gain/loss over the first `period` changes
	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		gain, loss := splitChange(closes[i] - closes[i-1])
		avgGain += gain
		avgLoss += loss
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	p := float64(period)
	for i := period + 1; i < len(closes); i++ {
		gain, loss := splitChange(closes[i] - closes[i-1])
		avgGain = wilder(avgGain, gain, p)
		avgLoss = wilder(avgLoss, loss, p)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out, nil
}

func splitChange(change float64) (gain, loss float64) {
	if change > 0 {
		return change, 0
	}
	return 0, -change
}

// wilder applies one step of Wilder's recursive average.
func wilder(prev, value, period float64) float64 {
	return (prev*(period-1) + value) / period
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}

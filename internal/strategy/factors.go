package strategy

import (
	"fmt"
	"math"

	"NovaInsights/internal/model"
)

func factor(name string, score, weight float64, commentary string) model.FactorScore {
	return model.FactorScore{
		Name:       name,
		RawScore:   score,
		Weight:     weight,
		Weighted:   score * weight,
		Commentary: commentary,
	}
}

// scoreRSIZone scores the latest RSI; oversold scores high.
// Weight: 0.30
func scoreRSIZone(rsi float64) model.FactorScore {
	if math.IsNaN(rsi) {
		return factor("RSI zone", 0, 0.30, "RSI unavailable")
	}
	var score float64
	switch {
	case rsi <= 25:
		score = 2.0
	case rsi <= 30:
		score = 1.5
	case rsi <= 40:
		score = 1.0
	case rsi <= 45:
		score = 0.5
	case rsi <= 55:
		score = 0
	case rsi <= 60:
		score = -0.5
	case rsi <= 70:
		score = -1.0
	case rsi <= 80:
		score = -1.5
	default:
		score = -2.0
	}
	return factor("RSI zone", score, 0.30, fmt.Sprintf("RSI=%.0f", rsi))
}

// scoreMACDMomentum scores the MACD histogram as a percentage of close.
// Weight: 0.25
func scoreMACDMomentum(hist, close float64) model.FactorScore {
	if math.IsNaN(hist) || math.IsNaN(close) || close == 0 {
		return factor("MACD momentum", 0, 0.25, "MACD unavailable")
	}
	pct := hist / close * 100

	var score float64
	switch {
	case pct >= 1:
		score = 2.0
	case pct >= 0.25:
		score = 1.0
	case pct > 0:
		score = 0.5
	case pct == 0:
		score = 0
	case pct > -0.25:
		score = -0.5
	case pct > -1:
		score = -1.0
	default:
		score = -2.0
	}
	return factor("MACD momentum", score, 0.25, fmt.Sprintf("hist %+.2f%% of close", pct))
}

// scoreTrend scores moving-average alignment and proximity to 52-week extremes.
// Weight: 0.25
// Bull alignment: close > SMA > EMA
// Bear alignment: close < SMA < EMA
func scoreTrend(close, sma, ema, position float64) model.FactorScore {
	if math.IsNaN(sma) || math.IsNaN(ema) {
		return factor("Trend", 0, 0.25, "averages unavailable")
	}
	bullish := close > sma && sma > ema
	bearish := close < sma && sma < ema

	var score float64
	var commentary string

	switch {
	case bullish && position >= 0.95:
		score = 1.5
		commentary = "bull alignment near 52w high"
	case bullish:
		score = 1.0
		commentary = "bull alignment"
	case bearish && position <= 0.05:
		score = -1.0
		commentary = "bear alignment near 52w low"
	case bearish:
		score = -0.5
		commentary = "bear alignment"
	default:
		commentary = "range-bound"
	}
	return factor("Trend", score, 0.25, commentary)
}

// score52WeekPosition scores where the close sits in the 52-week range.
// Weight: 0.10
// Special logic: when position > 95%, requires otherFactorsAvg < -1 to give -2, otherwise caps at -1.
func score52WeekPosition(position, otherFactorsAvg float64) model.FactorScore {
	pos := position * 100 // convert to percentage

	var score float64
	switch {
	case pos <= 10:
		score = 2.0
	case pos <= 20:
		score = 1.5
	case pos <= 30:
		score = 1.0
	case pos <= 40:
		score = 0.5
	case pos <= 60:
		score = 0
	case pos <= 70:
		score = -0.5
	case pos <= 80:
		score = -1.0
	case pos <= 95:
		score = -1.5
	default:
		// > 95%: need other factors avg < -1 to give -2, otherwise cap at -1
		if otherFactorsAvg < -1 {
			score = -2.0
		} else {
			score = -1.0
		}
	}
	return factor("52w position", score, 0.10, fmt.Sprintf("position=%.0f%%", pos))
}

// scoreVolatility penalizes wide price dispersion relative to close.
// Weight: 0.10
func scoreVolatility(vol, close float64) model.FactorScore {
	if math.IsNaN(vol) || math.IsNaN(close) || close == 0 {
		return factor("Volatility", 0, 0.10, "volatility unavailable")
	}
	pct := vol / close * 100

	var score float64
	switch {
	case pct <= 2:
		score = 0.5
	case pct <= 5:
		score = 0
	case pct <= 10:
		score = -0.5
	default:
		score = -1.0
	}
	return factor("Volatility", score, 0.10, fmt.Sprintf("std %.1f%% of close", pct))
}

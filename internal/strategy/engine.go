package strategy

import (
	"math"

	"NovaInsights/internal/analysis"
	"NovaInsights/internal/model"
)

// Tiers defines the 5-level signal mapping.
var Tiers = []struct {
	MinScore float64
	Tier     model.SignalTier
}{
	{1.0, model.SignalTier{Label: "Strong Buy", Bias: 1}},
	{0.4, model.SignalTier{Label: "Buy", Bias: 1}},
	{-0.4, model.SignalTier{Label: "Hold", Bias: 0}},
	{-1.0, model.SignalTier{Label: "Reduce", Bias: -1}},
}

// DefaultTier is the lowest tier for scores < -1.0.
var DefaultTier = model.SignalTier{Label: "Sell", Bias: -1}

// mapTier maps a total score to a SignalTier.
func mapTier(totalScore float64) model.SignalTier {
	for _, t := range Tiers {
		if totalScore >= t.MinScore {
			return t.Tier
		}
	}
	return DefaultTier
}

// Engine scores summary records. It needs the indicator column names the
// pipeline produced for the configured windows.
type Engine struct {
	smaCol  string
	emaCol  string
	rsiCol  string
	volCol  string
	histCol string
}

// NewEngine creates an engine reading the columns produced under cfg.
func NewEngine(cfg analysis.Config) *Engine {
	return &Engine{
		smaCol:  model.ColumnName(model.ColSMA, cfg.SMAPeriod),
		emaCol:  model.ColumnName(model.ColEMA, cfg.EMAPeriod),
		rsiCol:  model.ColumnName(model.ColRSI, cfg.RSIPeriod),
		volCol:  model.ColumnName(model.ColVolatility, cfg.VolatilityWindow),
		histCol: model.ColMACDHist,
	}
}

// Evaluate computes the trade signal of one ticker from its summary.
func (e *Engine) Evaluate(rec *model.SummaryRecord) *model.TradeSignal {
	// Step a: compute factors 1, 2, 3, 5
	f1 := scoreRSIZone(rec.Get(e.rsiCol))
	f2 := scoreMACDMomentum(rec.Get(e.histCol), rec.Close)
	f3 := scoreTrend(rec.Close, rec.Get(e.smaCol), rec.Get(e.emaCol), rec.Position52w)
	f5 := scoreVolatility(rec.Get(e.volCol), rec.Close)

	// Step b: compute otherFactorsAvg for factor 4
	otherFactorsAvg := (f1.RawScore + f2.RawScore + f3.RawScore + f5.RawScore) / 4.0

	// Step c: compute factor 4 with the avg
	f4 := score52WeekPosition(rec.Position52w, otherFactorsAvg)

	factors := []model.FactorScore{f1, f2, f3, f4, f5}

	// Step d: weighted sum
	var totalScore float64
	for _, f := range factors {
		totalScore += f.Weighted
	}

	signal := &model.TradeSignal{
		Ticker:     rec.Ticker,
		Factors:    factors,
		TotalScore: totalScore,
		Tier:       mapTier(totalScore),
	}

	// Step e: take-profit warning
	if rsi := rec.Get(e.rsiCol); !math.IsNaN(rsi) && rsi > 85 {
		signal.WarningMsg = "RSI above 85: consider taking partial profit"
	}

	return signal
}

// EvaluateReport scores every summarized ticker and stores the signals
// on the report.
func (e *Engine) EvaluateReport(report *model.BatchReport) {
	report.Signals = make(map[string]*model.TradeSignal, len(report.Summaries))
	for i := range report.Summaries {
		rec := &report.Summaries[i]
		report.Signals[rec.Ticker] = e.Evaluate(rec)
	}
}

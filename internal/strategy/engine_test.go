package strategy

import (
	"math"
	"testing"

	"NovaInsights/internal/analysis"
	"NovaInsights/internal/model"
)

func record(close, sma, ema, rsi, hist, vol, pos float64) *model.SummaryRecord {
	return &model.SummaryRecord{
		Ticker: "SPY",
		Close:  close,
		Values: map[string]float64{
			"SMA_20":    sma,
			"EMA_50":    ema,
			"RSI_14":    rsi,
			"MACD_HIST": hist,
			"VOL_20":    vol,
		},
		Position52w: pos,
	}
}

func TestEvaluate_NormalMarket(t *testing.T) {
	e := NewEngine(analysis.DefaultConfig())
	sig := e.Evaluate(record(580, 575, 570, 50, 0.1, 10, 0.5))
	if sig == nil {
		t.Fatal("expected non-nil signal")
	}
	if len(sig.Factors) != 5 {
		t.Fatalf("expected 5 factors, got %d", len(sig.Factors))
	}
	if sig.Ticker != "SPY" {
		t.Errorf("expected ticker SPY, got %s", sig.Ticker)
	}
	if sig.WarningMsg != "" {
		t.Errorf("unexpected warning: %s", sig.WarningMsg)
	}
}

func TestEvaluate_ExtremeOversold(t *testing.T) {
	e := NewEngine(analysis.DefaultConfig())
	sig := e.Evaluate(record(450, 470, 500, 20, 6, 5, 0.06))
	if sig.TotalScore < 0.4 {
		t.Errorf("expected high score for oversold ticker, got %.3f", sig.TotalScore)
	}
	if sig.Tier.Bias != 1 {
		t.Errorf("expected bullish tier, got %s", sig.Tier.Label)
	}
}

func TestEvaluate_ExtremeOverbought(t *testing.T) {
	e := NewEngine(analysis.DefaultConfig())
	sig := e.Evaluate(record(650, 620, 600, 90, -8, 70, 1.0))
	if sig.TotalScore > -0.5 {
		t.Errorf("expected negative score for overbought ticker, got %.3f", sig.TotalScore)
	}
	if sig.WarningMsg == "" {
		t.Error("expected take-profit warning for RSI > 85")
	}
}

func TestEvaluate_MissingColumnsScoreZero(t *testing.T) {
	e := NewEngine(analysis.DefaultConfig())
	rec := &model.SummaryRecord{Ticker: "X", Close: 10, Values: map[string]float64{}, Position52w: 0.5}
	sig := e.Evaluate(rec)
	if sig.TotalScore != 0 {
		t.Errorf("expected zero score, got %.3f", sig.TotalScore)
	}
	if sig.Tier.Label != "Hold" {
		t.Errorf("expected Hold, got %s", sig.Tier.Label)
	}
}

func TestEvaluate_ConfiguredColumns(t *testing.T) {
	cfg := analysis.DefaultConfig()
	cfg.RSIPeriod = 7
	e := NewEngine(cfg)
	rec := record(100, 100, 100, math.NaN(), 0, 1, 0.5)
	rec.Values["RSI_7"] = 90
	sig := e.Evaluate(rec)
	if sig.Factors[0].RawScore != -2.0 {
		t.Errorf("expected RSI_7 to drive the RSI factor, got %.1f", sig.Factors[0].RawScore)
	}
}

func TestMapTier(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{1.5, "Strong Buy"},
		{1.0, "Strong Buy"},
		{0.5, "Buy"},
		{0, "Hold"},
		{-0.4, "Hold"},
		{-0.9, "Reduce"},
		{-1.2, "Sell"},
	}
	for _, tt := range tests {
		if got := mapTier(tt.score).Label; got != tt.want {
			t.Errorf("mapTier(%.2f) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestEvaluateReport(t *testing.T) {
	e := NewEngine(analysis.DefaultConfig())
	report := &model.BatchReport{Summaries: []model.SummaryRecord{
		*record(580, 575, 570, 50, 0.1, 10, 0.5),
	}}
	e.EvaluateReport(report)
	if report.Signals["SPY"] == nil {
		t.Fatal("expected signal for SPY")
	}
}

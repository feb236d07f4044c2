package model

// TriggerType indicates what triggered the batch run.
type TriggerType string

const (
	TriggerScheduled TriggerType = "SCHEDULED"
	TriggerStartup   TriggerType = "STARTUP"
	TriggerManual    TriggerType = "MANUAL"
)

// FactorScore represents a single factor's scoring result.
type FactorScore struct {
	Name       string
	RawScore   float64
	Weight     float64
	Weighted   float64
	Commentary string
}

// SignalTier maps a total score range to a label.
type SignalTier struct {
	Label string
	Bias  int // +1 bullish, 0 neutral, -1 bearish
}

// TradeSignal is the per-ticker output of the strategy engine.
type TradeSignal struct {
	Ticker     string
	Factors    []FactorScore
	TotalScore float64
	Tier       SignalTier
	WarningMsg string
}

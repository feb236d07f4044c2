package analysis

import (
	"errors"
	"fmt"
	"log"
	"math"

	"NovaInsights/internal/calculator"
	"NovaInsights/internal/model"
)

// ErrInsufficientHistory indicates a series shorter than the longest
// configured window. By default the pipeline absorbs it into NaN columns.
var ErrInsufficientHistory = errors.New("analysis: insufficient history")

// Config holds the indicator windows of the technical pipeline.
type Config struct {
	SMAPeriod        int `yaml:"sma_period" json:"sma_period" validate:"min=1"`
	EMAPeriod        int `yaml:"ema_period" json:"ema_period" validate:"min=1"`
	RSIPeriod        int `yaml:"rsi_period" json:"rsi_period" validate:"min=1"`
	MACDFast         int `yaml:"macd_fast" json:"macd_fast" validate:"min=1"`
	MACDSlow         int `yaml:"macd_slow" json:"macd_slow" validate:"min=1"`
	MACDSignal       int `yaml:"macd_signal" json:"macd_signal" validate:"min=1"`
	ATRPeriod        int `yaml:"atr_period" json:"atr_period" validate:"min=1"`
	GrowthSessions   int `yaml:"growth_sessions" json:"growth_sessions" validate:"min=1"`
	VolatilityWindow int `yaml:"volatility_window" json:"volatility_window" validate:"min=2"`
	MovAveWindow     int `yaml:"moveave_window" json:"moveave_window" validate:"min=1"`
	// StrictHistory turns a short series into ErrInsufficientHistory
	// instead of NaN-filled columns.
	StrictHistory bool `yaml:"strict_history" json:"strict_history"`
}

// DefaultConfig returns the standard indicator windows.
func DefaultConfig() Config {
	return Config{
		SMAPeriod:        20,
		EMAPeriod:        50,
		RSIPeriod:        14,
		MACDFast:         12,
		MACDSlow:         26,
		MACDSignal:       9,
		ATRPeriod:        14,
		GrowthSessions:   5,
		VolatilityWindow: 20,
		MovAveWindow:     10,
	}
}

// Validate checks every window against the library's parameter rules.
func (c Config) Validate() error {
	checks := []struct {
		name string
		v    int
		min  int
	}{
		{"sma_period", c.SMAPeriod, 1},
		{"ema_period", c.EMAPeriod, 1},
		{"rsi_period", c.RSIPeriod, 1},
		{"macd_fast", c.MACDFast, 1},
		{"macd_slow", c.MACDSlow, 1},
		{"macd_signal", c.MACDSignal, 1},
		{"atr_period", c.ATRPeriod, 1},
		{"growth_sessions", c.GrowthSessions, 1},
		{"volatility_window", c.VolatilityWindow, 2},
		{"moveave_window", c.MovAveWindow, 1},
	}
	for _, ch := range checks {
		if ch.v < ch.min {
			return fmt.Errorf("%w: %s=%d must be >= %d", calculator.ErrInvalidParameter, ch.name, ch.v, ch.min)
		}
	}
	if c.MACDFast >= c.MACDSlow {
		return fmt.Errorf("%w: macd_fast=%d must be below macd_slow=%d", calculator.ErrInvalidParameter, c.MACDFast, c.MACDSlow)
	}
	return nil
}

// MaxWindow returns the longest history any indicator needs to produce
// its first value.
func (c Config) MaxWindow() int {
	windows := []int{
		c.SMAPeriod,
		c.EMAPeriod,
		c.RSIPeriod + 1,
		c.MACDSlow + c.MACDSignal - 1,
		c.ATRPeriod + 1,
		c.GrowthSessions + 1,
		c.VolatilityWindow,
		c.MovAveWindow,
	}
	m := 0
	for _, w := range windows {
		if w > m {
			m = w
		}
	}
	return m
}

// Columns returns the indicator column names in frame order.
func (c Config) Columns() []string {
	return []string{
		model.ColumnName(model.ColSMA, c.SMAPeriod),
		model.ColumnName(model.ColEMA, c.EMAPeriod),
		model.ColumnName(model.ColRSI, c.RSIPeriod),
		model.ColMACD,
		model.ColMACDSignal,
		model.ColMACDHist,
		model.ColumnName(model.ColATR, c.ATRPeriod),
		model.ColumnName(model.ColGrowth, c.GrowthSessions),
		model.ColumnName(model.ColVolatility, c.VolatilityWindow),
		model.ColumnName(model.ColMovAve, c.MovAveWindow),
	}
}

// Pipeline enriches one PriceSeries with every configured indicator.
type Pipeline struct {
	cfg Config
}

// NewPipeline validates cfg and returns a pipeline.
func NewPipeline(cfg Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Pipeline{cfg: cfg}, nil
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// Run computes the indicator frame for series. The series is not modified.
func (p *Pipeline) Run(series *model.PriceSeries) (*model.IndicatorFrame, error) {
	n := series.Len()
	if n < p.cfg.MaxWindow() {
		if p.cfg.StrictHistory {
			return nil, fmt.Errorf("%s: %d sessions, need %d: %w", series.Symbol, n, p.cfg.MaxWindow(), ErrInsufficientHistory)
		}
		log.Printf("[WARN] %s: %d sessions below longest window %d, warm-up columns stay NaN",
			series.Symbol, n, p.cfg.MaxWindow())
	}

	closes := series.Closes()
	highs := series.Highs()
	lows := series.Lows()
	names := p.cfg.Columns()
	frame := &model.IndicatorFrame{Series: series}

	add := func(name string, values []float64) {
		frame.Columns = append(frame.Columns, model.Column{Name: name, Values: values})
	}
	// windowed wraps functions with a hard minimum; a window longer than
	// the series degrades to a NaN column.
	windowed := func(name string, window int, fn func([]float64, int) ([]float64, error)) error {
		if window > n {
			add(name, nanColumn(n))
			return nil
		}
		values, err := fn(closes, window)
		if err != nil {
			return fmt.Errorf("%s %s: %w", series.Symbol, name, err)
		}
		add(name, values)
		return nil
	}

	if err := windowed(names[0], p.cfg.SMAPeriod, calculator.SMA); err != nil {
		return nil, err
	}

	ema, err := calculator.EMA(closes, p.cfg.EMAPeriod)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", series.Symbol, names[1], err)
	}
	add(names[1], ema)

	rsi, err := calculator.RSI(closes, p.cfg.RSIPeriod)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", series.Symbol, names[2], err)
	}
	add(names[2], rsi)

	macd, err := calculator.MACD(closes, p.cfg.MACDFast, p.cfg.MACDSlow, p.cfg.MACDSignal)
	if err != nil {
		return nil, fmt.Errorf("%s MACD: %w", series.Symbol, err)
	}
	add(names[3], macd.Line)
	add(names[4], macd.Signal)
	add(names[5], macd.Histogram)

	atr, err := calculator.ATR(highs, lows, closes, p.cfg.ATRPeriod)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", series.Symbol, names[6], err)
	}
	add(names[6], atr)

	growth, err := calculator.Growth(closes, p.cfg.GrowthSessions)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", series.Symbol, names[7], err)
	}
	add(names[7], growth)

	vol, err := calculator.Volatility(closes, p.cfg.VolatilityWindow)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", series.Symbol, names[8], err)
	}
	add(names[8], vol)

	if err := windowed(names[9], p.cfg.MovAveWindow, calculator.MovingAverage); err != nil {
		return nil, err
	}

	for _, c := range frame.Columns {
		if allNaN(c.Values) {
			frame.Degraded = append(frame.Degraded, c.Name)
		}
	}
	return frame, nil
}

func allNaN(values []float64) bool {
	for _, v := range values {
		if !math.IsNaN(v) {
			return false
		}
	}
	return true
}

func nanColumn(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

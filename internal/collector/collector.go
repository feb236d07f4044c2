package collector

import (
	"context"
	"fmt"
	"strings"
	"time"

	"NovaInsights/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price     float64
	DailyData map[string][]model.OHLCV
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, symbol string, days int) ([]model.OHLCV, error) {
	if m.DailyData != nil {
		bars, ok := m.DailyData[symbol]
		if !ok {
			return nil, fmt.Errorf("mock: no data for %s", symbol)
		}
		return bars, nil
	}
	return generateMockBars(m.Price, days), nil
}

// ListTickers returns the symbols with canned data.
func (m *MockFetcher) ListTickers() ([]string, error) {
	tickers := make([]string, 0, len(m.DailyData))
	for t := range m.DailyData {
		tickers = append(tickers, t)
	}
	return tickers, nil
}

func generateMockBars(basePrice float64, count int) []model.OHLCV {
	if count <= 0 {
		count = 300
	}
	start := sessionDate(time.Now()).AddDate(0, 0, -count)
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   start.AddDate(0, 0, i),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// Collector turns raw fetcher output into validated price series.
type Collector struct {
	Fetcher Fetcher
	Days    int
}

// NewCollector creates a new Collector. days <= 0 requests full history.
func NewCollector(fetcher Fetcher, days int) *Collector {
	return &Collector{Fetcher: fetcher, Days: days}
}

// Load fetches ticker's daily bars and builds its PriceSeries.
func (c *Collector) Load(ctx context.Context, ticker string) (*model.PriceSeries, error) {
	symbol := strings.ToUpper(strings.TrimSpace(ticker))
	bars, err := c.Fetcher.FetchDailyBars(ctx, symbol, c.Days)
	if err != nil {
		return nil, fmt.Errorf("fetch daily bars from %s: %w", c.Fetcher.Name(), err)
	}
	return model.NewPriceSeries(symbol, bars)
}

// Tickers resolves the ticker universe: the configured list when given,
// otherwise whatever the fetcher can enumerate.
func (c *Collector) Tickers(configured []string) ([]string, error) {
	if len(configured) > 0 {
		out := make([]string, len(configured))
		for i, t := range configured {
			out[i] = strings.ToUpper(strings.TrimSpace(t))
		}
		return out, nil
	}
	lister, ok := c.Fetcher.(Lister)
	if !ok {
		return nil, fmt.Errorf("no tickers configured and %s fetcher cannot list them", c.Fetcher.Name())
	}
	return lister.ListTickers()
}

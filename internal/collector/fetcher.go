package collector

import (
	"context"

	"NovaInsights/internal/model"
)

// Fetcher defines the interface for fetching daily price bars.
// Bars may arrive unsorted and with NaN fields; the Collector validates them.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error)
	Name() string
}

// Lister is implemented by fetchers that can enumerate their tickers.
type Lister interface {
	ListTickers() ([]string, error)
}

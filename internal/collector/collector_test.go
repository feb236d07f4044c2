package collector

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"NovaInsights/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `date,Open,HIGH,low,Close,Volume
2024-01-03,11,12,10,11.5,2000
2024-01-02,10,11,9,10.5,1000
2024-01-04,12,n/a,11,,3000
not-a-date,1,1,1,1,1
2024-01-05 00:00:00,13,14,12,"1,013.5",4000
`

func TestParsePriceCSV(t *testing.T) {
	bars, err := ParsePriceCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, bars, 4)

	assert.Equal(t, 11.5, bars[0].Close)
	assert.True(t, math.IsNaN(bars[2].High))
	assert.True(t, math.IsNaN(bars[2].Close))
	assert.Equal(t, 1013.5, bars[3].Close)
	assert.Equal(t, 5, bars[3].Time.Day())
}

func TestParsePriceCSV_MissingColumn(t *testing.T) {
	_, err := ParsePriceCSV(strings.NewReader("date,open,high,low,close\n2024-01-02,1,1,1,1\n"))
	assert.ErrorContains(t, err, "volume")
}

func TestCSVFetcher_LoadThroughCollector(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "aapl.csv"), []byte(sampleCSV), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "MSFT.csv"), []byte(sampleCSV), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	f := NewCSVFetcher(dir)
	tickers, err := f.ListTickers()
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, tickers)

	c := NewCollector(f, 0)
	series, err := c.Load(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", series.Symbol)
	// the row with a blank close is dropped, the rest sorted
	assert.Equal(t, []float64{10.5, 11.5, 1013.5}, series.Closes())

	bars, err := f.FetchDailyBars(context.Background(), "MSFT", 2)
	require.NoError(t, err)
	assert.Len(t, bars, 2)

	_, err = c.Load(context.Background(), "NOPE")
	assert.Error(t, err)
}

func TestYahooFetcher_NullsBecomeNaN(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/%5EGSPC", r.URL.EscapedPath())
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		fmt.Fprint(w, `{"chart":{"result":[{"timestamp":[1704200400,1704286800,1704373200],
			"indicators":{"quote":[{"open":[1,null,3],"high":[2,null,4],"low":[0.5,null,2],
			"close":[1.5,null,3.5],"volume":[100,null,300]}]}}],"error":null}}`)
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL
	bars, err := f.FetchDailyBars(context.Background(), "SPX", 10)
	require.NoError(t, err)
	require.Len(t, bars, 3)
	assert.True(t, math.IsNaN(bars[1].Close))
	assert.Equal(t, 3.5, bars[2].Close)
	assert.Zero(t, bars[0].Time.Hour())

	series, err := NewCollector(f, 10).Load(context.Background(), "spx")
	require.NoError(t, err)
	assert.Equal(t, 2, series.Len())
}

func TestYahooFetcher_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`)
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL
	_, err := f.FetchDailyBars(context.Background(), "ZZZZ", 10)
	assert.ErrorContains(t, err, "No data found")
}

func TestYahooFetcher_ExchangeOffset(t *testing.T) {
	// 2024-01-02 23:00 UTC is the 10:00 open in Sydney on January 3rd
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[{"meta":{"gmtoffset":39600},"timestamp":[1704236400],
			"indicators":{"quote":[{"open":[1],"high":[2],"low":[0.5],"close":[1.5],"volume":[100]}]}}],"error":null}}`)
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL
	bars, err := f.FetchDailyBars(context.Background(), "BHP.AX", 5)
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), bars[0].Time)
}

func TestRESTFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "NVDA", r.URL.Query().Get("symbol"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		fmt.Fprint(w, `[{"timestamp":1704286800,"open":2,"high":3,"low":1,"close":2.5,"volume":10},
			{"timestamp":1704200400,"open":1,"high":2,"low":0.5,"close":null,"volume":5}]`)
	}))
	defer srv.Close()

	f := NewRESTFetcher(srv.URL, "secret", "")
	bars, err := f.FetchDailyBars(context.Background(), "NVDA", 2)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.True(t, math.IsNaN(bars[1].Close))

	series, err := NewCollector(f, 2).Load(context.Background(), "NVDA")
	require.NoError(t, err)
	assert.Equal(t, []float64{2.5}, series.Closes())
}

func TestRESTFetcher_Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewRESTFetcher(srv.URL, "", "").FetchDailyBars(context.Background(), "X", 5)
	assert.ErrorContains(t, err, "status 502")
}

func TestCollector_Tickers(t *testing.T) {
	m := &MockFetcher{DailyData: map[string][]model.OHLCV{"A": nil}}
	c := NewCollector(m, 0)

	got, err := c.Tickers([]string{" aapl", "msft"})
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, got)

	got, err = c.Tickers(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, got)

	_, err = NewCollector(NewRESTFetcher("http://x", "", ""), 0).Tickers(nil)
	assert.Error(t, err)
}

func TestMockFetcher_Generated(t *testing.T) {
	series, err := NewCollector(&MockFetcher{Price: 100}, 60).Load(context.Background(), "SPX")
	require.NoError(t, err)
	assert.Equal(t, 60, series.Len())
}

type recordingFetcher struct {
	got []string
}

func (f *recordingFetcher) Name() string { return "recording" }

func (f *recordingFetcher) FetchDailyBars(_ context.Context, symbol string, _ int) ([]model.OHLCV, error) {
	f.got = append(f.got, symbol)
	return []model.OHLCV{{Time: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Close: 1}}, nil
}

func TestCollector_LoadNormalizesSymbol(t *testing.T) {
	f := &recordingFetcher{}
	series, err := NewCollector(f, 0).Load(context.Background(), " spx ")
	require.NoError(t, err)
	assert.Equal(t, []string{"SPX"}, f.got)
	assert.Equal(t, "SPX", series.Symbol)
}

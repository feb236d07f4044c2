package exporter

import (
	"encoding/csv"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"NovaInsights/internal/analysis"
	"NovaInsights/internal/model"
	"NovaInsights/internal/newsstats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func sampleReport(t *testing.T) *model.BatchReport {
	t.Helper()
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	series, err := model.NewPriceSeries("AAPL", []model.OHLCV{
		{Time: day, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 100},
		{Time: day.AddDate(0, 0, 1), Open: 1.5, High: 2.5, Low: 1, Close: 2.123456789, Volume: 200},
	})
	require.NoError(t, err)
	frame := &model.IndicatorFrame{
		Series:  series,
		Columns: []model.Column{{Name: "SMA_2", Values: []float64{math.NaN(), 1.8117283945}}},
	}
	return &model.BatchReport{
		RunID:      "run-1",
		StartedAt:  day,
		FinishedAt: day.Add(time.Second),
		Columns:    []string{"SMA_2"},
		Summaries: []model.SummaryRecord{{
			Ticker: "AAPL", Date: day.AddDate(0, 0, 1), Close: 2.123456789,
			Names: []string{"SMA_2"}, Values: map[string]float64{"SMA_2": 1.8117283945},
			High52w: 2.5, Low52w: 0.5, Position52w: 0.8117,
		}},
		Skipped: []model.SkippedTicker{{Ticker: "TINY", Reason: analysis.ReasonNoCompleteRow, Message: "no complete row"}},
		Frames:  map[string]*model.IndicatorFrame{"AAPL": frame},
		Signals: map[string]*model.TradeSignal{"AAPL": {Ticker: "AAPL", TotalScore: 0.45, Tier: model.SignalTier{Label: "Buy", Bias: 1}}},
	}
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", FormatValue(math.NaN(), 4))
	assert.Equal(t, "", FormatValue(math.Inf(1), 4))
	assert.Equal(t, "1.2346", FormatValue(1.23456, 4))
	assert.Equal(t, "12", FormatValue(12, 4))
	assert.Equal(t, "-0.5", FormatValue(-0.5, 2))
}

func TestExportBatch(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "technical")
	e, err := New(dir, 4, true)
	require.NoError(t, err)

	files, err := e.ExportBatch(sampleReport(t), analysis.DefaultConfig())
	require.NoError(t, err)
	assert.Len(t, files, 5)

	frame := readCSV(t, filepath.Join(dir, "AAPL_technicals.csv"))
	assert.Equal(t, []string{"Date", "Open", "High", "Low", "Close", "Volume", "SMA_2"}, frame[0])
	assert.Equal(t, []string{"2024-05-01", "1", "2", "0.5", "1.5", "100", ""}, frame[1])
	assert.Equal(t, "2.1235", frame[2][4])
	assert.Equal(t, "1.8117", frame[2][6])

	summary := readCSV(t, filepath.Join(dir, SummaryCSV))
	assert.Equal(t, []string{"ticker", "date", "close", "SMA_2", "high_52w", "low_52w", "position_52w", "signal_score", "signal_tier"}, summary[0])
	assert.Equal(t, []string{"AAPL", "2024-05-02", "2.1235", "1.8117", "2.5", "0.5", "0.8117", "0.45", "Buy"}, summary[1])

	skipped := readCSV(t, filepath.Join(dir, SkippedCSV))
	assert.Equal(t, []string{"TINY", "NoCompleteRow", "no complete row"}, skipped[1])

	wb, err := excelize.OpenFile(filepath.Join(dir, SummaryXLSX))
	require.NoError(t, err)
	defer wb.Close()
	assert.Equal(t, []string{"Summary", "Skipped"}, wb.GetSheetList())
	rows, err := wb.GetRows("Summary")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "AAPL", rows[1][0])
	assert.Equal(t, "1.8117", rows[1][3])

	m, err := LoadManifest(filepath.Join(dir, ManifestJSON))
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "run-1", m.RunID)
	assert.Equal(t, 1, m.Summarized)
	assert.Equal(t, 1, m.Skipped)
	assert.Equal(t, 20, m.Indicators.SMAPeriod)
	assert.Contains(t, m.Files, SummaryCSV)
}

func TestLoadManifest_Missing(t *testing.T) {
	m, err := LoadManifest(filepath.Join(t.TempDir(), "none.json"))
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestExportNews(t *testing.T) {
	res, err := newsstats.Load(strings.NewReader(`headline,url,publisher,date,stock
Alpha beta,u,A,2020-06-01 09:00:00,X
Gamma,u,B@news.com,2020-06-02 10:00:00,Y
Delta epsilon zeta,u,A,2020-06-02 10:30:00,X
`))
	require.NoError(t, err)
	rep, err := newsstats.Analyze(res)
	require.NoError(t, err)

	e, err := New(t.TempDir(), 3, false)
	require.NoError(t, err)
	files, err := e.ExportNews(rep)
	require.NoError(t, err)
	assert.Len(t, files, 9)

	stats := readCSV(t, filepath.Join(e.Dir, "headline_length_stats.csv"))
	assert.Equal(t, []string{"count", "3", "3"}, stats[1])
	assert.Equal(t, []string{"mean", "11", "2"}, stats[2])

	pubs := readCSV(t, filepath.Join(e.Dir, "publisher_article_counts.csv"))
	assert.Equal(t, [][]string{{"publisher", "article_count"}, {"A", "2"}, {"B@news.com", "1"}}, pubs)

	hourly := readCSV(t, filepath.Join(e.Dir, "hourly_publication_counts.csv"))
	assert.Equal(t, []string{"10", "2"}, hourly[2])

	data, err := os.ReadFile(filepath.Join(e.Dir, "time_series_statistics.json"))
	require.NoError(t, err)
	var ts map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &ts))
	assert.Equal(t, float64(10), ts["peak_hour"])
}

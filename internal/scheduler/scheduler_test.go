package scheduler

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"NovaInsights/internal/analysis"
	"NovaInsights/internal/collector"
	"NovaInsights/internal/exporter"
	"NovaInsights/internal/model"
	"NovaInsights/internal/recorder"
	"NovaInsights/internal/strategy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSender struct {
	mu   sync.Mutex
	msgs []string
}

func (c *captureSender) SendWithRetry(_ context.Context, text string, _ int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, text)
	return nil
}

func bars(n int) []model.OHLCV {
	day := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	out := make([]model.OHLCV, n)
	for i := range out {
		c := 100 + 10*math.Sin(float64(i)/7)
		out[i] = model.OHLCV{Time: day.AddDate(0, 0, i), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 1e6}
	}
	return out
}

func newScheduler(t *testing.T, rec recorder.Recorder) (*Scheduler, *captureSender, string) {
	t.Helper()
	runner, err := analysis.NewRunner(analysis.DefaultConfig(), analysis.WithWorkers(2))
	require.NoError(t, err)
	dir := t.TempDir()
	exp, err := exporter.New(dir, 4, false)
	require.NoError(t, err)

	fetcher := &collector.MockFetcher{DailyData: map[string][]model.OHLCV{
		"AAPL": bars(120),
		"MSFT": bars(90),
		"TINY": bars(2),
	}}
	sender := &captureSender{}
	s := NewScheduler(context.Background(), Deps{
		Runner:    runner,
		Collector: collector.NewCollector(fetcher, 0),
		Tickers:   []string{"AAPL", "MSFT", "TINY"},
		Engine:    strategy.NewEngine(analysis.DefaultConfig()),
		Exporter:  exp,
		Notifier:  sender,
		Recorder:  rec,
	})
	return s, sender, dir
}

func TestRunNow(t *testing.T) {
	s, sender, dir := newScheduler(t, nil)

	report, err := s.RunNow(model.TriggerManual)
	require.NoError(t, err)
	assert.Len(t, report.Summaries, 2)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, "TINY", report.Skipped[0].Ticker)
	assert.Len(t, report.Signals, 2)
	assert.Same(t, report, s.Latest())

	_, err = os.Stat(filepath.Join(dir, exporter.SummaryCSV))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, exporter.FrameFileName("AAPL")))
	assert.NoError(t, err)

	require.Len(t, sender.msgs, 1)
	assert.Contains(t, sender.msgs[0], "Summarized: 2 | Skipped: 1")
}

func TestRunNow_Overlapping(t *testing.T) {
	s, _, _ := newScheduler(t, nil)
	s.running.Lock()
	defer s.running.Unlock()

	_, err := s.RunNow(model.TriggerManual)
	assert.ErrorIs(t, err, ErrBatchRunning)
}

func TestHandleCommand(t *testing.T) {
	r, err := recorder.NewSQLiteRecorder(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer r.Close()
	s, _, _ := newScheduler(t, r)

	assert.Equal(t, "No batch has run yet", s.HandleCommand("/summary"))
	assert.Equal(t, "", s.HandleCommand("/run"))

	assert.Contains(t, s.HandleCommand("/summary"), "Summarized: 2")
	assert.Contains(t, s.HandleCommand("/ticker aapl"), "<b>AAPL</b>")
	assert.Equal(t, "TINY was skipped: NoCompleteRow", s.HandleCommand("/ticker TINY"))
	assert.Equal(t, "ZZZ is not in the latest batch", s.HandleCommand("/ticker zzz"))
	assert.Equal(t, "Usage: /ticker <TICKER>", s.HandleCommand("/ticker"))
	assert.Contains(t, s.HandleCommand("/history msft"), "MSFT history")
	assert.Contains(t, s.HandleCommand("hello"), "Available commands")
}

func TestRegister(t *testing.T) {
	s, _, _ := newScheduler(t, nil)
	assert.NoError(t, s.Register("0 30 22 * * 1-5"))
	assert.Error(t, s.Register("not a cron"))
}

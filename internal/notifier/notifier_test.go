package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"NovaInsights/internal/model"
	"NovaInsights/internal/recorder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func batchReport() *model.BatchReport {
	day := time.Date(2024, 5, 2, 22, 30, 0, 0, time.UTC)
	rep := &model.BatchReport{
		RunID:      "0f8fad5b-d9cb-469f-a165-70867728950e",
		FinishedAt: day,
		Skipped:    []model.SkippedTicker{{Ticker: "TINY", Reason: "NoCompleteRow"}},
		Signals:    map[string]*model.TradeSignal{},
	}
	for i, t := range []string{"AAPL", "AMZN", "MSFT", "NVDA"} {
		rep.Summaries = append(rep.Summaries, model.SummaryRecord{Ticker: t, Date: day, Close: 100 + float64(i)})
		rep.Signals[t] = &model.TradeSignal{Ticker: t, TotalScore: float64(i) - 1.5, Tier: model.SignalTier{Label: "Hold"}}
	}
	rep.Signals["NVDA"].WarningMsg = "RSI above 85"
	return rep
}

func TestFormatBatchReport(t *testing.T) {
	msg := FormatBatchReport(batchReport(), model.TriggerScheduled, 2)

	assert.Contains(t, msg, "Run 0f8fad5b (SCHEDULED)")
	assert.Contains(t, msg, "Summarized: 4 | Skipped: 1")
	strongest := strings.Index(msg, "Strongest")
	weakest := strings.Index(msg, "Weakest")
	require.True(t, strongest >= 0 && weakest > strongest)
	assert.Contains(t, msg[strongest:weakest], "NVDA 103.00  +1.500")
	assert.Contains(t, msg[strongest:weakest], "MSFT")
	assert.Contains(t, msg[weakest:], "AAPL 100.00  -1.500")
	assert.Contains(t, msg, "NVDA: RSI above 85")
	assert.Contains(t, msg, "TINY: NoCompleteRow")
}

func TestFormatBatchReport_FewSignals(t *testing.T) {
	rep := batchReport()
	msg := FormatBatchReport(rep, model.TriggerManual, 10)
	assert.NotContains(t, msg, "Weakest")
	assert.Equal(t, 1, strings.Count(msg, "AMZN"))
}

func TestFormatTicker(t *testing.T) {
	rec := &model.SummaryRecord{
		Ticker: "AAPL", Date: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), Close: 170.5,
		Names: []string{"RSI_14"}, Values: map[string]float64{"RSI_14": 61.25},
		High52w: 200, Low52w: 150, Position52w: 0.41,
	}
	sig := &model.TradeSignal{
		Factors:    []model.FactorScore{{Name: "RSI zone", Commentary: "RSI=61", RawScore: -1, Weight: 0.3, Weighted: -0.3}},
		TotalScore: -0.3, Tier: model.SignalTier{Label: "Hold"},
	}
	msg := FormatTicker(rec, sig)
	assert.Contains(t, msg, "<b>AAPL</b> | 2024-05-02")
	assert.Contains(t, msg, "RSI_14: 61.2500")
	assert.Contains(t, msg, "position 41%")
	assert.Contains(t, msg, "RSI zone(RSI=61): -1.0 (×0.30) = -0.300")
	assert.Contains(t, msg, "Total: -0.300 → Hold")
}

func TestFormatHistory(t *testing.T) {
	assert.Equal(t, "No history recorded for X", FormatHistory("X", nil))
	msg := FormatHistory("AAPL", []recorder.TickerPoint{
		{Date: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), Close: 170, SignalScore: 0.5, SignalTier: "Buy"},
		{Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), Close: 169, SignalScore: math.NaN()},
	})
	assert.Contains(t, msg, "2024-05-02  170.00  +0.500 Buy")
	assert.Contains(t, msg, "2024-05-01  169.00  n/a")
}

type fakeTelegram struct {
	mu        sync.Mutex
	sent      []string
	failures  int
	updates   []string
	strangers []string
	onSend    func()
}

func (f *fakeTelegram) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func (f *fakeTelegram) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		if f.failures > 0 {
			f.failures--
			http.Error(w, "flood", http.StatusTooManyRequests)
			return
		}
		var payload map[string]string
		_ = json.NewDecoder(r.Body).Decode(&payload)
		f.sent = append(f.sent, payload["text"])
		if f.onSend != nil {
			f.onSend()
		}
		fmt.Fprint(w, `{"ok":true}`)
	case strings.HasSuffix(r.URL.Path, "/getUpdates"):
		var parts []string
		id := 0
		for _, u := range f.strangers {
			id++
			parts = append(parts, fmt.Sprintf(`{"update_id":%d,"message":{"text":%q,"chat":{"id":7}}}`, id, u))
		}
		for _, u := range f.updates {
			id++
			parts = append(parts, fmt.Sprintf(`{"update_id":%d,"message":{"text":%q,"chat":{"id":42}}}`, id, u))
		}
		f.updates, f.strangers = nil, nil
		fmt.Fprintf(w, `{"ok":true,"result":[%s]}`, strings.Join(parts, ","))
	default:
		http.NotFound(w, r)
	}
}

func newTestNotifier(t *testing.T, fake *fakeTelegram) *TelegramNotifier {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	n := NewTelegramNotifier("token", "42", "")
	n.APIBase = srv.URL
	return n
}

func TestTelegramNotifier_SendWithRetry(t *testing.T) {
	fake := &fakeTelegram{failures: 1}
	n := newTestNotifier(t, fake)

	require.NoError(t, n.SendWithRetry(context.Background(), "hello", 2))
	assert.Equal(t, []string{"hello"}, fake.messages())
}

func TestTelegramNotifier_SendWithRetry_Cancelled(t *testing.T) {
	fake := &fakeTelegram{failures: 5}
	n := newTestNotifier(t, fake)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, n.SendWithRetry(ctx, "hello", 3), context.Canceled)
}

func TestTelegramNotifier_SendWithRetry_RetryAfter(t *testing.T) {
	fake := &fakeTelegram{}
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"ok":false,"description":"Too Many Requests","parameters":{"retry_after":1}}`)
			return
		}
		fake.ServeHTTP(w, r)
	}))
	defer srv.Close()
	n := NewTelegramNotifier("token", "42", "")
	n.APIBase = srv.URL

	require.NoError(t, n.SendWithRetry(context.Background(), "hello", 1))
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, []string{"hello"}, fake.messages())
}

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"short"}, splitMessage("short", 10))

	parts := splitMessage("aaaa\nbbbb\ncccc\n", 10)
	assert.Equal(t, []string{"aaaa\nbbbb", "cccc"}, parts)

	parts = splitMessage(strings.Repeat("x", 25), 10)
	assert.Equal(t, []string{strings.Repeat("x", 10), strings.Repeat("x", 10), strings.Repeat("x", 5)}, parts)
}

func TestNormalizeCommand(t *testing.T) {
	assert.Equal(t, "/ticker aapl", normalizeCommand("  /ticker@nova_bot   aapl "))
	assert.Equal(t, "/summary", normalizeCommand("/summary"))
	assert.Equal(t, "hello there", normalizeCommand("hello there"))
	assert.Equal(t, "", normalizeCommand("   "))
}

func TestTelegramNotifier_Polling(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	fake := &fakeTelegram{
		updates:   []string{" /summary@nova_bot "},
		strangers: []string{"/run"},
		onSend:    cancel,
	}
	n := newTestNotifier(t, fake)

	var got []string
	n.StartPolling(ctx, func(cmd string) string {
		got = append(got, cmd)
		return "reply to " + cmd
	})
	assert.Equal(t, []string{"/summary"}, got)
	assert.Equal(t, []string{"reply to /summary"}, fake.messages())
}

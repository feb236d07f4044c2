package notifier

import (
	"fmt"
	"html"
	"math"
	"sort"
	"strings"

	"NovaInsights/internal/model"
	"NovaInsights/internal/recorder"
)

// FormatBatchReport formats a batch run into a Telegram message: the topN
// best and worst signals, then the skipped tickers.
func FormatBatchReport(report *model.BatchReport, trigger model.TriggerType, topN int) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>NovaInsights Technicals</b> | %s\n", report.FinishedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Run %s (%s)\n", shortID(report.RunID), trigger))
	b.WriteString(fmt.Sprintf("Summarized: %d | Skipped: %d\n\n", len(report.Summaries), len(report.Skipped)))

	signals := rankedSignals(report)
	if len(signals) > 0 {
		n := topN
		if n > len(signals) {
			n = len(signals)
		}
		b.WriteString("📈 <b>Strongest:</b>\n")
		for _, s := range signals[:n] {
			writeSignalLine(&b, report, s)
		}
		if len(signals) > n {
			b.WriteString("\n📉 <b>Weakest:</b>\n")
			start := len(signals) - n
			if start < n {
				start = n
			}
			for i := len(signals) - 1; i >= start; i-- {
				writeSignalLine(&b, report, signals[i])
			}
		}
	}

	var warnings []string
	for _, s := range signals {
		if s.WarningMsg != "" {
			warnings = append(warnings, fmt.Sprintf("%s: %s", s.Ticker, s.WarningMsg))
		}
	}
	if len(warnings) > 0 {
		b.WriteString("\n⚠️ <b>Warnings:</b>\n")
		for _, w := range warnings {
			b.WriteString("  " + html.EscapeString(w) + "\n")
		}
	}

	if len(report.Skipped) > 0 {
		b.WriteString("\n🚫 <b>Skipped:</b>\n")
		for _, s := range report.Skipped {
			b.WriteString(fmt.Sprintf("  %s: %s\n", html.EscapeString(s.Ticker), s.Reason))
		}
	}
	return b.String()
}

func writeSignalLine(b *strings.Builder, report *model.BatchReport, s *model.TradeSignal) {
	close := math.NaN()
	if rec, ok := report.Summary(s.Ticker); ok {
		close = rec.Close
	}
	b.WriteString(fmt.Sprintf("  %s %.2f  %+.3f %s\n", html.EscapeString(s.Ticker), close, s.TotalScore, s.Tier.Label))
}

// rankedSignals orders signals by score descending, ties by ticker.
func rankedSignals(report *model.BatchReport) []*model.TradeSignal {
	out := make([]*model.TradeSignal, 0, len(report.Signals))
	for _, s := range report.Signals {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalScore != out[j].TotalScore {
			return out[i].TotalScore > out[j].TotalScore
		}
		return out[i].Ticker < out[j].Ticker
	})
	return out
}

// FormatTicker formats one ticker's latest indicators and factor scores.
func FormatTicker(rec *model.SummaryRecord, signal *model.TradeSignal) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🔎 <b>%s</b> | %s\n\n", html.EscapeString(rec.Ticker), rec.Date.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Close: %.2f\n", rec.Close))
	b.WriteString(fmt.Sprintf("52w: %.2f - %.2f (position %.0f%%)\n\n", rec.Low52w, rec.High52w, rec.Position52w*100))
	for _, name := range rec.Names {
		b.WriteString(fmt.Sprintf("  %s: %.4f\n", name, rec.Get(name)))
	}

	if signal != nil {
		b.WriteString("\n📈 <b>Factors:</b>\n")
		for _, f := range signal.Factors {
			b.WriteString(fmt.Sprintf("  %s(%s): %+.1f (×%.2f) = %+.3f\n",
				f.Name, html.EscapeString(f.Commentary), f.RawScore, f.Weight, f.Weighted))
		}
		b.WriteString("  ─────────────────\n")
		b.WriteString(fmt.Sprintf("  Total: %+.3f → %s\n", signal.TotalScore, signal.Tier.Label))
		if signal.WarningMsg != "" {
			b.WriteString(fmt.Sprintf("\n⚠️ %s\n", html.EscapeString(signal.WarningMsg)))
		}
	}
	return b.String()
}

// FormatHistory formats recorded summaries of a ticker, newest first.
func FormatHistory(ticker string, points []recorder.TickerPoint) string {
	if len(points) == 0 {
		return fmt.Sprintf("No history recorded for %s", html.EscapeString(ticker))
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🗂 <b>%s history</b>\n\n", html.EscapeString(ticker)))
	for _, p := range points {
		score := "n/a"
		if !math.IsNaN(p.SignalScore) {
			score = fmt.Sprintf("%+.3f %s", p.SignalScore, p.SignalTier)
		}
		b.WriteString(fmt.Sprintf("  %s  %.2f  %s\n", p.Date.Format("2006-01-02"), p.Close, score))
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

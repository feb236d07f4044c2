package exporter

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"NovaInsights/internal/model"
)

const dateLayout = "2006-01-02"

// File names written into the technical output directory.
const (
	SummaryCSV   = "technical_summary.csv"
	SkippedCSV   = "technical_skipped.csv"
	SummaryXLSX  = "technical_summary.xlsx"
	ManifestJSON = "run_manifest.json"
)

// FrameFileName is the per-ticker indicator grid file name.
func FrameFileName(ticker string) string {
	return ticker + "_technicals.csv"
}

// writeCSV creates path and writes rows into it.
func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// WriteFrame writes Date, OHLCV and every indicator column of frame.
func (e *Exporter) WriteFrame(frame *model.IndicatorFrame) (string, error) {
	s := frame.Series
	header := append([]string{"Date", "Open", "High", "Low", "Close", "Volume"}, frame.Names()...)
	rows := make([][]string, 0, s.Len()+1)
	rows = append(rows, header)
	for i := 0; i < s.Len(); i++ {
		b := s.Bar(i)
		row := make([]string, 0, len(header))
		row = append(row,
			b.Time.Format(dateLayout),
			e.format(b.Open), e.format(b.High), e.format(b.Low), e.format(b.Close), e.format(b.Volume),
		)
		for _, c := range frame.Columns {
			row = append(row, e.format(c.Values[i]))
		}
		rows = append(rows, row)
	}
	path := filepath.Join(e.Dir, FrameFileName(s.Symbol))
	return path, writeCSV(path, rows)
}

// summaryHeader is the summary table header for report.
func summaryHeader(report *model.BatchReport) []string {
	header := []string{"ticker", "date", "close"}
	header = append(header, report.Columns...)
	header = append(header, "high_52w", "low_52w", "position_52w")
	if report.Signals != nil {
		header = append(header, "signal_score", "signal_tier")
	}
	return header
}

// WriteSummary writes one row per summarized ticker.
func (e *Exporter) WriteSummary(report *model.BatchReport) (string, error) {
	rows := [][]string{summaryHeader(report)}
	for _, rec := range report.Summaries {
		row := []string{rec.Ticker, rec.Date.Format(dateLayout), e.format(rec.Close)}
		for _, name := range report.Columns {
			row = append(row, e.format(rec.Get(name)))
		}
		row = append(row, e.format(rec.High52w), e.format(rec.Low52w), e.format(rec.Position52w))
		if report.Signals != nil {
			if sig, ok := report.Signals[rec.Ticker]; ok {
				row = append(row, e.format(sig.TotalScore), sig.Tier.Label)
			} else {
				row = append(row, "", "")
			}
		}
		rows = append(rows, row)
	}
	path := filepath.Join(e.Dir, SummaryCSV)
	return path, writeCSV(path, rows)
}

// WriteSkipped writes the diagnostic list of excluded tickers.
func (e *Exporter) WriteSkipped(report *model.BatchReport) (string, error) {
	rows := [][]string{{"ticker", "reason", "message"}}
	for _, s := range report.Skipped {
		rows = append(rows, []string{s.Ticker, s.Reason, s.Message})
	}
	path := filepath.Join(e.Dir, SkippedCSV)
	return path, writeCSV(path, rows)
}

func (e *Exporter) format(v float64) string {
	return FormatValue(v, e.Precision)
}

func itoa(n int) string { return strconv.Itoa(n) }

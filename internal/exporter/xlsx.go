package exporter

import (
	"fmt"
	"math"
	"path/filepath"

	"NovaInsights/internal/model"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "Summary"
	skippedSheet = "Skipped"
)

// WriteSummaryXLSX writes the summary table and the skipped list as two
// sheets of one workbook. Undefined values are left as blank cells.
func (e *Exporter) WriteSummaryXLSX(report *model.BatchReport) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	// Replace default sheet with the summary sheet.
	if err := f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		return "", fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(skippedSheet); err != nil {
		return "", fmt.Errorf("add sheet: %w", err)
	}

	if err := setRow(f, summarySheet, 1, toAny(summaryHeader(report))); err != nil {
		return "", err
	}
	for i, rec := range report.Summaries {
		row := []interface{}{rec.Ticker, rec.Date.Format(dateLayout), e.cell(rec.Close)}
		for _, name := range report.Columns {
			row = append(row, e.cell(rec.Get(name)))
		}
		row = append(row, e.cell(rec.High52w), e.cell(rec.Low52w), e.cell(rec.Position52w))
		if report.Signals != nil {
			if sig, ok := report.Signals[rec.Ticker]; ok {
				row = append(row, e.cell(sig.TotalScore), sig.Tier.Label)
			}
		}
		if err := setRow(f, summarySheet, i+2, row); err != nil {
			return "", err
		}
	}

	if err := setRow(f, skippedSheet, 1, []interface{}{"ticker", "reason", "message"}); err != nil {
		return "", err
	}
	for i, s := range report.Skipped {
		if err := setRow(f, skippedSheet, i+2, []interface{}{s.Ticker, s.Reason, s.Message}); err != nil {
			return "", err
		}
	}

	path := filepath.Join(e.Dir, SummaryXLSX)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	return path, nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

// cell returns a rounded number, or nil for a blank cell.
func (e *Exporter) cell(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return roundValue(v, e.Precision)
}

func toAny(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

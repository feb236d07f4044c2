package exporter

import (
	"fmt"
	"log"
	"os"

	"NovaInsights/internal/analysis"
	"NovaInsights/internal/model"
)

// Exporter persists batch and news reports under an explicit directory.
type Exporter struct {
	Dir       string
	Precision int32
	XLSX      bool
}

// New creates the output directory and returns an exporter writing into it.
func New(dir string, precision int32, xlsx bool) (*Exporter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Exporter{Dir: dir, Precision: precision, XLSX: xlsx}, nil
}

// ExportBatch writes every per-ticker frame, the summary and skipped
// tables, the optional workbook and the run manifest. It returns the
// paths written.
func (e *Exporter) ExportBatch(report *model.BatchReport, cfg analysis.Config) ([]string, error) {
	var files []string
	for _, rec := range report.Summaries {
		frame, ok := report.Frames[rec.Ticker]
		if !ok {
			continue
		}
		path, err := e.WriteFrame(frame)
		if err != nil {
			return files, err
		}
		files = append(files, path)
	}

	path, err := e.WriteSummary(report)
	if err != nil {
		return files, err
	}
	files = append(files, path)

	path, err = e.WriteSkipped(report)
	if err != nil {
		return files, err
	}
	files = append(files, path)

	if e.XLSX {
		path, err = e.WriteSummaryXLSX(report)
		if err != nil {
			return files, err
		}
		files = append(files, path)
	}

	path, err = e.WriteManifest(report, cfg, files)
	if err != nil {
		return files, err
	}
	files = append(files, path)

	log.Printf("[INFO] exported %d summaries and %d skipped tickers to %s",
		len(report.Summaries), len(report.Skipped), e.Dir)
	return files, nil
}

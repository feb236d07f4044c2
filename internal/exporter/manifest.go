package exporter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"NovaInsights/internal/analysis"
	"NovaInsights/internal/model"
)

// Manifest records what one batch run produced.
type Manifest struct {
	RunID      string          `json:"run_id"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Summarized int             `json:"summarized"`
	Skipped    int             `json:"skipped"`
	Columns    []string        `json:"columns"`
	Indicators analysis.Config `json:"indicators"`
	Files      []string        `json:"files"`
	WrittenAt  time.Time       `json:"written_at"`
}

// WriteManifest writes run_manifest.json next to the exported tables.
// files are recorded relative to the output directory.
func (e *Exporter) WriteManifest(report *model.BatchReport, cfg analysis.Config, files []string) (string, error) {
	m := Manifest{
		RunID:      report.RunID,
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
		Summarized: len(report.Summaries),
		Skipped:    len(report.Skipped),
		Columns:    report.Columns,
		Indicators: cfg,
		WrittenAt:  time.Now(),
	}
	for _, f := range files {
		if rel, err := filepath.Rel(e.Dir, f); err == nil {
			f = rel
		}
		m.Files = append(m.Files, f)
	}
	path := filepath.Join(e.Dir, ManifestJSON)
	return path, writeJSON(path, m)
}

// LoadManifest reads a manifest. Returns nil if the file doesn't exist.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &m, nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	return os.WriteFile(path, data, 0644)
}

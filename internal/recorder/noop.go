package recorder

import "NovaInsights/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordBatch(_ *model.BatchReport, _ model.TriggerType) error { return nil }
func (n *NoopRecorder) TickerHistory(_ string, _ int) ([]TickerPoint, error)        { return nil, nil }
func (n *NoopRecorder) Close() error                                                { return nil }

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"NovaInsights/internal/analysis"
	"NovaInsights/internal/collector"
	"NovaInsights/internal/exporter"
	"NovaInsights/internal/model"
	"NovaInsights/internal/notifier"
	"NovaInsights/internal/recorder"
	"NovaInsights/internal/strategy"

	"github.com/robfig/cron/v3"
)

// ErrBatchRunning is returned when a run is requested while one is active.
var ErrBatchRunning = errors.New("scheduler: batch already running")

// Sender delivers chat messages.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Deps are the collaborators of a Scheduler. Notifier may be nil.
type Deps struct {
	Runner    *analysis.Runner
	Collector *collector.Collector
	Tickers   []string // configured universe; empty lists the source
	Engine    *strategy.Engine
	Exporter  *exporter.Exporter
	Notifier  Sender
	Recorder  recorder.Recorder
	TopN      int
}

// Scheduler manages the cron-driven technical batch.
type Scheduler struct {
	Cron *cron.Cron
	Ctx  context.Context
	deps Deps

	running sync.Mutex
	mu      sync.RWMutex
	latest  *model.BatchReport
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, deps Deps) *Scheduler {
	if deps.Recorder == nil {
		deps.Recorder = recorder.NewNoopRecorder()
	}
	if deps.TopN <= 0 {
		deps.TopN = 5
	}
	return &Scheduler{
		Cron: cron.New(cron.WithSeconds()),
		Ctx:  ctx,
		deps: deps,
	}
}

// Register schedules the batch task.
func (s *Scheduler) Register(batchCron string) error {
	if _, err := s.Cron.AddFunc(batchCron, s.batchTask); err != nil {
		return fmt.Errorf("register batch task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully, waiting for a running batch.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// Latest returns the most recent successful report, or nil.
func (s *Scheduler) Latest() *model.BatchReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

func (s *Scheduler) batchTask() {
	if _, err := s.RunNow(model.TriggerScheduled); err != nil {
		log.Printf("[ERROR] scheduled batch: %v", err)
	}
}

// RunNow executes one batch immediately: load, compute, score, export,
// record and notify. Export and record failures are logged, not returned.
func (s *Scheduler) RunNow(trigger model.TriggerType) (*model.BatchReport, error) {
	if !s.running.TryLock() {
		return nil, ErrBatchRunning
	}
	defer s.running.Unlock()

	log.Printf("[INFO] running batch (%s)", trigger)
	tickers, err := s.deps.Collector.Tickers(s.deps.Tickers)
	if err != nil {
		s.trySend(fmt.Sprintf("❌ Batch failed to resolve tickers: %v", err))
		return nil, fmt.Errorf("resolve tickers: %w", err)
	}

	report, err := s.deps.Runner.RunTickers(s.Ctx, s.deps.Collector, tickers)
	if err != nil {
		s.trySend(fmt.Sprintf("❌ Batch aborted: %v", err))
		return nil, err
	}
	if s.deps.Engine != nil {
		s.deps.Engine.EvaluateReport(report)
	}

	if s.deps.Exporter != nil {
		if _, err := s.deps.Exporter.ExportBatch(report, s.deps.Runner.Pipeline().Config()); err != nil {
			log.Printf("[ERROR] export batch %s: %v", report.RunID, err)
		}
	}
	if err := s.deps.Recorder.RecordBatch(report, trigger); err != nil {
		log.Printf("[ERROR] record batch %s: %v", report.RunID, err)
	}

	s.mu.Lock()
	s.latest = report
	s.mu.Unlock()

	s.trySend(notifier.FormatBatchReport(report, trigger, s.deps.TopN))
	return report, nil
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return help()
	}
	switch fields[0] {
	case "/run":
		if _, err := s.RunNow(model.TriggerManual); err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		return ""
	case "/summary":
		report := s.Latest()
		if report == nil {
			return "No batch has run yet"
		}
		return notifier.FormatBatchReport(report, model.TriggerManual, s.deps.TopN)
	case "/ticker":
		if len(fields) < 2 {
			return "Usage: /ticker <TICKER>"
		}
		return s.tickerReply(strings.ToUpper(fields[1]))
	case "/history":
		if len(fields) < 2 {
			return "Usage: /history <TICKER>"
		}
		ticker := strings.ToUpper(fields[1])
		points, err := s.deps.Recorder.TickerHistory(ticker, 10)
		if err != nil {
			log.Printf("[ERROR] ticker history: %v", err)
			return "❌ History unavailable"
		}
		return notifier.FormatHistory(ticker, points)
	default:
		return help()
	}
}

func (s *Scheduler) tickerReply(ticker string) string {
	report := s.Latest()
	if report == nil {
		return "No batch has run yet"
	}
	if rec, ok := report.Summary(ticker); ok {
		return notifier.FormatTicker(rec, report.Signals[ticker])
	}
	for _, sk := range report.Skipped {
		if sk.Ticker == ticker {
			return fmt.Sprintf("%s was skipped: %s", ticker, sk.Reason)
		}
	}
	return fmt.Sprintf("%s is not in the latest batch", ticker)
}

func help() string {
	return "Available commands:\n• /run\n• /summary\n• /ticker <TICKER>\n• /history <TICKER>"
}

func (s *Scheduler) trySend(text string) {
	if s.deps.Notifier == nil {
		return
	}
	if err := s.deps.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}

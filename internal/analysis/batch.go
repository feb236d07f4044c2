package analysis

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"NovaInsights/internal/calculator"
	"NovaInsights/internal/model"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Diagnostic reason codes for skipped tickers.
const (
	ReasonInvalidParameter    = "InvalidParameter"
	ReasonInsufficientHistory = "InsufficientHistory"
	ReasonNoCompleteRow       = "NoCompleteRow"
	ReasonLoadFailed          = "LoadFailed"
	ReasonDuplicateTicker     = "DuplicateTicker"
)

var (
	errDuplicateTicker = errors.New("analysis: ticker already in batch")
	errNilSeries       = errors.New("analysis: source returned no series")
)

// ReasonOf maps a per-ticker error to its diagnostic reason code.
func ReasonOf(err error) string {
	switch {
	case errors.Is(err, ErrNoCompleteRow):
		return ReasonNoCompleteRow
	case errors.Is(err, calculator.ErrInvalidParameter):
		return ReasonInvalidParameter
	case errors.Is(err, ErrInsufficientHistory):
		return ReasonInsufficientHistory
	case errors.Is(err, errDuplicateTicker):
		return ReasonDuplicateTicker
	default:
		return ReasonLoadFailed
	}
}

// Source loads the price series of one ticker.
type Source interface {
	Load(ctx context.Context, ticker string) (*model.PriceSeries, error)
}

// Observer receives per-ticker and per-run outcomes, e.g. for metrics.
type Observer interface {
	ObserveTicker(ticker, reason string)
	ObserveRun(elapsed time.Duration, summarized, skipped int)
}

// Result is the outcome of one ticker: either Summary is set or Err is.
type Result struct {
	Ticker  string
	Frame   *model.IndicatorFrame
	Summary *model.SummaryRecord
	Err     error
}

// Runner applies the pipeline and summary extraction to many tickers.
type Runner struct {
	pipeline *Pipeline
	tracked  []string
	workers  int
	observer Observer
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithWorkers bounds the number of tickers processed concurrently.
func WithWorkers(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithObserver attaches an Observer.
func WithObserver(o Observer) RunnerOption {
	return func(r *Runner) { r.observer = o }
}

// WithTracked restricts the summarized columns. By default every
// indicator column is tracked.
func WithTracked(columns ...string) RunnerOption {
	return func(r *Runner) { r.tracked = columns }
}

// NewRunner validates cfg up front so that configuration errors surface
// before any ticker is processed.
func NewRunner(cfg Config, opts ...RunnerOption) (*Runner, error) {
	p, err := NewPipeline(cfg)
	if err != nil {
		return nil, err
	}
	r := &Runner{pipeline: p, tracked: cfg.Columns(), workers: 1}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Pipeline returns the runner's pipeline.
func (r *Runner) Pipeline() *Pipeline { return r.pipeline }

// Run processes already-loaded series.
func (r *Runner) Run(ctx context.Context, series []*model.PriceSeries) (*model.BatchReport, error) {
	jobs := make([]job, len(series))
	for i, s := range series {
		s := s
		ticker := fmt.Sprintf("series[%d]", i)
		if s != nil {
			ticker = s.Symbol
		}
		jobs[i] = job{ticker: ticker, load: func(context.Context) (*model.PriceSeries, error) { return s, nil }}
	}
	return r.run(ctx, jobs)
}

// RunTickers loads each ticker from src and processes it. Load failures
// are recorded like any other per-ticker failure.
func (r *Runner) RunTickers(ctx context.Context, src Source, tickers []string) (*model.BatchReport, error) {
	jobs := make([]job, len(tickers))
	for i, t := range tickers {
		t := t
		jobs[i] = job{ticker: t, load: func(ctx context.Context) (*model.PriceSeries, error) { return src.Load(ctx, t) }}
	}
	return r.run(ctx, jobs)
}

type job struct {
	ticker string
	load   func(context.Context) (*model.PriceSeries, error)
}

func (r *Runner) run(ctx context.Context, jobs []job) (*model.BatchReport, error) {
	report := &model.BatchReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Columns:   append([]string(nil), r.tracked...),
		Frames:    make(map[string]*model.IndicatorFrame),
	}
	log.Printf("[INFO] batch %s: processing %d tickers with %d workers", report.RunID, len(jobs), r.workers)

	results := make([]Result, len(jobs))
	seen := make(map[string]bool, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, j := range jobs {
		if seen[j.ticker] {
			results[i] = Result{Ticker: j.ticker, Err: fmt.Errorf("%s: %w", j.ticker, errDuplicateTicker)}
			continue
		}
		seen[j.ticker] = true

		i, j := i, j
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.process(gctx, j)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch %s: %w", report.RunID, err)
	}

	for _, res := range results {
		if res.Err != nil {
			reason := ReasonOf(res.Err)
			log.Printf("[WARN] skipping %s (%s): %v", res.Ticker, reason, res.Err)
			report.Skipped = append(report.Skipped, model.SkippedTicker{
				Ticker:  res.Ticker,
				Reason:  reason,
				Message: res.Err.Error(),
			})
			r.observeTicker(res.Ticker, reason)
			continue
		}
		report.Summaries = append(report.Summaries, *res.Summary)
		report.Frames[res.Ticker] = res.Frame
		r.observeTicker(res.Ticker, "")
	}
	sort.Slice(report.Summaries, func(i, j int) bool { return report.Summaries[i].Ticker < report.Summaries[j].Ticker })
	sort.SliceStable(report.Skipped, func(i, j int) bool { return report.Skipped[i].Ticker < report.Skipped[j].Ticker })

	report.FinishedAt = time.Now()
	if r.observer != nil {
		r.observer.ObserveRun(report.FinishedAt.Sub(report.StartedAt), len(report.Summaries), len(report.Skipped))
	}
	log.Printf("[INFO] batch %s: %d summarized, %d skipped in %v",
		report.RunID, len(report.Summaries), len(report.Skipped), report.FinishedAt.Sub(report.StartedAt))
	return report, nil
}

// process runs one ticker end to end. Failures are returned in the
// Result, never propagated.
func (r *Runner) process(ctx context.Context, j job) Result {
	res := Result{Ticker: j.ticker}
	series, err := j.load(ctx)
	if err != nil {
		res.Err = fmt.Errorf("load %s: %w", j.ticker, err)
		return res
	}
	if series == nil {
		res.Err = fmt.Errorf("load %s: %w", j.ticker, errNilSeries)
		return res
	}
	frame, err := r.pipeline.Run(series)
	if err != nil {
		res.Err = err
		return res
	}
	summary, err := Summarize(frame, r.tracked)
	if err != nil {
		res.Err = err
		return res
	}
	summary.Ticker = j.ticker
	res.Frame = frame
	res.Summary = summary
	return res
}

func (r *Runner) observeTicker(ticker, reason string) {
	if r.observer != nil {
		r.observer.ObserveTicker(ticker, reason)
	}
}

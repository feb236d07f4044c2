package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// outcomeOK labels tickers that produced a summary.
const outcomeOK = "ok"

// Metrics holds all Prometheus metrics for the batch runner. It
// implements analysis.Observer.
type Metrics struct {
	RunsTotal      prometheus.Counter
	TickersTotal   *prometheus.CounterVec // labels: outcome
	RunDuration    prometheus.Histogram
	LastSummarized prometheus.Gauge
	LastSkipped    prometheus.Gauge
	LastRunTime    prometheus.Gauge

	registry *prometheus.Registry
	health   *HealthStatus
}

// NewMetrics registers and returns all Prometheus metrics on a private
// registry that also carries the Go runtime collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nova_batch_runs_total",
			Help: "Total technical batch runs completed",
		}),
		TickersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nova_batch_tickers_total",
			Help: "Tickers processed, by outcome (ok or skip reason)",
		}, []string{"outcome"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nova_batch_duration_seconds",
			Help:    "Wall-clock duration of one batch run",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
		}),
		LastSummarized: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nova_batch_last_summarized",
			Help: "Tickers summarized by the most recent run",
		}),
		LastSkipped: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nova_batch_last_skipped",
			Help: "Tickers skipped by the most recent run",
		}),
		LastRunTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nova_batch_last_run_timestamp_seconds",
			Help: "Unix time the most recent run finished",
		}),
		registry: prometheus.NewRegistry(),
		health:   &HealthStatus{StartedAt: time.Now()},
	}

	m.registry.MustRegister(
		m.RunsTotal,
		m.TickersTotal,
		m.RunDuration,
		m.LastSummarized,
		m.LastSkipped,
		m.LastRunTime,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveTicker counts one ticker outcome. An empty reason means success.
func (m *Metrics) ObserveTicker(_ string, reason string) {
	if reason == "" {
		reason = outcomeOK
	}
	m.TickersTotal.WithLabelValues(reason).Inc()
}

// ObserveRun records the totals of a finished run.
func (m *Metrics) ObserveRun(elapsed time.Duration, summarized, skipped int) {
	m.RunsTotal.Inc()
	m.RunDuration.Observe(elapsed.Seconds())
	m.LastSummarized.Set(float64(summarized))
	m.LastSkipped.Set(float64(skipped))
	m.LastRunTime.SetToCurrentTime()
	m.health.recordRun(summarized, skipped)
}

// Handler serves the metrics registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// HealthStatus reports the outcome of the most recent batch.
type HealthStatus struct {
	mu sync.RWMutex

	StartedAt      time.Time `json:"started_at"`
	LastRunAt      time.Time `json:"last_run_at"`
	LastSummarized int       `json:"last_summarized"`
	LastSkipped    int       `json:"last_skipped"`
	Runs           int       `json:"runs"`
}

func (h *HealthStatus) recordRun(summarized, skipped int) {
	h.mu.Lock()
	h.LastRunAt = time.Now()
	h.LastSummarized = summarized
	h.LastSkipped = skipped
	h.Runs++
	h.mu.Unlock()
}

// ServeHTTP handles the /healthz endpoint. A run that summarized nothing
// while skipping tickers reports degraded.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	overallStatus := "healthy"
	httpCode := http.StatusOK
	if h.Runs > 0 && h.LastSummarized == 0 && h.LastSkipped > 0 {
		overallStatus = "degraded"
		httpCode = http.StatusServiceUnavailable
	}

	status := struct {
		Status         string `json:"status"`
		Uptime         string `json:"uptime"`
		Runs           int    `json:"runs"`
		LastRunAt      string `json:"last_run_at,omitempty"`
		LastSummarized int    `json:"last_summarized"`
		LastSkipped    int    `json:"last_skipped"`
	}{
		Status:         overallStatus,
		Uptime:         time.Since(h.StartedAt).Round(time.Second).String(),
		Runs:           h.Runs,
		LastSummarized: h.LastSummarized,
		LastSkipped:    h.LastSkipped,
	}
	if !h.LastRunAt.IsZero() {
		status.LastRunAt = h.LastRunAt.Format(time.RFC3339)
	}

	w.Header().Set("Content-Type", "application/json")
	if httpCode != http.StatusOK {
		w.WriteHeader(httpCode)
	}
	json.NewEncoder(w).Encode(status)
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	addr string
	srv  *http.Server
}

// NewServer creates a metrics and health server.
func NewServer(addr string, m *Metrics) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.Handle("/healthz", m.health)

	return &Server{
		addr: addr,
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start serves in the background until Shutdown.
func (s *Server) Start() {
	go func() {
		log.Printf("[INFO] metrics server listening on %s", s.addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[ERROR] metrics server: %v", err)
		}
	}()
}

// Shutdown stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"NovaInsights/internal/analysis"
	"NovaInsights/internal/collector"
	"NovaInsights/internal/config"
	"NovaInsights/internal/exporter"
	"NovaInsights/internal/metrics"
	"NovaInsights/internal/model"
	"NovaInsights/internal/notifier"
	"NovaInsights/internal/recorder"
	"NovaInsights/internal/scheduler"
	"NovaInsights/internal/strategy"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	defaultPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultPath = v
	}
	cfgPath := flag.String("config", defaultPath, "path to the YAML config file")
	once := flag.Bool("once", false, "run a single batch and exit")
	flag.Parse()

	log.Println("[INFO] NovaInsights technicals starting...")

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	fetcher, err := newFetcher(cfg)
	if err != nil {
		log.Fatalf("[FATAL] init fetcher: %v", err)
	}
	log.Printf("[INFO] data source: %s", fetcher.Name())
	col := collector.NewCollector(fetcher, cfg.DataSource.HistoryDays)

	m := metrics.NewMetrics()
	runner, err := analysis.NewRunner(cfg.Indicators,
		analysis.WithWorkers(cfg.Batch.Workers),
		analysis.WithObserver(m),
	)
	if err != nil {
		log.Fatalf("[FATAL] init pipeline: %v", err)
	}

	exp, err := exporter.New(cfg.Output.TechnicalDir, cfg.Output.Precision, cfg.Output.XLSX)
	if err != nil {
		log.Fatalf("[FATAL] init exporter: %v", err)
	}

	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps := scheduler.Deps{
		Runner:    runner,
		Collector: col,
		Tickers:   cfg.DataSource.Tickers,
		Engine:    strategy.NewEngine(cfg.Indicators),
		Exporter:  exp,
		Recorder:  rec,
	}
	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		deps.Notifier = tn
	}
	sched := scheduler.NewScheduler(ctx, deps)

	if *once {
		report, err := sched.RunNow(model.TriggerManual)
		if err != nil {
			log.Fatalf("[FATAL] batch: %v", err)
		}
		log.Printf("[INFO] batch %s done: %d summarized, %d skipped", report.RunID, len(report.Summaries), len(report.Skipped))
		return
	}

	if cfg.Metrics.ListenAddr != "" {
		srv := metrics.NewServer(cfg.Metrics.ListenAddr, m)
		srv.Start()
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Printf("[WARN] metrics shutdown: %v", err)
			}
		}()
	}

	if err := sched.Register(cfg.Schedule.BatchCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	if cfg.Schedule.RunOnStart {
		log.Println("[INFO] run_on_start enabled, executing batch now")
		go func() {
			if _, err := sched.RunNow(model.TriggerStartup); err != nil {
				log.Printf("[ERROR] startup batch: %v", err)
			}
		}()
	}

	log.Println("[INFO] NovaInsights is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
}

func newFetcher(cfg *config.Config) (collector.Fetcher, error) {
	switch cfg.DataSource.Provider {
	case "csv":
		return collector.NewCSVFetcher(cfg.DataSource.PriceDir), nil
	case "yahoo":
		return collector.NewYahooFetcher(cfg.Proxy), nil
	case "rest":
		return collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy), nil
	case "mock":
		return &collector.MockFetcher{Price: 100}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.DataSource.Provider)
	}
}

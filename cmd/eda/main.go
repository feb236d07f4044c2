package main

import (
	"flag"
	"log"
	"os"

	"NovaInsights/internal/config"
	"NovaInsights/internal/exporter"
	"NovaInsights/internal/newsstats"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	defaultPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultPath = v
	}
	cfgPath := flag.String("config", defaultPath, "path to the YAML config file")
	input := flag.String("input", "", "news CSV (overrides news.raw_path)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}
	path := cfg.News.RawPath
	if *input != "" {
		path = *input
	}

	log.Printf("[INFO] loading news corpus from %s", path)
	res, err := newsstats.LoadFile(path)
	if err != nil {
		log.Fatalf("[FATAL] load news: %v", err)
	}
	rep, err := newsstats.Analyze(res)
	if err != nil {
		log.Fatalf("[FATAL] analyze news: %v", err)
	}

	exp, err := exporter.New(cfg.Output.EDADir, cfg.Output.Precision, false)
	if err != nil {
		log.Fatalf("[FATAL] init exporter: %v", err)
	}
	files, err := exp.ExportNews(rep)
	if err != nil {
		log.Fatalf("[FATAL] export: %v", err)
	}

	c := rep.Publishers.Concentration
	log.Printf("[INFO] %d articles (%d skipped), %d publishers, gini %.3f (%s)",
		rep.Articles, rep.Skipped, c.TotalPublishers, c.Gini, c.Interpretation)
	log.Printf("[INFO] peak weekday %s, peak hour %02d:00 UTC", rep.Time.PeakWeekday.Key, rep.Time.PeakHour)
	log.Printf("[INFO] wrote %d files to %s", len(files), cfg.Output.EDADir)
}

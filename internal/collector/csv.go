package collector

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"NovaInsights/internal/model"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05-07:00",
	"01/02/2006",
}

// CSVFetcher reads <Dir>/<ticker>.csv files with Date, Open, High, Low,
// Close and Volume columns.
type CSVFetcher struct {
	Dir string
}

// NewCSVFetcher creates a fetcher over a directory of price files.
func NewCSVFetcher(dir string) *CSVFetcher {
	return &CSVFetcher{Dir: dir}
}

func (f *CSVFetcher) Name() string { return "csv" }

// ListTickers returns the upper-cased stem of every *.csv file, sorted.
func (f *CSVFetcher) ListTickers() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(f.Dir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("list price files: %w", err)
	}
	tickers := make([]string, 0, len(matches))
	for _, m := range matches {
		stem := strings.TrimSuffix(filepath.Base(m), filepath.Ext(m))
		tickers = append(tickers, strings.ToUpper(stem))
	}
	sort.Strings(tickers)
	return tickers, nil
}

// FetchDailyBars reads the ticker's file. days <= 0 returns every bar,
// otherwise the most recent days bars.
func (f *CSVFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := f.resolve(symbol)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	bars, err := ParsePriceCSV(file)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	if days > 0 && len(bars) > days {
		bars = bars[len(bars)-days:]
	}
	return bars, nil
}

// resolve finds the file for symbol, tolerating lower-case file names.
func (f *CSVFetcher) resolve(symbol string) (string, error) {
	for _, name := range []string{symbol, strings.ToLower(symbol), strings.ToUpper(symbol)} {
		path := filepath.Join(f.Dir, name+".csv")
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no price file for %s in %s", symbol, f.Dir)
}

// ParsePriceCSV reads a price table. Header names are matched
// case-insensitively; numeric fields that do not parse become NaN and
// rows whose date does not parse are skipped.
func ParsePriceCSV(r io.Reader) ([]model.OHLCV, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, col := range []string{"date", "open", "high", "low", "close", "volume"} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	field := func(rec []string, col string) string {
		i := idx[col]
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var bars []model.OHLCV
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		ts, err := ParseDate(field(rec, "date"))
		if err != nil {
			continue
		}
		bars = append(bars, model.OHLCV{
			Time:   ts,
			Open:   coerce(field(rec, "open")),
			High:   coerce(field(rec, "high")),
			Low:    coerce(field(rec, "low")),
			Close:  coerce(field(rec, "close")),
			Volume: coerce(field(rec, "volume")),
		})
	}
	return bars, nil
}

// ParseDate accepts the date layouts found in exported price files.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

func coerce(s string) float64 {
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}

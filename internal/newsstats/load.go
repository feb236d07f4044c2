package newsstats

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"NovaInsights/internal/collector"
	"NovaInsights/internal/model"
)

// UnknownPublisher replaces an empty publisher field.
const UnknownPublisher = "Unknown"

// NotEmail is the domain of publishers that are not e-mail addresses.
const NotEmail = "not_email"

// LoadResult is a parsed corpus plus the number of rows dropped.
type LoadResult struct {
	Articles []model.Article
	Skipped  int
}

// LoadFile reads a headline corpus from path.
func LoadFile(path string) (*LoadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open news corpus: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load parses a corpus with headline, url, publisher, date and stock
// columns. Malformed lines and rows with an unparseable date are
// skipped and counted rather than failing the load.
func Load(r io.Reader) (*LoadResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range []string{"headline", "publisher", "date"} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}
	field := func(rec []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.ToValidUTF8(rec[i], "\uFFFD")
	}

	res := &LoadResult{}
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) || len(rec) > len(header) {
			res.Skipped++
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		ts, err := collector.ParseDate(strings.TrimSpace(field(rec, "date")))
		if err != nil {
			res.Skipped++
			continue
		}
		publisher := field(rec, "publisher")
		if publisher == "" {
			publisher = UnknownPublisher
		}
		res.Articles = append(res.Articles, model.Article{
			Headline:        field(rec, "headline"),
			URL:             field(rec, "url"),
			Publisher:       publisher,
			PublisherDomain: PublisherDomain(publisher),
			Date:            ts.UTC(),
			Stock:           field(rec, "stock"),
		})
	}
	if res.Skipped > 0 {
		log.Printf("[WARN] news corpus: skipped %d malformed rows", res.Skipped)
	}
	return res, nil
}

// PublisherDomain returns the lower-cased text after the first '@', or
// NotEmail.
func PublisherDomain(publisher string) string {
	_, domain, ok := strings.Cut(publisher, "@")
	if !ok || domain == "" {
		return NotEmail
	}
	return strings.ToLower(domain)
}

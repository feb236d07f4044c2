package exporter

import (
	"fmt"
	"path/filepath"

	"NovaInsights/internal/newsstats"
)

// ExportNews writes the news corpus tables and statistics.
func (e *Exporter) ExportNews(rep *newsstats.Report) ([]string, error) {
	steps := []struct {
		name  string
		write func(string) error
	}{
		{"headline_length_stats.csv", func(p string) error { return writeCSV(p, e.lengthRows(rep)) }},
		{"statistical_analysis.json", func(p string) error { return writeJSON(p, lengthMoments(rep)) }},
		{"publisher_article_counts.csv", func(p string) error {
			return writeCSV(p, countRows("publisher", rep.Publishers.Publishers))
		}},
		{"publisher_domain_counts.csv", func(p string) error {
			return writeCSV(p, countRows("publisher_domain", rep.Publishers.Domains))
		}},
		{"publisher_concentration_stats.json", func(p string) error { return writeJSON(p, rep.Publishers.Concentration) }},
		{"daily_publication_counts.csv", func(p string) error { return writeCSV(p, dailyRows(rep.Time)) }},
		{"weekday_publication_counts.csv", func(p string) error {
			return writeCSV(p, countRows("publish_dayofweek", rep.Time.Weekday))
		}},
		{"hourly_publication_counts.csv", func(p string) error { return writeCSV(p, hourlyRows(rep.Time)) }},
		{"time_series_statistics.json", func(p string) error { return writeJSON(p, timeStats(rep.Time)) }},
	}

	files := make([]string, 0, len(steps))
	for _, s := range steps {
		path := filepath.Join(e.Dir, s.name)
		if err := s.write(path); err != nil {
			return files, fmt.Errorf("export %s: %w", s.name, err)
		}
		files = append(files, path)
	}
	return files, nil
}

// lengthRows lays the two distributions out as describe() does: one row
// per statistic, one column per measure.
func (e *Exporter) lengthRows(rep *newsstats.Report) [][]string {
	c, w := rep.HeadlineChars, rep.HeadlineWords
	rows := [][]string{
		{"", "headline_len_chars", "headline_len_words"},
		{"count", itoa(c.Count), itoa(w.Count)},
	}
	for _, r := range []struct {
		name string
		c, w float64
	}{
		{"mean", c.Mean, w.Mean},
		{"std", c.Std, w.Std},
		{"min", c.Min, w.Min},
		{"25%", c.Q25, w.Q25},
		{"50%", c.Median, w.Median},
		{"75%", c.Q75, w.Q75},
		{"max", c.Max, w.Max},
	} {
		rows = append(rows, []string{r.name, e.format(r.c), e.format(r.w)})
	}
	return rows
}

type moments struct {
	Mean     *float64 `json:"mean"`
	Median   *float64 `json:"median"`
	Std      *float64 `json:"std"`
	Skewness *float64 `json:"skewness"`
	Kurtosis *float64 `json:"kurtosis"`
}

func toMoments(d newsstats.Distribution) moments {
	return moments{
		Mean:     jsonFloat(d.Mean),
		Median:   jsonFloat(d.Median),
		Std:      jsonFloat(d.Std),
		Skewness: jsonFloat(d.Skewness),
		Kurtosis: jsonFloat(d.Kurtosis),
	}
}

func lengthMoments(rep *newsstats.Report) map[string]moments {
	return map[string]moments{
		"char_length": toMoments(rep.HeadlineChars),
		"word_length": toMoments(rep.HeadlineWords),
	}
}

func countRows(key string, counts []newsstats.Count) [][]string {
	rows := [][]string{{key, "article_count"}}
	for _, c := range counts {
		rows = append(rows, []string{c.Key, itoa(c.Count)})
	}
	return rows
}

func dailyRows(t newsstats.TimeReport) [][]string {
	rows := [][]string{{"publish_date", "article_count"}}
	for _, d := range t.Daily {
		rows = append(rows, []string{d.Date.Format(dateLayout), itoa(d.Count)})
	}
	return rows
}

func hourlyRows(t newsstats.TimeReport) [][]string {
	rows := [][]string{{"publish_hour_utc", "article_count"}}
	for _, h := range t.Hourly {
		rows = append(rows, []string{itoa(h.Hour), itoa(h.Count)})
	}
	return rows
}

func timeStats(t newsstats.TimeReport) map[string]interface{} {
	return map[string]interface{}{
		"date_range": t.Range,
		"peak_weekday": map[string]interface{}{
			"publish_dayofweek": t.PeakWeekday.Key,
			"article_count":     t.PeakWeekday.Count,
		},
		"peak_hour": t.PeakHour,
	}
}

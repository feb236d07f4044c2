package newsstats

import (
	"errors"
	"time"
)

// ErrEmptyCorpus indicates no article survived loading.
var ErrEmptyCorpus = errors.New("newsstats: corpus has no articles")

// Report is the full descriptive summary of a news corpus.
type Report struct {
	GeneratedAt   time.Time
	Articles      int
	Skipped       int
	HeadlineChars Distribution
	HeadlineWords Distribution
	Publishers    PublisherReport
	Time          TimeReport
}

// Analyze computes headline length, publisher and publication-time
// statistics.
func Analyze(res *LoadResult) (*Report, error) {
	if res == nil || len(res.Articles) == 0 {
		return nil, ErrEmptyCorpus
	}
	chars := make([]float64, len(res.Articles))
	words := make([]float64, len(res.Articles))
	for i, a := range res.Articles {
		chars[i] = float64(HeadlineChars(a.Headline))
		words[i] = float64(HeadlineWords(a.Headline))
	}
	return &Report{
		GeneratedAt:   time.Now().UTC(),
		Articles:      len(res.Articles),
		Skipped:       res.Skipped,
		HeadlineChars: Describe(chars),
		HeadlineWords: Describe(words),
		Publishers:    AnalyzePublishers(res.Articles),
		Time:          AnalyzeTime(res.Articles),
	}, nil
}

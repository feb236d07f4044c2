package newsstats

import (
	"math"
	"regexp"
	"sort"
	"unicode/utf8"

	"gonum.org/v1/gonum/stat"
)

var wordRe = regexp.MustCompile(`[\p{L}\p{N}\p{Mn}_]+`)

// HeadlineChars is the headline length in characters.
func HeadlineChars(s string) int { return utf8.RuneCountInString(s) }

// HeadlineWords counts the word tokens of a headline.
func HeadlineWords(s string) int { return len(wordRe.FindAllStringIndex(s, -1)) }

// Distribution is the descriptive summary of one numeric sample.
type Distribution struct {
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	Std      float64 `json:"std"`
	Min      float64 `json:"min"`
	Q25      float64 `json:"q25"`
	Median   float64 `json:"median"`
	Q75      float64 `json:"q75"`
	Max      float64 `json:"max"`
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis"` // excess
}

// Describe summarizes values. Std is the sample deviation; skewness and
// kurtosis are the biased moment estimators. An empty sample yields NaN
// everywhere except Count.
func Describe(values []float64) Distribution {
	d := Distribution{Count: len(values)}
	if len(values) == 0 {
		nan := math.NaN()
		d.Mean, d.Std, d.Min, d.Q25, d.Median, d.Q75, d.Max, d.Skewness, d.Kurtosis = nan, nan, nan, nan, nan, nan, nan, nan, nan
		return d
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	d.Mean, d.Std = stat.MeanStdDev(sorted, nil)
	d.Min = sorted[0]
	d.Max = sorted[len(sorted)-1]
	d.Q25 = quantile(sorted, 0.25)
	d.Median = quantile(sorted, 0.50)
	d.Q75 = quantile(sorted, 0.75)

	m2 := stat.Moment(2, sorted, nil)
	if m2 == 0 {
		d.Skewness, d.Kurtosis = math.NaN(), math.NaN()
		return d
	}
	d.Skewness = stat.Moment(3, sorted, nil) / math.Pow(m2, 1.5)
	d.Kurtosis = stat.Moment(4, sorted, nil)/(m2*m2) - 3
	return d
}

// quantile interpolates linearly between closest ranks at (n-1)*p.
// sorted must be ascending and non-empty.
func quantile(sorted []float64, p float64) float64 {
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

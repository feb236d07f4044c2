package newsstats

import (
	"sort"

	"NovaInsights/internal/model"
)

// Count is one key with its article count.
type Count struct {
	Key   string `json:"key"`
	Count int    `json:"article_count"`
}

// Concentration describes how articles are spread across publishers.
type Concentration struct {
	TotalPublishers int     `json:"total_publishers"`
	TotalArticles   int     `json:"total_articles"`
	Top10Percentage float64 `json:"top_10_percentage"`
	Gini            float64 `json:"gini_coefficient"`
	Interpretation  string  `json:"concentration_interpretation"`
}

// PublisherReport holds publisher and domain article counts, each sorted
// by count descending then key ascending.
type PublisherReport struct {
	Publishers    []Count
	Domains       []Count
	Concentration Concentration
}

// AnalyzePublishers counts articles per publisher and per domain.
func AnalyzePublishers(articles []model.Article) PublisherReport {
	byPublisher := make(map[string]int)
	byDomain := make(map[string]int)
	for _, a := range articles {
		byPublisher[a.Publisher]++
		byDomain[a.PublisherDomain]++
	}
	rep := PublisherReport{
		Publishers: sortedCounts(byPublisher),
		Domains:    sortedCounts(byDomain),
	}

	counts := make([]float64, len(rep.Publishers))
	top := 0
	for i, c := range rep.Publishers {
		counts[i] = float64(c.Count)
		if i < 10 {
			top += c.Count
		}
	}
	rep.Concentration = Concentration{
		TotalPublishers: len(rep.Publishers),
		TotalArticles:   len(articles),
		Gini:            Gini(counts),
	}
	if len(articles) > 0 {
		rep.Concentration.Top10Percentage = float64(top) / float64(len(articles)) * 100
	}
	rep.Concentration.Interpretation = "Moderately concentrated"
	if rep.Concentration.Gini > 0.7 {
		rep.Concentration.Interpretation = "Highly concentrated"
	}
	return rep
}

// Gini returns the Gini coefficient of non-negative values:
// 2*sum(i*x_i) / (n*sum(x)) - (n+1)/n over ascending x, i from 1.
// It is 0 for an empty or all-zero input.
func Gini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	var weighted, total float64
	for i, v := range sorted {
		weighted += float64(i+1) * v
		total += v
	}
	if total == 0 {
		return 0
	}
	return 2*weighted/(float64(n)*total) - float64(n+1)/float64(n)
}

func sortedCounts(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for k, v := range m {
		out = append(out, Count{Key: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

package newsstats

import (
	"sort"
	"time"

	"NovaInsights/internal/model"
)

var weekdayOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// DayCount is the number of articles published on one UTC date.
type DayCount struct {
	Date  time.Time
	Count int
}

// HourCount is the number of articles published in one UTC hour.
type HourCount struct {
	Hour  int
	Count int
}

// DateRange spans the first and last publication dates.
type DateRange struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	TotalDays int    `json:"total_days"`
}

// TimeReport is the publication-time breakdown of a corpus.
type TimeReport struct {
	Daily       []DayCount  // ascending by date
	Weekday     []Count     // Monday..Sunday, zero-filled
	Hourly      []HourCount // ascending, hours with articles only
	Range       DateRange
	PeakWeekday Count
	PeakHour    int
}

// AnalyzeTime buckets articles by UTC date, weekday and hour. Ties for
// the peak go to the earlier weekday and the earlier hour.
func AnalyzeTime(articles []model.Article) TimeReport {
	var rep TimeReport
	if len(articles) == 0 {
		return rep
	}
	daily := make(map[time.Time]int)
	weekday := make(map[time.Weekday]int)
	hourly := make(map[int]int)
	for _, a := range articles {
		t := a.Date.UTC()
		y, m, d := t.Date()
		daily[time.Date(y, m, d, 0, 0, 0, 0, time.UTC)]++
		weekday[t.Weekday()]++
		hourly[t.Hour()]++
	}

	for day, n := range daily {
		rep.Daily = append(rep.Daily, DayCount{Date: day, Count: n})
	}
	sort.Slice(rep.Daily, func(i, j int) bool { return rep.Daily[i].Date.Before(rep.Daily[j].Date) })

	for _, wd := range weekdayOrder {
		c := Count{Key: wd.String(), Count: weekday[wd]}
		rep.Weekday = append(rep.Weekday, c)
		if c.Count > rep.PeakWeekday.Count {
			rep.PeakWeekday = c
		}
	}

	best := -1
	for h := 0; h < 24; h++ {
		n, ok := hourly[h]
		if !ok {
			continue
		}
		rep.Hourly = append(rep.Hourly, HourCount{Hour: h, Count: n})
		if n > best {
			best = n
			rep.PeakHour = h
		}
	}

	first, last := rep.Daily[0].Date, rep.Daily[len(rep.Daily)-1].Date
	rep.Range = DateRange{
		Start:     first.Format("2006-01-02"),
		End:       last.Format("2006-01-02"),
		TotalDays: int(last.Sub(first).Hours() / 24),
	}
	return rep
}

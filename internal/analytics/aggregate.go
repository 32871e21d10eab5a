// Package analytics computes the lead dashboard summary and keeps it current as the
// record store changes.
package analytics

import (
	"sort"
	"time"

	"luxeleads/internal/models"
)

// DefaultDateLayout formats trend labels as month/day/year.
const DefaultDateLayout = "1/2/2006"

// StatusPair is one status record.
type StatusPair struct {
	LeadID string
	Status string
}

// ScorePair is a scored lead and its tier.
type ScorePair struct {
	LeadID string
	Tier   string
	Score  int64
}

// Input is the raw material of one aggregation pass.
type Input struct {
	TotalLeads     int64
	Statuses       []StatusPair
	Scores         []ScorePair
	ConvertedCount int64
	Created        []time.Time // creation times inside the trend window
	GeneratedAt    time.Time
}

// Options controls how trend buckets are computed and labelled.
type Options struct {
	Location   *time.Location // nil means time.Local
	DateLayout string         // empty means DefaultDateLayout
}

// Aggregate builds an AggregateView from in. It performs no I/O and never fails.
func Aggregate(in Input, opts Options) *models.AggregateView {
	byStatus := GroupStatuses(in.Statuses)
	view := &models.AggregateView{
		TotalLeads:     in.TotalLeads,
		LeadsByStatus:  byStatus,
		LeadsByScore:   GroupScores(in.Scores),
		ConversionRate: ConversionRate(in.ConvertedCount, in.TotalLeads),
		LeadsTrend:     Trend(in.Created, opts.Location, opts.DateLayout),
		AverageScore:   AverageScore(in.Scores),
		GeneratedAt:    in.GeneratedAt,
	}
	view.ActiveLeads = view.CountForStatus(models.StatusNew)
	return view
}

// GroupStatuses counts status records per status value. Only observed values appear,
// in order of first observation. Empty statuses are skipped.
func GroupStatuses(pairs []StatusPair) []models.StatusCount {
	out := []models.StatusCount{}
	index := make(map[string]int)
	for _, p := range pairs {
		if p.Status == "" {
			continue
		}
		i, ok := index[p.Status]
		if !ok {
			i = len(out)
			index[p.Status] = i
			out = append(out, models.StatusCount{Status: p.Status})
		}
		out[i].Count++
	}
	return out
}

// GroupScores counts scored leads per tier name, with the same contract as
// GroupStatuses.
func GroupScores(pairs []ScorePair) []models.ScoreCount {
	out := []models.ScoreCount{}
	index := make(map[string]int)
	for _, p := range pairs {
		if p.Tier == "" {
			continue
		}
		i, ok := index[p.Tier]
		if !ok {
			i = len(out)
			index[p.Tier] = i
			out = append(out, models.ScoreCount{Name: p.Tier})
		}
		out[i].Count++
	}
	return out
}

// ConversionRate returns converted as a percentage of total, or 0 when total is 0.
func ConversionRate(converted, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(converted) / float64(total) * 100
}

// AverageScore returns the mean score over tiered leads, or 0 when there are none.
func AverageScore(pairs []ScorePair) float64 {
	var sum, n int64
	for _, p := range pairs {
		if p.Tier == "" {
			continue
		}
		sum += p.Score
		n++
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

// Trend counts timestamps per calendar day in loc. Days without leads are omitted and
// points are sorted by date, never by label.
func Trend(created []time.Time, loc *time.Location, layout string) []models.TrendPoint {
	if loc == nil {
		loc = time.Local
	}
	if layout == "" {
		layout = DefaultDateLayout
	}

	counts := make(map[civilDate]int64)
	for _, ts := range created {
		if ts.IsZero() {
			continue
		}
		y, m, d := ts.In(loc).Date()
		counts[civilDate{y, m, d}]++
	}

	days := make([]civilDate, 0, len(counts))
	for day := range counts {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].before(days[j]) })

	out := make([]models.TrendPoint, 0, len(days))
	for _, day := range days {
		// Noon exists on every day; midnight is skipped by some DST transitions.
		at := time.Date(day.year, day.month, day.day, 12, 0, 0, 0, loc)
		out = append(out, models.TrendPoint{Date: at, Label: at.Format(layout), Count: counts[day]})
	}
	return out
}

type civilDate struct {
	year  int
	month time.Month
	day   int
}

func (c civilDate) before(o civilDate) bool {
	if c.year != o.year {
		return c.year < o.year
	}
	if c.month != o.month {
		return c.month < o.month
	}
	return c.day < o.day
}

package models

import "time"

// StatusCount is the number of status records holding a given status.
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// ScoreCount is the number of leads in a given score tier.
type ScoreCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// TrendPoint is the number of leads created on one calendar day.
type TrendPoint struct {
	Date  time.Time `json:"date"` // noon of the day in the viewer's location
	Label string    `json:"label"`
	Count int64     `json:"count"`
}

// AggregateView is the lead dashboard summary. It is rebuilt on every pass and
// must be treated as read-only once published.
type AggregateView struct {
	TotalLeads     int64         `json:"total_leads"`
	LeadsByStatus  []StatusCount `json:"leads_by_status"`
	LeadsByScore   []ScoreCount  `json:"leads_by_score"`
	ConversionRate float64       `json:"conversion_rate"`
	LeadsTrend     []TrendPoint  `json:"leads_trend"`
	ActiveLeads    int64         `json:"active_leads"`
	AverageScore   float64       `json:"average_score"`
	GeneratedAt    time.Time     `json:"generated_at"`
}

// CountForStatus returns the grouped count for status, or 0 when it was not observed.
func (v *AggregateView) CountForStatus(status string) int64 {
	for _, sc := range v.LeadsByStatus {
		if sc.Status == status {
			return sc.Count
		}
	}
	return 0
}

// CountForScore returns the grouped count for a score tier, or 0 when it was not observed.
func (v *AggregateView) CountForScore(name string) int64 {
	for _, sc := range v.LeadsByScore {
		if sc.Name == name {
			return sc.Count
		}
	}
	return 0
}

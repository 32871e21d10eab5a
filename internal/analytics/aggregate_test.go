package analytics

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luxeleads/internal/models"
)

func statusPairs(counts map[string]int) []StatusPair {
	var out []StatusPair
	for status, n := range counts {
		for i := 0; i < n; i++ {
			out = append(out, StatusPair{LeadID: status + string(rune('a'+i)), Status: status})
		}
	}
	return out
}

func TestConversionRate(t *testing.T) {
	tests := []struct {
		name      string
		converted int64
		total     int64
		want      float64
	}{
		{"zero total", 0, 0, 0},
		{"zero total with converted", 7, 0, 0},
		{"two of ten", 2, 10, 20},
		{"all", 3, 3, 100},
		{"one third", 1, 3, 100.0 / 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ConversionRate(tt.converted, tt.total), 1e-9)
		})
	}
}

func TestAggregateScenario(t *testing.T) {
	in := Input{
		TotalLeads: 10,
		Statuses: statusPairs(map[string]int{
			models.StatusNew:       4,
			models.StatusContacted: 3,
			models.StatusConverted: 2,
			models.StatusLost:      1,
		}),
		ConvertedCount: 2,
	}

	view := Aggregate(in, Options{Location: time.UTC})

	assert.Equal(t, int64(10), view.TotalLeads)
	assert.InDelta(t, 20.0, view.ConversionRate, 1e-9)
	assert.ElementsMatch(t, []models.StatusCount{
		{Status: "new", Count: 4},
		{Status: "contacted", Count: 3},
		{Status: "converted", Count: 2},
		{Status: "lost", Count: 1},
	}, view.LeadsByStatus)
	assert.Equal(t, int64(4), view.ActiveLeads)
}

func TestGroupStatusesSkipsMissingValues(t *testing.T) {
	pairs := []StatusPair{
		{LeadID: "1", Status: "new"},
		{LeadID: "2", Status: ""},
		{LeadID: "3", Status: "lost"},
		{LeadID: "4", Status: "new"},
	}

	got := GroupStatuses(pairs)

	require.Equal(t, []models.StatusCount{{Status: "new", Count: 2}, {Status: "lost", Count: 1}}, got)

	var sum int64
	for _, sc := range got {
		sum += sc.Count
	}
	assert.Equal(t, int64(3), sum, "sum must equal records with a status")
}

func TestGroupStatusesOmitsZeroBuckets(t *testing.T) {
	got := GroupStatuses([]StatusPair{{LeadID: "1", Status: "converted"}})
	assert.Len(t, got, 1)
	assert.Empty(t, GroupStatuses(nil))
}

func TestGroupScoresAndAverage(t *testing.T) {
	pairs := []ScorePair{
		{LeadID: "1", Tier: "Gold", Score: 75},
		{LeadID: "2", Tier: "Platinum", Score: 90},
		{LeadID: "3", Tier: "Gold", Score: 75},
		{LeadID: "4", Tier: "", Score: 10},
	}

	assert.Equal(t, []models.ScoreCount{{Name: "Gold", Count: 2}, {Name: "Platinum", Count: 1}}, GroupScores(pairs))
	assert.InDelta(t, 80.0, AverageScore(pairs), 1e-9)
	assert.Zero(t, AverageScore(nil))
}

func TestAggregateIsIdempotent(t *testing.T) {
	in := Input{
		TotalLeads:     5,
		Statuses:       statusPairs(map[string]int{"new": 2, "lost": 1, "contacted": 2}),
		Scores:         []ScorePair{{LeadID: "1", Tier: "Silver", Score: 50}},
		ConvertedCount: 0,
		Created: []time.Time{
			time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
			time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		},
	}
	opts := Options{Location: time.UTC}

	first := Aggregate(in, opts)
	second := Aggregate(in, opts)

	assert.Equal(t, first.TotalLeads, second.TotalLeads)
	assert.Equal(t, first.ConversionRate, second.ConversionRate)
	assert.ElementsMatch(t, first.LeadsByStatus, second.LeadsByStatus)
	assert.ElementsMatch(t, first.LeadsByScore, second.LeadsByScore)
	assert.Equal(t, first.LeadsTrend, second.LeadsTrend)
}

func TestTrendBucketsByLocalDay(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	created := []time.Time{
		time.Date(2026, 1, 1, 10, 0, 0, 0, loc),
		time.Date(2026, 1, 1, 23, 59, 0, 0, loc),
		time.Date(2026, 1, 2, 0, 1, 0, 0, loc),
	}

	got := Trend(created, loc, "")

	require.Len(t, got, 2)
	assert.Equal(t, "1/1/2026", got[0].Label)
	assert.Equal(t, int64(2), got[0].Count)
	assert.Equal(t, "1/2/2026", got[1].Label)
	assert.Equal(t, int64(1), got[1].Count)
}

func TestTrendAcrossSkippedMidnight(t *testing.T) {
	// Chile moves clocks from 00:00 to 01:00 on Sep 6, 2026.
	loc, err := time.LoadLocation("America/Santiago")
	require.NoError(t, err)

	tests := []struct {
		name    string
		created []time.Time
		want    []string
		counts  []int64
	}{
		{
			name: "gap day keeps its own bucket",
			created: []time.Time{
				time.Date(2026, 9, 5, 23, 30, 0, 0, loc),
				time.Date(2026, 9, 6, 1, 30, 0, 0, loc),
				time.Date(2026, 9, 6, 23, 0, 0, 0, loc),
			},
			want:   []string{"9/5/2026", "9/6/2026"},
			counts: []int64{1, 2},
		},
		{
			name:    "only the gap day",
			created: []time.Time{time.Date(2026, 9, 6, 5, 0, 0, 0, loc)},
			want:    []string{"9/6/2026"},
			counts:  []int64{1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Trend(tt.created, loc, "")
			require.Len(t, got, len(tt.want))
			for i, p := range got {
				assert.Equal(t, tt.want[i], p.Label)
				assert.Equal(t, tt.counts[i], p.Count)
				assert.Equal(t, p.Label, p.Date.In(loc).Format(DefaultDateLayout))
			}
		})
	}
}

func TestTrendUsesViewerLocation(t *testing.T) {
	// 03:00 UTC on Jan 2 is still Jan 1 five hours west.
	ts := time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC)

	utc := Trend([]time.Time{ts}, time.UTC, "")
	west := Trend([]time.Time{ts}, time.FixedZone("UTC-5", -5*60*60), "")

	assert.Equal(t, "1/2/2026", utc[0].Label)
	assert.Equal(t, "1/1/2026", west[0].Label)
}

func TestTrendOrdersByDateNotLabel(t *testing.T) {
	created := []time.Time{
		time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC),
		time.Date(2025, 12, 31, 12, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC),
	}

	got := Trend(created, time.UTC, "")

	labels := make([]string, len(got))
	for i, p := range got {
		labels[i] = p.Label
	}
	assert.Equal(t, []string{"12/31/2025", "1/2/2026", "1/10/2026"}, labels)
}

func TestTrendCustomLayout(t *testing.T) {
	got := Trend([]time.Time{time.Date(2026, 4, 5, 8, 0, 0, 0, time.UTC)}, time.UTC, "2006-01-02")
	require.Len(t, got, 1)
	assert.Equal(t, "2026-04-05", got[0].Label)
}

func TestTrendSkipsZeroTimes(t *testing.T) {
	assert.Empty(t, Trend([]time.Time{{}}, time.UTC, ""))
}

package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luxeleads/internal/store"
)

func TestFetchJoinsAndWindows(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	now := time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)

	gold, err := mem.Insert(ctx, store.LeadScores, store.Record{"name": "Gold", "score": 75})
	require.NoError(t, err)

	mem.SetClock(func() time.Time { return now.AddDate(0, 0, -45) })
	old, err := mem.Insert(ctx, store.Leads, store.Record{"name": "Old", "interest": "Rings", "score_id": gold.String("id")})
	require.NoError(t, err)

	mem.SetClock(func() time.Time { return now.AddDate(0, 0, -1) })
	recent, err := mem.Insert(ctx, store.Leads, store.Record{"name": "Recent", "interest": "Other"})
	require.NoError(t, err)

	// Points at a tier that does not exist.
	_, err = mem.Insert(ctx, store.Leads, store.Record{"name": "Orphan", "interest": "Rings", "score_id": "6f1c1f40-7d8e-4b8e-9f39-2d2b8d0a0001"})
	require.NoError(t, err)

	_, err = mem.Insert(ctx, store.LeadStatuses, store.Record{"lead_id": old.String("id"), "status": "converted"})
	require.NoError(t, err)
	_, err = mem.Insert(ctx, store.LeadStatuses, store.Record{"lead_id": recent.String("id"), "status": "new"})
	require.NoError(t, err)

	f := NewFetcher(mem, 30)
	f.now = func() time.Time { return now }

	in, err := f.Fetch(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(3), in.TotalLeads)
	assert.Equal(t, int64(1), in.ConvertedCount)
	assert.Len(t, in.Statuses, 2)
	require.Len(t, in.Scores, 1)
	assert.Equal(t, ScorePair{LeadID: old.String("id"), Tier: "Gold", Score: 75}, in.Scores[0])
	assert.Len(t, in.Created, 2, "lead created 45 days ago is outside the window")
	assert.Equal(t, now.UTC(), in.GeneratedAt)
}

func TestFetchEmptyStore(t *testing.T) {
	in, err := NewFetcher(store.NewMemory(), 0).Fetch(context.Background())
	require.NoError(t, err)

	view := Aggregate(in, Options{})
	assert.Zero(t, view.TotalLeads)
	assert.Zero(t, view.ConversionRate)
	assert.Empty(t, view.LeadsByStatus)
	assert.Empty(t, view.LeadsTrend)
}

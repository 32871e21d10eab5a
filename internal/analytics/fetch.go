package analytics

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"luxeleads/internal/models"
	"luxeleads/internal/store"
)

// DefaultWindowDays is the length of the trend window.
const DefaultWindowDays = 30

// Fetcher reads the aggregation input from a record store.
type Fetcher struct {
	records    store.Records
	windowDays int
	now        func() time.Time
}

// NewFetcher creates a fetcher whose trend covers the trailing windowDays days.
func NewFetcher(records store.Records, windowDays int) *Fetcher {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	return &Fetcher{records: records, windowDays: windowDays, now: time.Now}
}

// Fetch runs the five dashboard queries concurrently. Any failure fails the whole
// fetch; no partial input is returned.
func (f *Fetcher) Fetch(ctx context.Context) (Input, error) {
	now := f.now()
	in := Input{GeneratedAt: now.UTC()}

	var (
		scored []store.Record
		tiers  []store.Record
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := f.records.Count(ctx, store.Leads)
		if err != nil {
			return fmt.Errorf("count leads: %w", err)
		}
		in.TotalLeads = n
		return nil
	})

	g.Go(func() error {
		rows, err := f.records.Query(ctx, store.Query{
			Collection: store.LeadStatuses,
			Columns:    []string{"lead_id", "status"},
		})
		if err != nil {
			return fmt.Errorf("query lead statuses: %w", err)
		}
		in.Statuses = make([]StatusPair, 0, len(rows))
		for _, r := range rows {
			in.Statuses = append(in.Statuses, StatusPair{LeadID: r.String("lead_id"), Status: r.String("status")})
		}
		return nil
	})

	g.Go(func() error {
		var err error
		scored, err = f.records.Query(ctx, store.Query{
			Collection: store.Leads,
			Columns:    []string{"id", "score_id"},
			Filters:    []store.Filter{store.NotNull("score_id")},
		})
		if err != nil {
			return fmt.Errorf("query scored leads: %w", err)
		}
		tiers, err = f.records.Query(ctx, store.Query{
			Collection: store.LeadScores,
			Columns:    []string{"id", "name", "score"},
		})
		if err != nil {
			return fmt.Errorf("query lead scores: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		n, err := f.records.Count(ctx, store.LeadStatuses, store.Eq("status", models.StatusConverted))
		if err != nil {
			return fmt.Errorf("count converted leads: %w", err)
		}
		in.ConvertedCount = n
		return nil
	})

	g.Go(func() error {
		since := now.AddDate(0, 0, -f.windowDays)
		rows, err := f.records.Query(ctx, store.Query{
			Collection: store.Leads,
			Columns:    []string{"created_at"},
			Filters:    []store.Filter{store.Gte("created_at", since)},
			OrderBy:    []store.Order{{Column: "created_at"}},
		})
		if err != nil {
			return fmt.Errorf("query lead trend: %w", err)
		}
		in.Created = make([]time.Time, 0, len(rows))
		for _, r := range rows {
			in.Created = append(in.Created, r.Time("created_at"))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return Input{}, err
	}

	in.Scores = joinScores(scored, tiers)
	return in, nil
}

// joinScores pairs scored leads with their tier. Leads pointing at a missing tier
// are dropped.
func joinScores(scored, tiers []store.Record) []ScorePair {
	byID := make(map[string]store.Record, len(tiers))
	for _, t := range tiers {
		byID[t.String("id")] = t
	}
	out := make([]ScorePair, 0, len(scored))
	for _, lead := range scored {
		tier, ok := byID[lead.String("score_id")]
		if !ok {
			continue
		}
		out = append(out, ScorePair{
			LeadID: lead.String("id"),
			Tier:   tier.String("name"),
			Score:  tier.Int("score"),
		})
	}
	return out
}

package leads

import (
	"context"
	"fmt"

	"luxeleads/internal/store"
)

// LeadCountsByStatus returns the number of leads per current status, with statusless
// leads under "none". It works against any record store.
func (s *Service) LeadCountsByStatus(ctx context.Context) (map[string]int64, error) {
	total, err := s.records.Count(ctx, store.Leads)
	if err != nil {
		return nil, fmt.Errorf("count leads: %w", err)
	}
	rows, err := s.records.Query(ctx, store.Query{Collection: store.LeadStatuses, Columns: []string{"status"}})
	if err != nil {
		return nil, fmt.Errorf("query statuses: %w", err)
	}

	counts := make(map[string]int64)
	for _, r := range rows {
		if st := r.String("status"); st != "" {
			counts[st]++
		}
	}
	if none := total - int64(len(rows)); none > 0 {
		counts[FilterNone] = none
	}
	return counts, nil
}

// LeadCountsByInterest returns the number of leads per interest.
func (s *Service) LeadCountsByInterest(ctx context.Context) (map[string]int64, error) {
	rows, err := s.records.Query(ctx, store.Query{Collection: store.Leads, Columns: []string{"interest"}})
	if err != nil {
		return nil, fmt.Errorf("query leads: %w", err)
	}
	counts := make(map[string]int64)
	for _, r := range rows {
		counts[r.String("interest")]++
	}
	return counts, nil
}

package leads

import (
	"context"
	"fmt"
	"time"

	"luxeleads/internal/models"
	"luxeleads/internal/store"
	"luxeleads/internal/validation"
)

// SeedScoreTiers makes the stored score tiers match the catalog. Missing tiers are
// inserted and changed scores updated; tiers absent from the catalog are left alone.
func (s *Service) SeedScoreTiers(ctx context.Context) error {
	for _, tier := range s.catalog.ScoreTiers {
		rows, err := s.records.Query(ctx, store.Query{
			Collection: store.LeadScores,
			Filters:    []store.Filter{store.Eq("name", tier.Name)},
			Limit:      1,
		})
		if err != nil {
			return fmt.Errorf("lookup tier %s: %w", tier.Name, err)
		}

		if len(rows) == 0 {
			if _, err := s.records.Insert(ctx, store.LeadScores, store.Record{"name": tier.Name, "score": tier.Score}); err != nil {
				return fmt.Errorf("insert tier %s: %w", tier.Name, err)
			}
			s.logger.Info("seeded score tier", "tier", tier.Name, "score", tier.Score)
			continue
		}

		if rows[0].Int("score") != int64(tier.Score) {
			if _, err := s.records.Update(ctx, store.LeadScores,
				[]store.Filter{store.Eq("id", rows[0].String("id"))},
				store.Record{"score": tier.Score}); err != nil {
				return fmt.Errorf("update tier %s: %w", tier.Name, err)
			}
			s.logger.Info("updated score tier", "tier", tier.Name, "score", tier.Score)
		}
	}
	return nil
}

type devLead struct {
	form   validation.LeadForm
	status string
}

var devLeads = []devLead{
	{validation.LeadForm{Name: "Amelia Hart", Email: "amelia@example.com", Phone: "555-010-0101", Interest: models.InterestRings}, models.StatusNew},
	{validation.LeadForm{Name: "Bruno Costa", Email: "bruno@example.com", Phone: "555-010-0102", Interest: models.InterestNecklaces}, models.StatusContacted},
	{validation.LeadForm{Name: "Chloe Park", Email: "chloe@example.com", Phone: "555-010-0103", Interest: models.InterestCustomDesign}, models.StatusConverted},
	{validation.LeadForm{Name: "Daniel Okafor", Email: "daniel@example.com", Phone: "555-010-0104", Interest: models.InterestInvestment}, models.StatusNew},
	{validation.LeadForm{Name: "Elena Rossi", Email: "elena@example.com", Phone: "555-010-0105", Interest: models.InterestEarrings}, models.StatusLost},
	{validation.LeadForm{Name: "Farah Khan", Email: "farah@example.com", Phone: "555-010-0106", Interest: models.InterestBracelets}, models.StatusContacted},
	{validation.LeadForm{Name: "Gabriel Moreau", Email: "gabriel@example.com", Phone: "555-010-0107", Interest: models.InterestOther}, ""},
}

// SeedDevLeads inserts sample leads when the store has none. The last sample has no
// status record.
func (s *Service) SeedDevLeads(ctx context.Context) error {
	n, err := s.records.Count(ctx, store.Leads)
	if err != nil {
		return fmt.Errorf("count leads: %w", err)
	}
	if n > 0 {
		return nil
	}

	for i, d := range devLeads {
		scoreID, err := s.scoreIDFor(ctx, d.form.Interest)
		if err != nil {
			return err
		}
		rec := store.Record{
			"name":       d.form.Name,
			"email":      d.form.Email,
			"phone":      d.form.Phone,
			"interest":   d.form.Interest,
			"created_at": s.now().Add(-time.Duration(i*29) * time.Hour),
		}
		if scoreID != "" {
			rec["score_id"] = scoreID
		}
		lead, err := s.records.Insert(ctx, store.Leads, rec)
		if err != nil {
			return fmt.Errorf("insert dev lead: %w", err)
		}
		if d.status == "" {
			continue
		}
		if _, err := s.records.Insert(ctx, store.LeadStatuses, store.Record{
			"lead_id":    lead.String("id"),
			"status":     d.status,
			"updated_by": "seed",
		}); err != nil {
			return fmt.Errorf("insert dev status: %w", err)
		}
	}

	s.logger.Info("seeded development leads", "count", len(devLeads))
	return nil
}

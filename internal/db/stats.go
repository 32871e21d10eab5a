package db

import (
	"context"
	"fmt"
)

// LeadCountsByStatus returns the number of leads per current status. Leads without a
// status record are reported under "none".
func (d *DB) LeadCountsByStatus(ctx context.Context) (map[string]int64, error) {
	return d.groupCounts(ctx, `
		SELECT COALESCE(s.status, 'none'), COUNT(*)
		FROM leads l
		LEFT JOIN lead_statuses s ON s.lead_id = l.id
		GROUP BY 1
	`)
}

// LeadCountsByInterest returns the number of leads per interest.
func (d *DB) LeadCountsByInterest(ctx context.Context) (map[string]int64, error) {
	return d.groupCounts(ctx, `SELECT interest, COUNT(*) FROM leads GROUP BY interest`)
}

func (d *DB) groupCounts(ctx context.Context, query string) (map[string]int64, error) {
	rows, err := d.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var key string
		var n int64
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		counts[key] = n
	}
	return counts, rows.Err()
}

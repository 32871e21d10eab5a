package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedLead(t *testing.T, m *Memory, name, email string, created time.Time) Record {
	t.Helper()
	rec, err := m.Insert(context.Background(), Leads, Record{
		"name":       name,
		"email":      email,
		"phone":      "5550001111",
		"interest":   "Rings",
		"created_at": created,
	})
	require.NoError(t, err)
	return rec
}

func TestMemory_InsertFillsDefaults(t *testing.T) {
	m := NewMemory()
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	m.SetClock(func() time.Time { return fixed })

	rec, err := m.Insert(context.Background(), Leads, Record{
		"name":     "Ada",
		"email":    "ada@example.com",
		"phone":    "5550001111",
		"interest": "Rings",
	})
	require.NoError(t, err)

	_, ok := rec.UUID("id")
	assert.True(t, ok, "id should be a uuid")
	assert.Equal(t, fixed, rec.Time("created_at"))
	assert.False(t, rec.Has("score_id"))
}

func TestMemory_InsertRejectsUnknownColumn(t *testing.T) {
	m := NewMemory()
	_, err := m.Insert(context.Background(), Leads, Record{"notes": "hello"})
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestMemory_InsertRejectsBadUUID(t *testing.T) {
	m := NewMemory()
	_, err := m.Insert(context.Background(), LeadStatuses, Record{"lead_id": "not-a-uuid", "status": "new"})
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestMemory_UniqueLeadStatus(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	leadID := uuid.New()

	_, err := m.Insert(ctx, LeadStatuses, Record{"lead_id": leadID, "status": "new"})
	require.NoError(t, err)

	_, err = m.Insert(ctx, LeadStatuses, Record{"lead_id": leadID.String(), "status": "lost"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestMemory_CountAndQueryFilters(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	seedLead(t, m, "Ada Lovelace", "ada@example.com", base)
	seedLead(t, m, "Grace Hopper", "grace@navy.mil", base.Add(24*time.Hour))
	seedLead(t, m, "Alan Turing", "alan@example.com", base.Add(48*time.Hour))

	n, err := m.Count(ctx, Leads)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	n, err = m.Count(ctx, Leads, Gte("created_at", base.Add(24*time.Hour)))
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	rows, err := m.Query(ctx, Query{
		Collection: Leads,
		Columns:    []string{"name"},
		Filters:    []Filter{Or(ILike("name", "%grace%"), ILike("email", "%ALAN%"))},
		OrderBy:    []Order{{Column: "created_at", Desc: true}},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Alan Turing", rows[0].String("name"))
	assert.Equal(t, "Grace Hopper", rows[1].String("name"))
	assert.False(t, rows[0].Has("email"), "projection should drop unselected columns")
}

func TestMemory_QueryLimitAndIn(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	a := seedLead(t, m, "A", "a@example.com", base)
	seedLead(t, m, "B", "b@example.com", base.Add(time.Hour))
	c := seedLead(t, m, "C", "c@example.com", base.Add(2*time.Hour))

	rows, err := m.Query(ctx, Query{
		Collection: Leads,
		Filters:    []Filter{In("id", a.String("id"), c.String("id"))},
		OrderBy:    []Order{{Column: "created_at"}},
		Limit:      1,
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "A", rows[0].String("name"))
}

func TestMemory_UpdateInPlace(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	leadID := uuid.New()

	_, err := m.Insert(ctx, LeadStatuses, Record{"lead_id": leadID, "status": "new"})
	require.NoError(t, err)

	n, err := m.Update(ctx, LeadStatuses, []Filter{Eq("lead_id", leadID)}, Record{"status": "converted", "updated_by": "admin"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	rows, err := m.Query(ctx, Query{Collection: LeadStatuses})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "converted", rows[0].String("status"))
	assert.Equal(t, "admin", rows[0].String("updated_by"))

	n, err = m.Update(ctx, LeadStatuses, []Filter{Eq("lead_id", uuid.New())}, Record{"status": "lost"})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMemory_UpdateRejectsID(t *testing.T) {
	m := NewMemory()
	_, err := m.Update(context.Background(), Leads, nil, Record{"id": uuid.New()})
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestMemory_SubscribeNotifiesPerCollection(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	var leadHits, statusHits int
	leadSub, err := m.Subscribe(Leads, func() { leadHits++ })
	require.NoError(t, err)
	_, err = m.Subscribe(LeadStatuses, func() { statusHits++ })
	require.NoError(t, err)

	lead := seedLead(t, m, "Ada", "ada@example.com", time.Now())
	assert.Equal(t, 1, leadHits)
	assert.Equal(t, 0, statusHits)

	_, err = m.Insert(ctx, LeadStatuses, Record{"lead_id": lead.String("id"), "status": "new"})
	require.NoError(t, err)
	assert.Equal(t, 1, statusHits)

	leadSub.Unsubscribe()
	leadSub.Unsubscribe()
	seedLead(t, m, "Grace", "grace@example.com", time.Now())
	assert.Equal(t, 1, leadHits, "unsubscribed callback must not fire")
	assert.Equal(t, 0, m.Subscribers(Leads))
	assert.Equal(t, 1, m.Subscribers(LeadStatuses))
}

func TestMemory_UnknownCollection(t *testing.T) {
	m := NewMemory()
	_, err := m.Count(context.Background(), Collection("orders"))
	assert.ErrorIs(t, err, ErrUnknownCollection)

	_, err = m.Subscribe(Collection("orders"), func() {})
	assert.ErrorIs(t, err, ErrUnknownCollection)
}

func TestMemory_CanceledContext(t *testing.T) {
	m := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Query(ctx, Query{Collection: Leads})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestJoin(t *testing.T) {
	m := NewMemory()
	client := Join(m, m)

	hits := 0
	_, err := client.Subscribe(Leads, func() { hits++ })
	require.NoError(t, err)

	_, err = client.Insert(context.Background(), Leads, Record{"name": "Ada"})
	require.NoError(t, err)
	assert.Equal(t, 1, hits)
}

func TestLikeMatch(t *testing.T) {
	tests := []struct {
		pattern string
		s       string
		want    bool
	}{
		{"%grace%", "Grace Hopper", true},
		{"%ALAN%", "alan@example.com", true},
		{"%", "", true},
		{"", "", true},
		{"", "a", false},
		{"a_c", "abc", true},
		{"a_c", "ac", false},
		{"%@example.com", "ana@example.com", true},
		{"%@example.com", "ana@example.org", false},
		{"a%b%c", "aXXbYYc", true},
		{"a%b%c", "aXXcYYb", false},
		{"%ção%", "Cotação", true},
		{"%50%%", "50% off", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.s, func(t *testing.T) {
			assert.Equal(t, tt.want, likeMatch(tt.pattern, tt.s))
		})
	}
}

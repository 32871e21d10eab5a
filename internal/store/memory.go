package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process Client. It backs the "memory" store driver and tests.
// Change callbacks run synchronously on the mutating goroutine after the write lock
// is released.
type Memory struct {
	mu     sync.RWMutex
	rows   map[Collection][]Record
	subs   map[Collection]map[uint64]func()
	nextID uint64
	now    func() time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		rows: make(map[Collection][]Record),
		subs: make(map[Collection]map[uint64]func()),
		now:  time.Now,
	}
}

// SetClock replaces the clock used for default timestamps.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	m.now = now
	m.mu.Unlock()
}

// Count returns the number of rows matching filters.
func (m *Memory) Count(ctx context.Context, c Collection, filters ...Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	schema, err := Lookup(c)
	if err != nil {
		return 0, err
	}
	filters, err = schema.ValidateAll(filters)
	if err != nil {
		return 0, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, row := range m.rows[c] {
		if matchAll(row, filters) {
			n++
		}
	}
	return n, nil
}

// Query returns projected copies of the matching rows.
func (m *Memory) Query(ctx context.Context, q Query) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	schema, err := Lookup(q.Collection)
	if err != nil {
		return nil, err
	}
	columns, err := schema.Project(q.Columns)
	if err != nil {
		return nil, err
	}
	filters, err := schema.ValidateAll(q.Filters)
	if err != nil {
		return nil, err
	}
	for _, o := range q.OrderBy {
		if _, err := schema.Column(o.Column); err != nil {
			return nil, err
		}
	}

	m.mu.RLock()
	var matched []Record
	for _, row := range m.rows[q.Collection] {
		if matchAll(row, filters) {
			matched = append(matched, row)
		}
	}
	m.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		for _, o := range q.OrderBy {
			c := compareNullsLast(matched[i][o.Column], matched[j][o.Column])
			if c == 0 {
				continue
			}
			if o.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})

	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}

	out := make([]Record, len(matched))
	for i, row := range matched {
		rec := make(Record, len(columns))
		for _, col := range columns {
			rec[col.Name] = row[col.Name]
		}
		out[i] = rec
	}
	return out, nil
}

// Insert stores rec, filling in the id and creation timestamps when missing, and
// returns the stored row.
func (m *Memory) Insert(ctx context.Context, c Collection, rec Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	schema, err := Lookup(c)
	if err != nil {
		return nil, err
	}
	row, err := schema.Coerce(rec)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if row["id"] == nil {
		row["id"] = uuid.NewString()
	}
	now := m.now().UTC()
	for _, col := range schema.Columns {
		if _, ok := row[col.Name]; ok {
			continue
		}
		if col.Name == "created_at" || col.Name == "updated_at" {
			row[col.Name] = now
		} else {
			row[col.Name] = nil
		}
	}
	if err := m.checkUnique(schema, row, -1); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	m.rows[c] = append(m.rows[c], row)
	out := row.Clone()
	m.mu.Unlock()

	m.notify(c)
	return out, nil
}

// Update applies patch to every matching row and returns the number of rows changed.
func (m *Memory) Update(ctx context.Context, c Collection, filters []Filter, patch Record) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	schema, err := Lookup(c)
	if err != nil {
		return 0, err
	}
	filters, err = schema.ValidateAll(filters)
	if err != nil {
		return 0, err
	}
	patch, err = schema.Coerce(patch)
	if err != nil {
		return 0, err
	}
	if _, ok := patch["id"]; ok {
		return 0, fmt.Errorf("%w: id is immutable", ErrInvalidValue)
	}

	m.mu.Lock()
	rows := m.rows[c]
	var n int64
	for i, row := range rows {
		if !matchAll(row, filters) {
			continue
		}
		updated := row.Clone()
		for k, v := range patch {
			updated[k] = v
		}
		if err := m.checkUnique(schema, updated, i); err != nil {
			m.mu.Unlock()
			return n, err
		}
		rows[i] = updated
		n++
	}
	m.mu.Unlock()

	if n > 0 {
		m.notify(c)
	}
	return n, nil
}

// Subscribe registers onChange for every write to c.
func (m *Memory) Subscribe(c Collection, onChange func()) (Subscription, error) {
	if _, err := Lookup(c); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.nextID++
	id := m.nextID
	if m.subs[c] == nil {
		m.subs[c] = make(map[uint64]func())
	}
	m.subs[c][id] = onChange
	m.mu.Unlock()

	var once sync.Once
	return SubscriptionFunc(func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs[c], id)
			m.mu.Unlock()
		})
	}), nil
}

// Subscribers returns the number of live subscriptions on c.
func (m *Memory) Subscribers(c Collection) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subs[c])
}

func (m *Memory) notify(c Collection) {
	m.mu.RLock()
	callbacks := make([]func(), 0, len(m.subs[c]))
	for _, fn := range m.subs[c] {
		callbacks = append(callbacks, fn)
	}
	m.mu.RUnlock()

	for _, fn := range callbacks {
		fn()
	}
}

// checkUnique must be called with m.mu held. skip is the index of the row being
// replaced, or -1 for inserts.
func (m *Memory) checkUnique(schema Schema, row Record, skip int) error {
	unique := append([]string{"id"}, schema.Unique...)
	for i, existing := range m.rows[schema.Collection] {
		if i == skip {
			continue
		}
		for _, col := range unique {
			if row[col] != nil && compare(row[col], existing[col]) == 0 {
				return fmt.Errorf("%w: %s.%s", ErrDuplicate, schema.Collection, col)
			}
		}
	}
	return nil
}

func matchAll(row Record, filters []Filter) bool {
	for _, f := range filters {
		if !match(row, f) {
			return false
		}
	}
	return true
}

func match(row Record, f Filter) bool {
	if f.Op == OpOr {
		for _, sub := range f.Any {
			if match(row, sub) {
				return true
			}
		}
		return false
	}

	v := row[f.Column]
	switch f.Op {
	case OpIsNull:
		return v == nil
	case OpNotNull:
		return v != nil
	}
	if v == nil {
		return false
	}

	switch f.Op {
	case OpEq:
		return compare(v, f.Value) == 0
	case OpNeq:
		return compare(v, f.Value) != 0
	case OpGte:
		return compare(v, f.Value) >= 0
	case OpLte:
		return compare(v, f.Value) <= 0
	case OpILike:
		s, ok := v.(string)
		return ok && likeMatch(f.Value.(string), s)
	case OpIn:
		for _, candidate := range f.Value.([]any) {
			if compare(v, candidate) == 0 {
				return true
			}
		}
	}
	return false
}

// compare orders two canonical values of the same kind. Mismatched kinds compare by
// their formatted text.
func compare(a, b any) int {
	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	case int64:
		if y, ok := b.(int64); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func compareNullsLast(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return compare(a, b)
}

// likeMatch reports whether s matches the SQL ILIKE pattern, where % matches any run
// of characters and _ matches exactly one.
func likeMatch(pattern, s string) bool {
	p := []rune(strings.ToLower(pattern))
	r := []rune(strings.ToLower(s))

	pi, ri := 0, 0
	star, mark := -1, 0
	for ri < len(r) {
		switch {
		case pi < len(p) && p[pi] == '%':
			star, mark = pi, ri
			pi++
		case pi < len(p) && (p[pi] == '_' || p[pi] == r[ri]):
			pi++
			ri++
		case star >= 0:
			mark++
			pi, ri = star+1, mark
		default:
			return false
		}
	}
	for pi < len(p) && p[pi] == '%' {
		pi++
	}
	return pi == len(p)
}

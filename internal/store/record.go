package store

import (
	"time"

	"github.com/google/uuid"
)

// Record is one row keyed by column name. Absent and nil values both mean "no value".
type Record map[string]any

// Has reports whether column holds a non-nil value.
func (r Record) Has(column string) bool {
	return deref(r[column]) != nil
}

// String returns a text or UUID column as a string, or "" when absent.
func (r Record) String(column string) string {
	switch v := deref(r[column]).(type) {
	case string:
		return v
	case uuid.UUID:
		return v.String()
	case [16]byte:
		return uuid.UUID(v).String()
	}
	return ""
}

// UUID parses a UUID column. ok is false when the value is absent or malformed.
func (r Record) UUID(column string) (id uuid.UUID, ok bool) {
	switch v := deref(r[column]).(type) {
	case uuid.UUID:
		return v, true
	case [16]byte:
		return uuid.UUID(v), true
	case string:
		parsed, err := uuid.Parse(v)
		if err != nil {
			return uuid.Nil, false
		}
		return parsed, true
	}
	return uuid.Nil, false
}

// Time returns a timestamp column, or the zero time when absent.
func (r Record) Time(column string) time.Time {
	if t, ok := deref(r[column]).(time.Time); ok {
		return t
	}
	return time.Time{}
}

// Int returns an integer column, or 0 when absent.
func (r Record) Int(column string) int64 {
	switch v := deref(r[column]).(type) {
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	}
	return 0
}

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

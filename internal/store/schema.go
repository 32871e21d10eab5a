package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind is the value type of a column.
type Kind int

const (
	KindText Kind = iota
	KindUUID
	KindTime
	KindInt
)

// Column describes one column of a collection.
type Column struct {
	Name string
	Kind Kind
}

// Schema describes the columns of a collection. Unique lists columns whose non-null
// values must not repeat; the primary key "id" is always unique.
type Schema struct {
	Collection Collection
	Columns    []Column
	Unique     []string
}

var schemas = map[Collection]Schema{
	Leads: {
		Collection: Leads,
		Columns: []Column{
			{"id", KindUUID},
			{"name", KindText},
			{"email", KindText},
			{"phone", KindText},
			{"interest", KindText},
			{"score_id", KindUUID},
			{"created_at", KindTime},
		},
	},
	LeadStatuses: {
		Collection: LeadStatuses,
		Columns: []Column{
			{"id", KindUUID},
			{"lead_id", KindUUID},
			{"status", KindText},
			{"updated_by", KindText},
			{"updated_at", KindTime},
		},
		Unique: []string{"lead_id"},
	},
	LeadScores: {
		Collection: LeadScores,
		Columns: []Column{
			{"id", KindUUID},
			{"name", KindText},
			{"score", KindInt},
			{"created_at", KindTime},
		},
		Unique: []string{"name"},
	},
}

// Lookup returns the schema of a collection.
func Lookup(c Collection) (Schema, error) {
	s, ok := schemas[c]
	if !ok {
		return Schema{}, fmt.Errorf("%w: %q", ErrUnknownCollection, c)
	}
	return s, nil
}

// Column returns the named column.
func (s Schema) Column(name string) (Column, error) {
	for _, col := range s.Columns {
		if col.Name == name {
			return col, nil
		}
	}
	return Column{}, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, s.Collection, name)
}

// ColumnNames returns every column name in declaration order.
func (s Schema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		names[i] = col.Name
	}
	return names
}

// Project resolves a column list, defaulting to every column.
func (s Schema) Project(columns []string) ([]Column, error) {
	if len(columns) == 0 {
		return s.Columns, nil
	}
	out := make([]Column, 0, len(columns))
	for _, name := range columns {
		col, err := s.Column(name)
		if err != nil {
			return nil, err
		}
		out = append(out, col)
	}
	return out, nil
}

// Coerce converts v to the canonical Go type for the column kind: string for text and
// UUID columns, UTC time.Time for timestamps and int64 for integers. nil stays nil.
func (c Column) Coerce(v any) (any, error) {
	v = deref(v)
	if v == nil {
		return nil, nil
	}
	switch c.Kind {
	case KindText:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case KindUUID:
		switch id := v.(type) {
		case uuid.UUID:
			return id.String(), nil
		case [16]byte:
			return uuid.UUID(id).String(), nil
		case string:
			parsed, err := uuid.Parse(id)
			if err != nil {
				return nil, fmt.Errorf("%w: %s is not a uuid", ErrInvalidValue, c.Name)
			}
			return parsed.String(), nil
		}
	case KindTime:
		if t, ok := v.(time.Time); ok {
			return t.UTC(), nil
		}
	case KindInt:
		switch n := v.(type) {
		case int:
			return int64(n), nil
		case int32:
			return int64(n), nil
		case int64:
			return n, nil
		}
	}
	return nil, fmt.Errorf("%w: %s has unexpected type %T", ErrInvalidValue, c.Name, v)
}

func deref(v any) any {
	switch p := v.(type) {
	case *string:
		if p == nil {
			return nil
		}
		return *p
	case *uuid.UUID:
		if p == nil {
			return nil
		}
		return *p
	case *time.Time:
		if p == nil {
			return nil
		}
		return *p
	case *int64:
		if p == nil {
			return nil
		}
		return *p
	}
	return v
}

package store

import "fmt"

// Op is a filter comparison.
type Op string

const (
	OpEq      Op = "eq"
	OpNeq     Op = "neq"
	OpGte     Op = "gte"
	OpLte     Op = "lte"
	OpIsNull  Op = "is_null"
	OpNotNull Op = "not_null"
	OpILike   Op = "ilike"
	OpIn      Op = "in"
	OpOr      Op = "or"
)

// Filter restricts the rows a read or update applies to. Filters in a list are ANDed;
// an OpOr filter matches when any of its Any filters match.
type Filter struct {
	Column string
	Op     Op
	Value  any
	Any    []Filter
}

// Eq matches rows where column equals v.
func Eq(column string, v any) Filter { return Filter{Column: column, Op: OpEq, Value: v} }

// Neq matches rows where column is set and differs from v.
func Neq(column string, v any) Filter { return Filter{Column: column, Op: OpNeq, Value: v} }

// Gte matches rows where column >= v.
func Gte(column string, v any) Filter { return Filter{Column: column, Op: OpGte, Value: v} }

// Lte matches rows where column <= v.
func Lte(column string, v any) Filter { return Filter{Column: column, Op: OpLte, Value: v} }

// IsNull matches rows where column has no value.
func IsNull(column string) Filter { return Filter{Column: column, Op: OpIsNull} }

// NotNull matches rows where column has a value.
func NotNull(column string) Filter { return Filter{Column: column, Op: OpNotNull} }

// ILike matches rows where column matches a case-insensitive SQL LIKE pattern.
func ILike(column, pattern string) Filter {
	return Filter{Column: column, Op: OpILike, Value: pattern}
}

// In matches rows where column equals one of values.
func In(column string, values ...any) Filter {
	return Filter{Column: column, Op: OpIn, Value: values}
}

// Or matches rows where any of filters match.
func Or(filters ...Filter) Filter { return Filter{Op: OpOr, Any: filters} }

// Validate checks f against the schema and returns a copy with values coerced to the
// column kinds.
func (s Schema) Validate(f Filter) (Filter, error) {
	if f.Op == OpOr {
		if len(f.Any) == 0 {
			return Filter{}, fmt.Errorf("%w: empty or", ErrUnsupportedFilter)
		}
		out := Filter{Op: OpOr, Any: make([]Filter, len(f.Any))}
		for i, sub := range f.Any {
			v, err := s.Validate(sub)
			if err != nil {
				return Filter{}, err
			}
			out.Any[i] = v
		}
		return out, nil
	}

	col, err := s.Column(f.Column)
	if err != nil {
		return Filter{}, err
	}

	switch f.Op {
	case OpIsNull, OpNotNull:
		return Filter{Column: f.Column, Op: f.Op}, nil
	case OpEq, OpNeq, OpGte, OpLte:
		v, err := col.Coerce(f.Value)
		if err != nil {
			return Filter{}, err
		}
		if v == nil {
			if f.Op == OpEq {
				return Filter{Column: f.Column, Op: OpIsNull}, nil
			}
			return Filter{}, fmt.Errorf("%w: %s with nil value", ErrUnsupportedFilter, f.Op)
		}
		return Filter{Column: f.Column, Op: f.Op, Value: v}, nil
	case OpILike:
		if col.Kind != KindText {
			return Filter{}, fmt.Errorf("%w: ilike on non-text column %s", ErrUnsupportedFilter, f.Column)
		}
		pattern, ok := f.Value.(string)
		if !ok {
			return Filter{}, fmt.Errorf("%w: ilike pattern must be a string", ErrInvalidValue)
		}
		return Filter{Column: f.Column, Op: f.Op, Value: pattern}, nil
	case OpIn:
		values, ok := f.Value.([]any)
		if !ok {
			return Filter{}, fmt.Errorf("%w: in expects a list", ErrInvalidValue)
		}
		coerced := make([]any, 0, len(values))
		for _, raw := range values {
			v, err := col.Coerce(raw)
			if err != nil {
				return Filter{}, err
			}
			if v != nil {
				coerced = append(coerced, v)
			}
		}
		return Filter{Column: f.Column, Op: f.Op, Value: coerced}, nil
	}
	return Filter{}, fmt.Errorf("%w: %q", ErrUnsupportedFilter, f.Op)
}

// ValidateAll validates a filter list.
func (s Schema) ValidateAll(filters []Filter) ([]Filter, error) {
	out := make([]Filter, len(filters))
	for i, f := range filters {
		v, err := s.Validate(f)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Coerce validates every column of rec and converts its values to canonical types.
func (s Schema) Coerce(rec Record) (Record, error) {
	out := make(Record, len(rec))
	for name, raw := range rec {
		col, err := s.Column(name)
		if err != nil {
			return nil, err
		}
		v, err := col.Coerce(raw)
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}

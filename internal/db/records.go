package db

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"luxeleads/internal/store"
)

// Count returns the number of rows in c matching filters.
func (d *DB) Count(ctx context.Context, c store.Collection, filters ...store.Filter) (int64, error) {
	schema, err := store.Lookup(c)
	if err != nil {
		return 0, err
	}
	filters, err = schema.ValidateAll(filters)
	if err != nil {
		return 0, err
	}

	var b sqlBuilder
	where, err := b.where(schema, filters)
	if err != nil {
		return 0, err
	}

	var n int64
	sql := "SELECT COUNT(*) FROM " + ident(string(c)) + where
	if err := d.Pool.QueryRow(ctx, sql, b.args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", c, err)
	}
	return n, nil
}

// Query returns the projected rows matching q.
func (d *DB) Query(ctx context.Context, q store.Query) ([]store.Record, error) {
	schema, err := store.Lookup(q.Collection)
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

	var b sqlBuilder
	where, err := b.where(schema, filters)
	if err != nil {
		return nil, err
	}

	sql := "SELECT " + selectList(columns) + " FROM " + ident(string(q.Collection)) + where
	if len(q.OrderBy) > 0 {
		order := make([]string, len(q.OrderBy))
		for i, o := range q.OrderBy {
			if _, err := schema.Column(o.Column); err != nil {
				return nil, err
			}
			dir := " ASC"
			if o.Desc {
				dir = " DESC"
			}
			order[i] = ident(o.Column) + dir + " NULLS LAST"
		}
		sql += " ORDER BY " + strings.Join(order, ", ")
	}
	if q.Limit > 0 {
		sql += " LIMIT " + strconv.Itoa(q.Limit)
	}

	rows, err := d.Pool.Query(ctx, sql, b.args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", q.Collection, err)
	}
	return collectRecords(rows, columns)
}

// Insert writes rec and returns the stored row including defaults.
func (d *DB) Insert(ctx context.Context, c store.Collection, rec store.Record) (store.Record, error) {
	schema, err := store.Lookup(c)
	if err != nil {
		return nil, err
	}
	row, err := schema.Coerce(rec)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(row))
	for name, v := range row {
		if v != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var b sqlBuilder
	sql := "INSERT INTO " + ident(string(c))
	if len(names) == 0 {
		sql += " DEFAULT VALUES"
	} else {
		cols := make([]string, len(names))
		placeholders := make([]string, len(names))
		for i, name := range names {
			col, _ := schema.Column(name)
			cols[i] = ident(name)
			placeholders[i] = b.arg(param(col, row[name]))
		}
		sql += " (" + strings.Join(cols, ", ") + ") VALUES (" + strings.Join(placeholders, ", ") + ")"
	}
	sql += " RETURNING " + selectList(schema.Columns)

	rows, err := d.Pool.Query(ctx, sql, b.args...)
	if err != nil {
		return nil, translateError(err)
	}
	out, err := collectRecords(rows, schema.Columns)
	if err != nil {
		return nil, translateError(err)
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("insert %s: expected one row, got %d", c, len(out))
	}
	return out[0], nil
}

// Update applies patch to every row matching filters and returns the affected count.
func (d *DB) Update(ctx context.Context, c store.Collection, filters []store.Filter, patch store.Record) (int64, error) {
	schema, err := store.Lookup(c)
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
		return 0, fmt.Errorf("%w: id is immutable", store.ErrInvalidValue)
	}
	if len(patch) == 0 {
		return 0, ErrEmptyPatch
	}

	names := make([]string, 0, len(patch))
	for name := range patch {
		names = append(names, name)
	}
	sort.Strings(names)

	var b sqlBuilder
	sets := make([]string, len(names))
	for i, name := range names {
		col, _ := schema.Column(name)
		sets[i] = ident(name) + " = " + b.arg(param(col, patch[name]))
	}
	where, err := b.where(schema, filters)
	if err != nil {
		return 0, err
	}

	sql := "UPDATE " + ident(string(c)) + " SET " + strings.Join(sets, ", ") + where
	tag, err := d.Pool.Exec(ctx, sql, b.args...)
	if err != nil {
		return 0, translateError(err)
	}
	return tag.RowsAffected(), nil
}

type sqlBuilder struct {
	args []any
}

func (b *sqlBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

func (b *sqlBuilder) where(schema store.Schema, filters []store.Filter) (string, error) {
	if len(filters) == 0 {
		return "", nil
	}
	conds := make([]string, len(filters))
	for i, f := range filters {
		cond, err := b.cond(schema, f)
		if err != nil {
			return "", err
		}
		conds[i] = cond
	}
	return " WHERE " + strings.Join(conds, " AND "), nil
}

// cond renders one validated filter.
func (b *sqlBuilder) cond(schema store.Schema, f store.Filter) (string, error) {
	if f.Op == store.OpOr {
		parts := make([]string, len(f.Any))
		for i, sub := range f.Any {
			cond, err := b.cond(schema, sub)
			if err != nil {
				return "", err
			}
			parts[i] = cond
		}
		return "(" + strings.Join(parts, " OR ") + ")", nil
	}

	col, err := schema.Column(f.Column)
	if err != nil {
		return "", err
	}
	name := ident(f.Column)

	switch f.Op {
	case store.OpIsNull:
		return name + " IS NULL", nil
	case store.OpNotNull:
		return name + " IS NOT NULL", nil
	case store.OpEq:
		return name + " = " + b.arg(param(col, f.Value)), nil
	case store.OpNeq:
		return name + " <> " + b.arg(param(col, f.Value)), nil
	case store.OpGte:
		return name + " >= " + b.arg(param(col, f.Value)), nil
	case store.OpLte:
		return name + " <= " + b.arg(param(col, f.Value)), nil
	case store.OpILike:
		return name + " ILIKE " + b.arg(f.Value), nil
	case store.OpIn:
		values, _ := f.Value.([]any)
		return name + " = ANY(" + b.arg(listParam(col, values)) + ")", nil
	}
	return "", fmt.Errorf("%w: %q", store.ErrUnsupportedFilter, f.Op)
}

// param converts a coerced value into what pgx encodes for the column type.
func param(col store.Column, v any) any {
	if v == nil {
		return nil
	}
	if col.Kind == store.KindUUID {
		if s, ok := v.(string); ok {
			if id, err := uuid.Parse(s); err == nil {
				return id
			}
		}
	}
	return v
}

func listParam(col store.Column, values []any) any {
	switch col.Kind {
	case store.KindUUID:
		out := make([]uuid.UUID, 0, len(values))
		for _, v := range values {
			if id, ok := param(col, v).(uuid.UUID); ok {
				out = append(out, id)
			}
		}
		return out
	case store.KindInt:
		out := make([]int64, 0, len(values))
		for _, v := range values {
			if n, ok := v.(int64); ok {
				out = append(out, n)
			}
		}
		return out
	case store.KindTime:
		out := make([]time.Time, 0, len(values))
		for _, v := range values {
			if t, ok := v.(time.Time); ok {
				out = append(out, t)
			}
		}
		return out
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// selectList renders columns so scanned values arrive in store canonical types.
func selectList(columns []store.Column) string {
	parts := make([]string, len(columns))
	for i, col := range columns {
		name := ident(col.Name)
		switch col.Kind {
		case store.KindUUID:
			parts[i] = name + "::text AS " + name
		case store.KindInt:
			parts[i] = name + "::bigint AS " + name
		default:
			parts[i] = name
		}
	}
	return strings.Join(parts, ", ")
}

func collectRecords(rows pgx.Rows, columns []store.Column) ([]store.Record, error) {
	defer rows.Close()

	var out []store.Record
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		rec := make(store.Record, len(columns))
		for i, col := range columns {
			v := values[i]
			if t, ok := v.(time.Time); ok {
				v = t.UTC()
			}
			rec[col.Name] = v
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

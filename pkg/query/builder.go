package query

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// SortField is one ORDER BY term over a logical field name.
type SortField struct {
	Field      string
	Descending bool
}

// ParseSortFields parses "name,-created_at" style input. A leading "-"
// means descending. Blank input yields nil.
func ParseSortFields(s string) []SortField {
	var fields []SortField
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, desc := strings.CutPrefix(part, "-")
		fields = append(fields, SortField{Field: name, Descending: desc})
	}
	return fields
}

// binder hands out positional placeholders as arguments are bound.
type binder struct {
	args []any
}

func (b *binder) bind(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

// predicate renders one WHERE term, binding its arguments in order.
type predicate func(b *binder) string

// Builder accumulates filters and ordering for one projection. Placeholders
// are numbered when a statement is built, so filters may be added in any
// order.
type Builder struct {
	projection  *ProjectionMap
	predicates  []predicate
	order       []SortField
	defaultSort []SortField
}

// NewBuilder returns a Builder that orders by defaultSort unless
// OrderByFields supplies fields.
func NewBuilder(projection *ProjectionMap, defaultSort ...SortField) *Builder {
	return &Builder{projection: projection, defaultSort: defaultSort}
}

// OrderByFields replaces the default ordering. Fields missing from the
// projection are dropped.
func (b *Builder) OrderByFields(fields []SortField) *Builder {
	b.order = fields
	return b
}

// WhereEquals adds field = value unless value is nil or a nil pointer.
func (b *Builder) WhereEquals(field string, value any) *Builder {
	if isNil(value) {
		return b
	}
	col := b.projection.Column(field)
	return b.where(func(bd *binder) string {
		return col + " = " + bd.bind(deref(value))
	})
}

// WhereContains adds a case-insensitive substring match unless value is
// nil or empty.
func (b *Builder) WhereContains(field string, value *string) *Builder {
	return b.WhereSearch(value, field)
}

// WhereSearch matches value as a case-insensitive substring of any of
// fields.
func (b *Builder) WhereSearch(value *string, fields ...string) *Builder {
	if value == nil || *value == "" || len(fields) == 0 {
		return b
	}
	pattern := "%" + *value + "%"
	return b.where(func(bd *binder) string {
		terms := make([]string, len(fields))
		for i, f := range fields {
			terms[i] = b.projection.Column(f) + " ILIKE " + bd.bind(pattern)
		}
		if len(terms) == 1 {
			return terms[0]
		}
		return "(" + strings.Join(terms, " OR ") + ")"
	})
}

func (b *Builder) where(p predicate) *Builder {
	b.predicates = append(b.predicates, p)
	return b
}

// Build renders the filtered, ordered SELECT.
func (b *Builder) Build() (string, []any) {
	var bd binder
	sql := b.selectClause() + b.whereClause(&bd) + b.orderClause()
	return sql, bd.args
}

// BuildCount renders a COUNT(*) over the filtered rows.
func (b *Builder) BuildCount() (string, []any) {
	var bd binder
	sql := "SELECT COUNT(*) FROM " + b.projection.From() + b.whereClause(&bd)
	return sql, bd.args
}

// BuildPage renders the ordered SELECT restricted to one 1-based page.
func (b *Builder) BuildPage(page, pageSize int) (string, []any) {
	sql, args := b.Build()
	offset := max(page-1, 0) * pageSize
	return fmt.Sprintf("%s LIMIT %d OFFSET %d", sql, pageSize, offset), args
}

// BuildSingle selects the row whose field equals id, ignoring any other
// filters.
func (b *Builder) BuildSingle(field string, id any) (string, []any) {
	sql := b.selectClause() + " WHERE " + b.projection.Column(field) + " = $1"
	return sql, []any{id}
}

// BuildSingleOrNull selects at most one filtered row.
func (b *Builder) BuildSingleOrNull() (string, []any) {
	var bd binder
	sql := b.selectClause() + b.whereClause(&bd) + " LIMIT 1"
	return sql, bd.args
}

func (b *Builder) selectClause() string {
	return "SELECT " + b.projection.Columns() + " FROM " + b.projection.From()
}

func (b *Builder) whereClause(bd *binder) string {
	if len(b.predicates) == 0 {
		return ""
	}
	terms := make([]string, len(b.predicates))
	for i, p := range b.predicates {
		terms[i] = p(bd)
	}
	return " WHERE " + strings.Join(terms, " AND ")
}

func (b *Builder) orderClause() string {
	fields := b.order
	if len(fields) == 0 {
		fields = b.defaultSort
	}

	var terms []string
	for _, f := range fields {
		col, ok := b.projection.Lookup(f.Field)
		if !ok {
			continue
		}
		if f.Descending {
			col += " DESC"
		} else {
			col += " ASC"
		}
		terms = append(terms, col)
	}

	if len(terms) == 0 {
		return ""
	}
	return " ORDER BY " + strings.Join(terms, ", ")
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func deref(v any) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		return rv.Elem().Interface()
	}
	return v
}

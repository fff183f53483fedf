// Package query builds parameterized PostgreSQL SELECT statements over a
// projection of logical field names onto table columns.
package query

import "strings"

// ProjectionMap maps logical field names to alias-qualified columns of a
// single table.
type ProjectionMap struct {
	from    string
	alias   string
	fields  map[string]string
	ordered []string
}

// NewProjectionMap starts a projection over schema.table aliased as alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		from:   schema + "." + table + " " + alias,
		alias:  alias,
		fields: map[string]string{},
	}
}

// Project maps column to the logical field name and appends it to the
// select list.
func (p *ProjectionMap) Project(column, field string) *ProjectionMap {
	col := p.alias + "." + column
	p.fields[field] = col
	p.ordered = append(p.ordered, col)
	return p
}

// From is the table reference for a FROM clause.
func (p *ProjectionMap) From() string { return p.from }

// Column resolves field to its column. Unmapped names pass through so that
// callers can reference raw columns.
func (p *ProjectionMap) Column(field string) string {
	if col, ok := p.fields[field]; ok {
		return col
	}
	return field
}

// Lookup resolves field only when it is mapped.
func (p *ProjectionMap) Lookup(field string) (string, bool) {
	col, ok := p.fields[field]
	return col, ok
}

// Columns is the comma-separated select list.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.ordered, ", ")
}

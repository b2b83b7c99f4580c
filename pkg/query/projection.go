// Package query provides a fluent SQL query builder with projection mapping
// between database columns and domain field names.
package query

import (
	"fmt"
	"strings"
)

// ProjectionMap associates domain field names with table columns,
// qualified by schema and table alias.
type ProjectionMap struct {
	schema string
	table  string
	alias  string
	fields []string
	cols   map[string]string
}

// NewProjectionMap creates a projection for the given schema, table, and alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		schema: schema,
		table:  table,
		alias:  alias,
		cols:   make(map[string]string),
	}
}

// Project maps a database column to a domain field name.
// Projection order determines column order in SELECT clauses.
func (p *ProjectionMap) Project(column, field string) *ProjectionMap {
	p.fields = append(p.fields, field)
	p.cols[field] = fmt.Sprintf("%s.%s", p.alias, column)
	return p
}

// ProjectExpr maps a raw SQL expression to a domain field name for use in
// conditions and ordering. Expressions are not included in SELECT clauses.
func (p *ProjectionMap) ProjectExpr(expr, field string) *ProjectionMap {
	p.cols[field] = expr
	return p
}

// Table returns the qualified table reference including its alias.
func (p *ProjectionMap) Table() string {
	return fmt.Sprintf("%s.%s %s", p.schema, p.table, p.alias)
}

// Column returns the aliased column for a domain field name.
// Unknown fields return an empty string.
func (p *ProjectionMap) Column(field string) string {
	return p.cols[field]
}

// Columns returns the comma-separated aliased column list in projection order.
func (p *ProjectionMap) Columns() string {
	cols := make([]string, len(p.fields))
	for i, f := range p.fields {
		cols[i] = p.cols[f]
	}
	return strings.Join(cols, ", ")
}

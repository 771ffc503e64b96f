// Package query builds parameterized SQL over a projection that maps
// logical field names to qualified columns.
package query

import (
	"fmt"
	"strings"
)

// ProjectionMap resolves logical field names (the names filters and sort
// parameters use) to alias-qualified column references.
type ProjectionMap struct {
	schema     string
	table      string
	alias      string
	columns    map[string]string
	columnList []string
}

// NewProjectionMap creates an empty projection over schema.table with the
// given alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		schema:     schema,
		table:      table,
		alias:      alias,
		columns:    make(map[string]string),
		columnList: make([]string, 0),
	}
}

// Project registers a column under its logical field name. Registration
// order determines SELECT column order.
func (p *ProjectionMap) Project(column, field string) *ProjectionMap {
	qualified := fmt.Sprintf("%s.%s", p.alias, column)
	p.columns[field] = qualified
	p.columnList = append(p.columnList, qualified)
	return p
}

// From returns the aliased table reference for a FROM clause.
func (p *ProjectionMap) From() string {
	return fmt.Sprintf("%s.%s %s", p.schema, p.table, p.alias)
}

// Column resolves a logical field name to its qualified column. Unmapped
// names pass through unchanged.
func (p *ProjectionMap) Column(field string) string {
	if col, ok := p.columns[field]; ok {
		return col
	}
	return field
}

// Columns returns the full SELECT column list.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.columnList, ", ")
}

// Package querysql compiles bound filter expressions and grid criteria
// to parameterized SQL for SQLite.
//
// Two rules hold for every compiled query:
//   - values are parameterized, never interpolated
//   - ORDER BY always ends with the row id as a deterministic
//     tiebreaker, so equal sort keys cannot reorder between runs
package querysql

import (
	"fmt"
	"strings"

	"github.com/querygrid/querygrid/internal/criteria"
	"github.com/querygrid/querygrid/internal/filter"
	"github.com/querygrid/querygrid/internal/schema"
	"github.com/querygrid/querygrid/internal/value"
)

// Input is one grid query against a dataset table. Filter must already
// be bound against the same schema; Selections must come from
// SelectBuilder.Resolve; Search and Orders from their builders'
// Validate.
type Input struct {
	Filter     filter.Expr
	Search     []criteria.SearchCriteria
	Orders     []criteria.SortOrder
	Selections []criteria.Selection
	Page       criteria.Page
}

// Compiler compiles Inputs against one schema.
type Compiler struct {
	schema *schema.Schema
}

// NewCompiler creates a Compiler for a schema. The table name is the
// schema name.
func NewCompiler(s *schema.Schema) *Compiler {
	return &Compiler{schema: s}
}

// Compile builds the SELECT statement and its argument list.
func (c *Compiler) Compile(in Input) (string, []any, error) {
	if err := in.Page.Validate(); err != nil {
		return "", nil, err
	}

	selectClause, err := c.compileSelections(in.Selections)
	if err != nil {
		return "", nil, err
	}

	whereClause, args, err := c.compileWhere(in)
	if err != nil {
		return "", nil, err
	}

	orderClause, err := c.compileOrderBy(in.Orders)
	if err != nil {
		return "", nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", selectClause, c.schema.Name)
	b.WriteString(whereClause)
	b.WriteString(orderClause)

	if in.Page.Top > 0 || in.Page.Skip > 0 {
		limit := int64(-1) // SQLite: LIMIT -1 means unlimited
		if in.Page.Top > 0 {
			limit = int64(in.Page.Top)
		}
		b.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, limit, int64(in.Page.Skip))
	}

	return b.String(), args, nil
}

// CompileCount builds the matching-row count query for the same input,
// ignoring ordering, paging, and selections.
func (c *Compiler) CompileCount(in Input) (string, []any, error) {
	whereClause, args, err := c.compileWhere(in)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("SELECT COUNT(*) FROM %s%s", c.schema.Name, whereClause), args, nil
}

// compileWhere combines the filter predicate and the search criteria.
// Search ORs across its columns and ANDs with the filter, matching the
// in-memory pipeline.
func (c *Compiler) compileWhere(in Input) (string, []any, error) {
	var parts []string
	var args []any

	if in.Filter != nil {
		sql, filterArgs, err := c.compileExpr(in.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		parts = append(parts, sql)
		args = append(args, filterArgs...)
	}

	if len(in.Search) > 0 {
		sql, searchArgs, err := c.compileSearch(in.Search)
		if err != nil {
			return "", nil, fmt.Errorf("compile search: %w", err)
		}
		parts = append(parts, sql)
		args = append(args, searchArgs...)
	}

	if len(parts) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(parts, " AND "), args, nil
}

func (c *Compiler) compileSelections(selections []criteria.Selection) (string, error) {
	if len(selections) == 0 {
		// Always name columns explicitly; SELECT * ties results to
		// column order in the DDL.
		cols := append([]string{"id"}, c.schema.Columns()...)
		return strings.Join(cols, ", "), nil
	}

	parts := make([]string, 0, len(selections)+1)
	parts = append(parts, "id")
	for _, sel := range selections {
		f, ok := c.schema.Field(sel.Path)
		if !ok {
			return "", fmt.Errorf("unknown field %q in schema %q", sel.Path, c.schema.Name)
		}
		name := sel.Name()
		if !validIdent(name) {
			return "", fmt.Errorf("invalid output name %q", name)
		}
		if name == f.Column {
			parts = append(parts, f.Column)
		} else {
			parts = append(parts, fmt.Sprintf("%s AS %s", f.Column, name))
		}
	}
	return strings.Join(parts, ", "), nil
}

// compileOrderBy renders user sort keys then the mandatory id
// tiebreaker.
func (c *Compiler) compileOrderBy(orders []criteria.SortOrder) (string, error) {
	var parts []string
	for _, o := range orders {
		f, ok := c.schema.Field(o.Path)
		if !ok {
			return "", fmt.Errorf("unknown sort field %q in schema %q", o.Path, c.schema.Name)
		}
		dir := "ASC"
		if o.Direction == criteria.Descending {
			dir = "DESC"
		}
		parts = append(parts, fmt.Sprintf("%s %s", f.Column, dir))
	}
	parts = append(parts, "id ASC")
	return " ORDER BY " + strings.Join(parts, ", "), nil
}

// compileSearch ORs LIKE conditions across the searched columns.
// Patterns are pre-escaped by SearchCriteria.LikePattern, so ESCAPE
// '\' makes literal wildcards inert.
func (c *Compiler) compileSearch(crits []criteria.SearchCriteria) (string, []any, error) {
	var parts []string
	var args []any
	for _, crit := range crits {
		f, ok := c.schema.Field(crit.Path)
		if !ok {
			return "", nil, fmt.Errorf("unknown search field %q in schema %q", crit.Path, c.schema.Name)
		}
		if f.Kind != value.KindString {
			return "", nil, fmt.Errorf("search field %q is %s, search requires string", crit.Path, f.Kind)
		}
		pattern := crit.LikePattern()
		if crit.CaseInsensitive {
			parts = append(parts, fmt.Sprintf(`lower(%s) LIKE ? ESCAPE '\'`, f.Column))
			args = append(args, strings.ToLower(pattern))
		} else {
			parts = append(parts, fmt.Sprintf(`%s LIKE ? ESCAPE '\'`, f.Column))
			args = append(args, pattern)
		}
	}
	sql := strings.Join(parts, " OR ")
	if len(parts) > 1 {
		sql = "(" + sql + ")"
	}
	return sql, args, nil
}

func validIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		ok := r == '_' ||
			(r >= 'a' && r <= 'z') ||
			(r >= 'A' && r <= 'Z') ||
			(i > 0 && r >= '0' && r <= '9')
		if !ok {
			return false
		}
	}
	return true
}

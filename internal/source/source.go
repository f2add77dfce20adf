// Package source executes grid queries against a backend. A query is
// the full grid state: a filter (expression text, structured terms, or
// both), search criteria, sort keys, a projection, and a page window.
//
// Two backends implement Source: Mem runs the query over rows held in
// memory, SQLite compiles it to parameterized SQL against a dataset
// store. Both produce the same Result shape so callers do not care
// which one serves them.
package source

import (
	"context"
	"fmt"

	"github.com/querygrid/querygrid/internal/criteria"
	"github.com/querygrid/querygrid/internal/evalmem"
	"github.com/querygrid/querygrid/internal/filter"
	"github.com/querygrid/querygrid/internal/querysql"
	"github.com/querygrid/querygrid/internal/schema"
)

// Query is one grid query. All parts are optional; the zero Query
// returns every row.
type Query struct {
	// Filter is a filter expression in source form, e.g.
	// "stock > 0 && contains(name, 'desk')".
	Filter string
	// Terms are structured single-field predicates. When both Filter
	// and Terms are set the two predicates AND together.
	Terms  *criteria.FilterBuilder
	Search *criteria.SearchBuilder
	Sort   *criteria.SortBuilder
	Select *criteria.SelectBuilder
	Page   criteria.Page
}

// Result is one executed query: the page of rows and the total match
// count before paging.
type Result struct {
	Rows  []evalmem.Row
	Total int
	Page  criteria.Page
}

// Source executes queries against one entity.
type Source interface {
	Schema() *schema.Schema
	Query(ctx context.Context, q Query) (*Result, error)
}

// Resolved is a query validated and bound against a schema, ready for
// either backend.
type Resolved struct {
	Pred       filter.Expr
	Search     []criteria.SearchCriteria
	Orders     []criteria.SortOrder
	Selections []criteria.Selection // empty means all fields
	Page       criteria.Page
}

// Resolve parses, binds, and validates every part of a query against a
// schema. Filter text and structured terms AND together into one bound
// predicate.
func Resolve(s *schema.Schema, q Query) (*Resolved, error) {
	var parts []filter.Expr

	if q.Filter != "" {
		e, err := filter.Parse(q.Filter)
		if err != nil {
			return nil, fmt.Errorf("parse filter: %w", err)
		}
		parts = append(parts, e)
	}
	if q.Terms != nil {
		e, err := q.Terms.Compile(s)
		if err != nil {
			return nil, err
		}
		if e != nil {
			parts = append(parts, e)
		}
	}

	pred := filter.And(parts...)
	if pred != nil {
		if err := filter.BindPredicate(pred, s); err != nil {
			return nil, err
		}
	}

	r := &Resolved{Pred: pred, Page: q.Page}
	if err := r.Page.Validate(); err != nil {
		return nil, err
	}

	if q.Search != nil {
		if err := q.Search.Validate(s); err != nil {
			return nil, err
		}
		r.Search = q.Search.Criteria()
	}
	if q.Sort != nil {
		if err := q.Sort.Validate(s); err != nil {
			return nil, err
		}
		r.Orders = q.Sort.Orders()
	}
	if q.Select != nil && q.Select.Len() > 0 {
		sels, err := q.Select.Resolve(s)
		if err != nil {
			return nil, err
		}
		r.Selections = sels
	}
	return r, nil
}

// Input converts the resolved query to a SQL compiler input.
func (r *Resolved) Input() querysql.Input {
	return querysql.Input{
		Filter:     r.Pred,
		Search:     r.Search,
		Orders:     r.Orders,
		Selections: r.Selections,
		Page:       r.Page,
	}
}

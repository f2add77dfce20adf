package source

import (
	"context"

	"github.com/querygrid/querygrid/internal/evalmem"
	"github.com/querygrid/querygrid/internal/schema"
)

// Mem serves queries from rows held in memory.
type Mem struct {
	schema *schema.Schema
	rows   []evalmem.Row
}

// NewMem creates an in-memory source over pre-built rows.
func NewMem(s *schema.Schema, rows []evalmem.Row) *Mem {
	return &Mem{schema: s, rows: rows}
}

// NewMemFromStructs creates an in-memory source by extracting rows from
// a slice of entity structs.
func NewMemFromStructs(s *schema.Schema, slice any) (*Mem, error) {
	rows, err := evalmem.FromStructs(s, slice)
	if err != nil {
		return nil, err
	}
	return &Mem{schema: s, rows: rows}, nil
}

func (m *Mem) Schema() *schema.Schema { return m.schema }

// Query resolves and runs the query over the held rows.
func (m *Mem) Query(_ context.Context, q Query) (*Result, error) {
	r, err := Resolve(m.schema, q)
	if err != nil {
		return nil, err
	}
	res, err := evalmem.Apply(m.rows, r.Pred, r.Search, r.Orders, r.Selections, r.Page)
	if err != nil {
		return nil, err
	}
	return &Result{Rows: res.Rows, Total: res.Total, Page: r.Page}, nil
}

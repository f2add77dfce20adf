package source

import (
	"context"
	"fmt"

	"github.com/querygrid/querygrid/internal/criteria"
	"github.com/querygrid/querygrid/internal/evalmem"
	"github.com/querygrid/querygrid/internal/querysql"
	"github.com/querygrid/querygrid/internal/schema"
	"github.com/querygrid/querygrid/internal/store"
	"github.com/querygrid/querygrid/internal/value"
)

// SQLite serves queries by compiling them to SQL against a dataset
// table.
type SQLite struct {
	schema   *schema.Schema
	store    *store.Store
	compiler *querysql.Compiler
	byColumn map[string]schema.Field
}

// NewSQLite creates a source over an existing dataset. The dataset
// table must have been created from the same schema.
func NewSQLite(s *schema.Schema, st *store.Store) *SQLite {
	byColumn := make(map[string]schema.Field, len(s.Fields))
	for _, f := range s.Fields {
		byColumn[f.Column] = f
	}
	return &SQLite{
		schema:   s,
		store:    st,
		compiler: querysql.NewCompiler(s),
		byColumn: byColumn,
	}
}

func (s *SQLite) Schema() *schema.Schema { return s.schema }

// Query compiles and runs the query, then decodes the scanned records
// back into the value domain. Row keys follow the in-memory backend:
// field paths, or selection output names where the query renamed them.
// Every row additionally carries its dataset id under "id".
func (s *SQLite) Query(ctx context.Context, q Query) (*Result, error) {
	r, err := Resolve(s.schema, q)
	if err != nil {
		return nil, err
	}
	in := r.Input()

	sql, args, err := s.compiler.Compile(in)
	if err != nil {
		return nil, err
	}
	recs, err := s.store.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}

	countSQL, countArgs, err := s.compiler.CompileCount(in)
	if err != nil {
		return nil, err
	}
	total, err := s.store.QueryCount(ctx, countSQL, countArgs...)
	if err != nil {
		return nil, err
	}

	rows := make([]evalmem.Row, len(recs))
	for i, rec := range recs {
		row, err := s.decodeRecord(rec, r.Selections)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		rows[i] = row
	}
	return &Result{Rows: rows, Total: total, Page: r.Page}, nil
}

// decodeRecord maps scanned column values back to row keys and value
// kinds. With no explicit selections the record is keyed by column
// name; with selections, by the selection's output name.
func (s *SQLite) decodeRecord(rec store.Record, selections []criteria.Selection) (evalmem.Row, error) {
	row := make(evalmem.Row, len(rec))

	if len(selections) == 0 {
		for col, v := range rec {
			if col == "id" {
				row["id"] = v
				continue
			}
			f, ok := s.byColumn[col]
			if !ok {
				return nil, fmt.Errorf("unexpected column %q", col)
			}
			decoded, err := decodeValue(v, f.Kind)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", col, err)
			}
			row[f.Path] = decoded
		}
		return row, nil
	}

	if v, ok := rec["id"]; ok {
		row["id"] = v
	}
	for _, sel := range selections {
		name := sel.Name()
		v, ok := rec[name]
		if !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
		f := s.schema.MustField(sel.Path)
		decoded, err := decodeValue(v, f.Kind)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", name, err)
		}
		row[name] = decoded
	}
	return row, nil
}

// decodeValue reverses SQLite's storage classes: INTEGER back to bool,
// RFC 3339 text back to time, whole-number INTEGER back to float.
func decodeValue(v value.Value, kind value.Kind) (value.Value, error) {
	if value.IsNull(v) {
		return v, nil
	}
	switch kind {
	case value.KindBool:
		if i, ok := v.(value.Int); ok {
			return value.Bool(i != 0), nil
		}
	case value.KindFloat:
		if i, ok := v.(value.Int); ok {
			return value.Float(float64(i)), nil
		}
	case value.KindTime:
		if _, ok := v.(value.String); ok {
			return value.Coerce(v, value.KindTime)
		}
	}
	if v.Kind() != kind {
		return nil, fmt.Errorf("cannot decode %s as %s", v.Kind(), kind)
	}
	return v, nil
}

package store

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/querygrid/querygrid/internal/schema"
	"github.com/querygrid/querygrid/internal/value"
)

// LoadRows reads a YAML (or JSON, YAML is a superset) document holding
// a list of row maps and inserts them into the dataset. Nested maps
// flatten to dotted field paths, so both of these address the same
// field:
//
//	- origin: {city: Oslo}
//	- origin.city: Oslo
//
// Returns the number of rows inserted.
func (s *Store) LoadRows(ctx context.Context, es *schema.Schema, r io.Reader) (int, error) {
	var docs []map[string]any
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&docs); err != nil {
		return 0, fmt.Errorf("decode rows: %w", err)
	}

	rows := make([]map[string]value.Value, 0, len(docs))
	for i, doc := range docs {
		row := make(map[string]value.Value)
		if err := flattenInto(row, "", doc); err != nil {
			return 0, fmt.Errorf("row %d: %w", i, err)
		}
		rows = append(rows, row)
	}

	if err := s.InsertRows(ctx, es, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func flattenInto(row map[string]value.Value, prefix string, m map[string]any) error {
	for k, raw := range m {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		if nested, ok := raw.(map[string]any); ok {
			if err := flattenInto(row, path, nested); err != nil {
				return err
			}
			continue
		}
		v, err := value.FromAny(raw)
		if err != nil {
			return fmt.Errorf("field %q: %w", path, err)
		}
		row[path] = v
	}
	return nil
}

package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/querygrid/querygrid/internal/schema"
	"github.com/querygrid/querygrid/internal/value"
)

// Record is one stored row keyed by result column name. Query returns
// whatever names the SQL produced: column names for plain selects,
// aliases where the statement renamed them.
type Record map[string]value.Value

// CreateDataset creates the table for an entity schema and registers
// it. Idempotent; an existing table is left untouched.
func (s *Store) CreateDataset(ctx context.Context, es *schema.Schema) error {
	if !validIdent(es.Name) {
		return fmt.Errorf("invalid dataset name %q", es.Name)
	}

	cols := make([]string, 0, len(es.Fields)+1)
	cols = append(cols, "id TEXT PRIMARY KEY")
	for _, f := range es.Fields {
		if !validIdent(f.Column) {
			return fmt.Errorf("invalid column name %q for field %q", f.Column, f.Path)
		}
		def := fmt.Sprintf("%s %s", f.Column, columnType(f.Kind))
		if !f.Nullable {
			def += " NOT NULL"
		}
		cols = append(cols, def)
	}

	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", es.Name, strings.Join(cols, ", "))
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create dataset %q: %w", es.Name, err)
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO datasets (name) VALUES (?) ON CONFLICT (name) DO NOTHING", es.Name)
	if err != nil {
		return fmt.Errorf("register dataset %q: %w", es.Name, err)
	}
	return nil
}

// columnType maps a value kind to its SQLite storage class. Times are
// stored as value.TimeText so lexical ordering matches chronological.
func columnType(k value.Kind) string {
	switch k {
	case value.KindBool, value.KindInt:
		return "INTEGER"
	case value.KindFloat:
		return "REAL"
	default:
		return "TEXT"
	}
}

// InsertRows writes rows into a dataset table inside one transaction.
// Rows are keyed by field path, matched case-insensitively like every
// other path lookup. A row may carry its own "id"; rows
// without one get a time-ordered UUID so insertion order survives the
// id tiebreaker in compiled queries.
func (s *Store) InsertRows(ctx context.Context, es *schema.Schema, rows []map[string]value.Value) error {
	if len(rows) == 0 {
		return nil
	}

	cols := append([]string{"id"}, es.Columns()...)
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		es.Name, strings.Join(cols, ", "), placeholders)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range rows {
		args, err := insertArgs(es, row)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert row %d into %q: %w", i, es.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert: %w", err)
	}
	return nil
}

func insertArgs(es *schema.Schema, row map[string]value.Value) ([]any, error) {
	vals := make(map[string]value.Value, len(row))
	for k, v := range row {
		vals[strings.ToLower(k)] = v
	}

	id := uuid.Must(uuid.NewV7()).String()
	if v, ok := vals["id"]; ok {
		sv, isStr := v.(value.String)
		if !isStr {
			return nil, fmt.Errorf("id must be a string, got %s", v.Kind())
		}
		id = string(sv)
	}

	args := make([]any, 0, len(es.Fields)+1)
	args = append(args, id)
	for _, f := range es.Fields {
		v, ok := vals[strings.ToLower(f.Path)]
		if !ok || value.IsNull(v) {
			if !f.Nullable {
				return nil, fmt.Errorf("field %q is not nullable", f.Path)
			}
			args = append(args, nil)
			continue
		}
		coerced, err := value.Coerce(v, f.Kind)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Path, err)
		}
		param, err := value.ToParam(coerced)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Path, err)
		}
		args = append(args, param)
	}
	return args, nil
}

// Query runs a compiled statement and scans the result into Records.
// Scanned values carry SQLite's storage classes: time columns come back
// as strings and bool columns as integers. The caller decodes them
// against its schema.
func (s *Store) Query(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("result columns: %w", err)
	}

	var out []Record
	for rows.Next() {
		raw := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		rec := make(Record, len(cols))
		for i, col := range cols {
			v, err := value.FromAny(raw[i])
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", col, err)
			}
			rec[col] = v
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// QueryCount runs a single-value count statement.
func (s *Store) QueryCount(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
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

// Package evalmem evaluates bound filter expressions and criteria
// against in-memory rows. It is the counterpart of the querysql
// backend: both consume the same bound trees and descriptor lists and
// must agree on results.
package evalmem

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/querygrid/querygrid/internal/schema"
	"github.com/querygrid/querygrid/internal/value"
)

// Row is one entity instance, keyed by canonical schema field path.
type Row map[string]value.Value

// Get returns the field value, or Null when the row has no entry.
func (r Row) Get(path string) value.Value {
	if v, ok := r[path]; ok && v != nil {
		return v
	}
	return value.Null{}
}

// FromStruct extracts a Row from a Go struct using the schema's field
// paths. Path segments match struct fields by json tag first, then by
// name, case-insensitively. Nil pointers become Null.
func FromStruct(s *schema.Schema, entity any) (Row, error) {
	rv := reflect.ValueOf(entity)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, fmt.Errorf("nil entity")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("entity must be a struct, got %T", entity)
	}

	row := make(Row, len(s.Fields))
	for _, f := range s.Fields {
		v, err := extractPath(rv, strings.Split(f.Path, "."))
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Path, err)
		}
		row[f.Path] = v
	}
	return row, nil
}

// FromStructs extracts rows from a slice of entities.
func FromStructs(s *schema.Schema, entities any) ([]Row, error) {
	rv := reflect.ValueOf(entities)
	if rv.Kind() != reflect.Slice {
		return nil, fmt.Errorf("entities must be a slice, got %T", entities)
	}
	rows := make([]Row, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		row, err := FromStruct(s, rv.Index(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("entity %d: %w", i, err)
		}
		rows[i] = row
	}
	return rows, nil
}

func extractPath(rv reflect.Value, segments []string) (value.Value, error) {
	for _, seg := range segments {
		for rv.Kind() == reflect.Pointer {
			if rv.IsNil() {
				return value.Null{}, nil
			}
			rv = rv.Elem()
		}
		if rv.Kind() != reflect.Struct {
			return nil, fmt.Errorf("segment %q: not a struct", seg)
		}
		fv, ok := structField(rv, seg)
		if !ok {
			return nil, fmt.Errorf("segment %q: no such field", seg)
		}
		rv = fv
	}

	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return value.Null{}, nil
		}
		rv = rv.Elem()
	}

	if t, ok := rv.Interface().(time.Time); ok {
		return value.Time(t), nil
	}

	switch rv.Kind() {
	case reflect.Bool:
		return value.Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return value.Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return value.Int(int64(rv.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return value.Float(rv.Float()), nil
	case reflect.String:
		return value.String(rv.String()), nil
	default:
		return nil, fmt.Errorf("unsupported leaf type %s", rv.Type())
	}
}

// structField finds a struct field by json tag or Go name,
// case-insensitively.
func structField(rv reflect.Value, name string) (reflect.Value, bool) {
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		fieldName := sf.Name
		if tag, ok := sf.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				fieldName = tagName
			}
		}
		if strings.EqualFold(fieldName, name) {
			return rv.Field(i), true
		}
	}
	return reflect.Value{}, false
}

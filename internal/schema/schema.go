// Package schema describes the shape of a queryable entity: an ordered
// list of field descriptors that filter expressions, criteria builders,
// and both query backends bind against.
//
// Schemas come from two sources: reflection over a Go struct type
// (FromStruct) or a CUE schema file (Compile). Both produce the same
// Schema and the rest of the system does not care which.
package schema

import (
	"fmt"
	"strings"

	"github.com/querygrid/querygrid/internal/value"
)

// Field describes a single queryable field of an entity.
type Field struct {
	// Path is the dotted access path, e.g. "address.city".
	Path string
	// Column is the backing column name in the SQL backend,
	// e.g. "address_city".
	Column string
	// Kind is the value kind stored in the field.
	Kind value.Kind
	// Nullable reports whether the field may hold null.
	Nullable bool
}

// Schema is an ordered set of fields describing one entity.
type Schema struct {
	Name   string
	Fields []Field

	byPath map[string]int // lowercased path -> index into Fields
}

// New builds a Schema from a name and field list.
// Field paths are unique case-insensitively; duplicates are an error.
func New(name string, fields []Field) (*Schema, error) {
	if name == "" {
		return nil, fmt.Errorf("schema name is required")
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("schema %q has no fields", name)
	}

	s := &Schema{
		Name:   name,
		Fields: fields,
		byPath: make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		if f.Path == "" {
			return nil, fmt.Errorf("schema %q: field %d has empty path", name, i)
		}
		key := strings.ToLower(f.Path)
		if _, dup := s.byPath[key]; dup {
			return nil, fmt.Errorf("schema %q: duplicate field path %q", name, f.Path)
		}
		s.byPath[key] = i
	}
	return s, nil
}

// Field looks up a field by path, case-insensitively.
func (s *Schema) Field(path string) (Field, bool) {
	i, ok := s.byPath[strings.ToLower(path)]
	if !ok {
		return Field{}, false
	}
	return s.Fields[i], true
}

// MustField is Field for paths the caller has already validated.
// Panics on unknown paths; use only after a successful bind.
func (s *Schema) MustField(path string) Field {
	f, ok := s.Field(path)
	if !ok {
		panic(fmt.Sprintf("schema %q: unknown field %q", s.Name, path))
	}
	return f
}

// Columns returns the column names in field order.
func (s *Schema) Columns() []string {
	cols := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		cols[i] = f.Column
	}
	return cols
}

// columnFromPath derives a column name from a dotted path:
// "address.city" -> "address_city", "UnitPrice" -> "unit_price".
func columnFromPath(path string) string {
	var b strings.Builder
	for _, seg := range strings.Split(path, ".") {
		if b.Len() > 0 {
			b.WriteByte('_')
		}
		b.WriteString(snakeCase(seg))
	}
	return b.String()
}

// snakeCase converts CamelCase or mixedCase to snake_case.
// Runs of upper-case letters are kept together: "HTTPCode" -> "http_code".
func snakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		isUpper := r >= 'A' && r <= 'Z'
		if isUpper {
			prevLower := i > 0 && isLowerOrDigit(runes[i-1])
			nextLower := i+1 < len(runes) && isLowerOrDigit(runes[i+1])
			if i > 0 && (prevLower || (nextLower && runes[i-1] >= 'A' && runes[i-1] <= 'Z')) {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isLowerOrDigit(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

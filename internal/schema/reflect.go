package schema

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/querygrid/querygrid/internal/value"
)

var timeType = reflect.TypeOf(time.Time{})

// FromStruct builds a Schema by reflecting over a struct type.
//
// Rules:
//   - exported fields only; fields tagged `json:"-"` are skipped
//   - the json tag names the field path segment when present,
//     otherwise the Go field name is used verbatim
//   - nested structs (and pointers to them) flatten to dotted paths:
//     a field City inside a field Address becomes "Address.City"
//   - pointer leaf fields are nullable
//   - time.Time maps to the time kind, not to a nested struct
//
// The type parameter form:
//
//	s, err := schema.FromStruct("products", reflect.TypeOf(Product{}))
func FromStruct(name string, t reflect.Type) (*Schema, error) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("schema %q: %s is not a struct type", name, t)
	}

	var fields []Field
	if err := appendStructFields(&fields, t, ""); err != nil {
		return nil, fmt.Errorf("schema %q: %w", name, err)
	}
	return New(name, fields)
}

func appendStructFields(out *[]Field, t reflect.Type, prefix string) error {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}

		segment := sf.Name
		if tag, ok := sf.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				segment = tagName
			}
		}

		path := segment
		if prefix != "" {
			path = prefix + "." + segment
		}

		ft := sf.Type
		nullable := false
		if ft.Kind() == reflect.Pointer {
			nullable = true
			ft = ft.Elem()
		}

		// time.Time is a leaf, not a nested struct.
		if ft == timeType {
			*out = append(*out, Field{
				Path:     path,
				Column:   columnFromPath(path),
				Kind:     value.KindTime,
				Nullable: nullable,
			})
			continue
		}

		if ft.Kind() == reflect.Struct {
			if err := appendStructFields(out, ft, path); err != nil {
				return err
			}
			continue
		}

		kind, err := kindOf(ft)
		if err != nil {
			return fmt.Errorf("field %s: %w", path, err)
		}
		*out = append(*out, Field{
			Path:     path,
			Column:   columnFromPath(path),
			Kind:     kind,
			Nullable: nullable,
		})
	}
	return nil
}

func kindOf(t reflect.Type) (value.Kind, error) {
	switch t.Kind() {
	case reflect.Bool:
		return value.KindBool, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return value.KindInt, nil
	case reflect.Float32, reflect.Float64:
		return value.KindFloat, nil
	case reflect.String:
		return value.KindString, nil
	default:
		return 0, fmt.Errorf("unsupported field type %s", t)
	}
}

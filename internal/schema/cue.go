package schema

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/querygrid/querygrid/internal/value"
)

// CompileError is a schema compilation error with source position.
type CompileError struct {
	Field   string    // Field path or schema element that failed
	Message string    // What went wrong
	Pos     token.Pos // CUE source position if available
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Field, e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Compile parses a CUE value into a Schema.
// Uses the CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the entity struct itself:
//
//	entity: {
//		name: "products"
//		fields: [
//			{path: "name", kind: "string"},
//			{path: "price", kind: "float", nullable: true},
//		]
//	}
//
// Fields are a list, not a struct, so declaration order is preserved.
func Compile(v cue.Value) (*Schema, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	nameVal := v.LookupPath(cue.ParsePath("name"))
	if !nameVal.Exists() {
		return nil, &CompileError{Field: "name", Message: "entity name is required", Pos: v.Pos()}
	}
	name, err := nameVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}

	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if !fieldsVal.Exists() {
		return nil, &CompileError{Field: "fields", Message: "fields list is required", Pos: v.Pos()}
	}
	iter, err := fieldsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var fields []Field
	for iter.Next() {
		f, err := compileField(iter.Value())
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	if len(fields) == 0 {
		return nil, &CompileError{Field: "fields", Message: "at least one field is required", Pos: fieldsVal.Pos()}
	}

	return New(name, fields)
}

// compileField parses a single field descriptor.
func compileField(v cue.Value) (Field, error) {
	pathVal := v.LookupPath(cue.ParsePath("path"))
	if !pathVal.Exists() {
		return Field{}, &CompileError{Field: "path", Message: "field path is required", Pos: v.Pos()}
	}
	path, err := pathVal.String()
	if err != nil {
		return Field{}, formatCUEError(err)
	}

	kindVal := v.LookupPath(cue.ParsePath("kind"))
	if !kindVal.Exists() {
		return Field{}, &CompileError{Field: path, Message: "field kind is required", Pos: v.Pos()}
	}
	kindName, err := kindVal.String()
	if err != nil {
		return Field{}, formatCUEError(err)
	}
	kind, err := parseKind(kindName)
	if err != nil {
		return Field{}, &CompileError{Field: path, Message: err.Error(), Pos: kindVal.Pos()}
	}

	f := Field{Path: path, Column: columnFromPath(path), Kind: kind}

	if nullVal := v.LookupPath(cue.ParsePath("nullable")); nullVal.Exists() {
		f.Nullable, err = nullVal.Bool()
		if err != nil {
			return Field{}, formatCUEError(err)
		}
	}
	if colVal := v.LookupPath(cue.ParsePath("column")); colVal.Exists() {
		f.Column, err = colVal.String()
		if err != nil {
			return Field{}, formatCUEError(err)
		}
	}

	return f, nil
}

func parseKind(name string) (value.Kind, error) {
	switch name {
	case "bool":
		return value.KindBool, nil
	case "int":
		return value.KindInt, nil
	case "float":
		return value.KindFloat, nil
	case "string":
		return value.KindString, nil
	case "time":
		return value.KindTime, nil
	default:
		return 0, fmt.Errorf("unknown kind %q (want bool, int, float, string, or time)", name)
	}
}

// CompileSource compiles CUE source text containing an `entity` struct.
func CompileSource(src string) (*Schema, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	ev := v.LookupPath(cue.ParsePath("entity"))
	if !ev.Exists() {
		return nil, &CompileError{Field: "entity", Message: "no entity declaration found", Pos: v.Pos()}
	}
	return Compile(ev)
}

// LoadFile reads and compiles a CUE schema file.
func LoadFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}
	s, err := CompileSource(string(data))
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", path, err)
	}
	return s, nil
}

// formatCUEError converts a CUE error into a positioned CompileError.
func formatCUEError(err error) error {
	pos := token.NoPos
	if positions := cueerrors.Positions(err); len(positions) > 0 {
		pos = positions[0]
	}
	return &CompileError{Message: cueerrors.Details(err, nil), Pos: pos}
}

package criteria

import (
	"fmt"

	"github.com/querygrid/querygrid/internal/schema"
)

// Selection is one projected column: a field path and the name it is
// returned under. An empty alias means the path names the output.
type Selection struct {
	Path  string
	Alias string
}

// Name returns the output name for the selection.
func (s Selection) Name() string {
	if s.Alias != "" {
		return s.Alias
	}
	return s.Path
}

// SelectBuilder accumulates projected columns. An empty builder means
// "all fields" and backends expand it from the schema.
type SelectBuilder struct {
	selections []Selection
}

// NewSelectBuilder returns an empty select builder.
func NewSelectBuilder() *SelectBuilder {
	return &SelectBuilder{}
}

// Pick appends a selection without an alias.
func (b *SelectBuilder) Pick(path string) *SelectBuilder {
	b.selections = append(b.selections, Selection{Path: path})
	return b
}

// PickAs appends a selection with an output alias.
func (b *SelectBuilder) PickAs(path, alias string) *SelectBuilder {
	b.selections = append(b.selections, Selection{Path: path, Alias: alias})
	return b
}

// Remove deletes the selection for path. Reports whether one was removed.
func (b *SelectBuilder) Remove(path string) bool {
	for i, sel := range b.selections {
		if sel.Path == path {
			b.selections = append(b.selections[:i], b.selections[i+1:]...)
			return true
		}
	}
	return false
}

// Clear drops all selections.
func (b *SelectBuilder) Clear() {
	b.selections = nil
}

// Len returns the number of selections.
func (b *SelectBuilder) Len() int { return len(b.selections) }

// Selections returns a copy of the selection list in order.
func (b *SelectBuilder) Selections() []Selection {
	out := make([]Selection, len(b.selections))
	copy(out, b.selections)
	return out
}

// Resolve validates paths against a schema and expands an empty
// builder to every schema field. Duplicate output names are an error:
// the grid cannot render two columns with the same name.
func (b *SelectBuilder) Resolve(s *schema.Schema) ([]Selection, error) {
	if len(b.selections) == 0 {
		out := make([]Selection, len(s.Fields))
		for i, f := range s.Fields {
			out[i] = Selection{Path: f.Path}
		}
		return out, nil
	}

	seen := make(map[string]bool, len(b.selections))
	out := make([]Selection, 0, len(b.selections))
	for i, sel := range b.selections {
		f, ok := s.Field(sel.Path)
		if !ok {
			return nil, fmt.Errorf("selection %d: unknown field %q in schema %q", i, sel.Path, s.Name)
		}
		resolved := Selection{Path: f.Path, Alias: sel.Alias}
		name := resolved.Name()
		if seen[name] {
			return nil, fmt.Errorf("selection %d: duplicate output name %q", i, name)
		}
		seen[name] = true
		out = append(out, resolved)
	}
	return out, nil
}

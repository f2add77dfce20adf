package criteria

import (
	"fmt"

	"github.com/querygrid/querygrid/internal/schema"
)

// SortOrder is one ordering key.
type SortOrder struct {
	Path      string
	Direction Direction
}

// SortBuilder accumulates ordering keys. Key order matters: earlier
// keys sort first, later keys break ties.
type SortBuilder struct {
	orders []SortOrder
}

// NewSortBuilder returns an empty sort builder.
func NewSortBuilder() *SortBuilder {
	return &SortBuilder{}
}

// By appends an ordering key, or updates the direction in place when
// the path is already present. Grids toggle a column's direction on
// click; that must not demote the column to the end of the key list.
func (b *SortBuilder) By(path string, dir Direction) *SortBuilder {
	for i, o := range b.orders {
		if o.Path == path {
			b.orders[i].Direction = dir
			return b
		}
	}
	b.orders = append(b.orders, SortOrder{Path: path, Direction: dir})
	return b
}

// Remove deletes the key for path. Reports whether a key was removed.
func (b *SortBuilder) Remove(path string) bool {
	for i, o := range b.orders {
		if o.Path == path {
			b.orders = append(b.orders[:i], b.orders[i+1:]...)
			return true
		}
	}
	return false
}

// Clear drops all keys.
func (b *SortBuilder) Clear() {
	b.orders = nil
}

// Len returns the number of keys.
func (b *SortBuilder) Len() int { return len(b.orders) }

// Orders returns a copy of the key list in order.
func (b *SortBuilder) Orders() []SortOrder {
	out := make([]SortOrder, len(b.orders))
	copy(out, b.orders)
	return out
}

// Validate checks every key path against a schema, normalizing paths to
// their canonical schema casing.
func (b *SortBuilder) Validate(s *schema.Schema) error {
	for i, o := range b.orders {
		f, ok := s.Field(o.Path)
		if !ok {
			return fmt.Errorf("sort key %d: unknown field %q in schema %q", i, o.Path, s.Name)
		}
		b.orders[i].Path = f.Path
	}
	return nil
}

package criteria

import (
	"fmt"
	"strings"

	"github.com/querygrid/querygrid/internal/schema"
	"github.com/querygrid/querygrid/internal/value"
)

// SearchCriteria is one SQL-LIKE search over a string field.
//
// Patterns use grid wildcards: `*` matches any run of characters and
// `?` matches exactly one. Literal `%`, `_`, and `\` in the pattern are
// escaped before reaching the SQL backend, so user text can never
// smuggle LIKE wildcards in.
type SearchCriteria struct {
	Path            string
	Pattern         string
	CaseInsensitive bool
}

// LikePattern translates the grid wildcards into a SQL LIKE pattern
// for use with ESCAPE '\'.
func (c SearchCriteria) LikePattern() string {
	var b strings.Builder
	for _, r := range c.Pattern {
		switch r {
		case '*':
			b.WriteByte('%')
		case '?':
			b.WriteByte('_')
		case '%', '_', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SearchBuilder accumulates search criteria. Criteria combine with OR:
// a row matches when any searched column matches, which is how a grid's
// single search box behaves across its columns.
type SearchBuilder struct {
	criteria []SearchCriteria
}

// NewSearchBuilder returns an empty search builder.
func NewSearchBuilder() *SearchBuilder {
	return &SearchBuilder{}
}

// Match appends a case-sensitive criterion.
func (b *SearchBuilder) Match(path, pattern string) *SearchBuilder {
	b.criteria = append(b.criteria, SearchCriteria{Path: path, Pattern: pattern})
	return b
}

// MatchFold appends a case-insensitive criterion.
func (b *SearchBuilder) MatchFold(path, pattern string) *SearchBuilder {
	b.criteria = append(b.criteria, SearchCriteria{Path: path, Pattern: pattern, CaseInsensitive: true})
	return b
}

// Remove deletes the criterion for path. Reports whether one was removed.
func (b *SearchBuilder) Remove(path string) bool {
	for i, c := range b.criteria {
		if c.Path == path {
			b.criteria = append(b.criteria[:i], b.criteria[i+1:]...)
			return true
		}
	}
	return false
}

// Clear drops all criteria.
func (b *SearchBuilder) Clear() {
	b.criteria = nil
}

// Len returns the number of criteria.
func (b *SearchBuilder) Len() int { return len(b.criteria) }

// Criteria returns a copy of the criterion list in order.
func (b *SearchBuilder) Criteria() []SearchCriteria {
	out := make([]SearchCriteria, len(b.criteria))
	copy(out, b.criteria)
	return out
}

// Validate checks that every criterion names a string field,
// normalizing paths to their canonical schema casing.
func (b *SearchBuilder) Validate(s *schema.Schema) error {
	for i, c := range b.criteria {
		f, ok := s.Field(c.Path)
		if !ok {
			return fmt.Errorf("search criterion %d: unknown field %q in schema %q", i, c.Path, s.Name)
		}
		if f.Kind != value.KindString {
			return fmt.Errorf("search criterion %d: field %q is %s, search requires string", i, c.Path, f.Kind)
		}
		b.criteria[i].Path = f.Path
	}
	return nil
}

package criteria

import (
	"fmt"

	"github.com/querygrid/querygrid/internal/filter"
	"github.com/querygrid/querygrid/internal/schema"
	"github.com/querygrid/querygrid/internal/value"
)

// FilterTerm is one single-field predicate in a filter list.
type FilterTerm struct {
	Path string
	Op   Operator
	Val  value.Value
	// Join attaches this term to the accumulated expression before it.
	// The first term's Join is ignored.
	Join Conjunction
}

// FilterBuilder accumulates an ordered list of filter terms and
// compiles them into one predicate expression. Terms combine
// left-associatively: a, or-b, and-c means ((a || b) && c).
type FilterBuilder struct {
	terms []FilterTerm
}

// NewFilterBuilder returns an empty filter builder.
func NewFilterBuilder() *FilterBuilder {
	return &FilterBuilder{}
}

// Where appends an AND term. Returns the builder for chaining.
func (b *FilterBuilder) Where(path string, op Operator, val value.Value) *FilterBuilder {
	b.terms = append(b.terms, FilterTerm{Path: path, Op: op, Val: val, Join: ConjAnd})
	return b
}

// OrWhere appends an OR term.
func (b *FilterBuilder) OrWhere(path string, op Operator, val value.Value) *FilterBuilder {
	b.terms = append(b.terms, FilterTerm{Path: path, Op: op, Val: val, Join: ConjOr})
	return b
}

// Insert places a term at position i, shifting later terms down.
func (b *FilterBuilder) Insert(i int, term FilterTerm) error {
	if i < 0 || i > len(b.terms) {
		return fmt.Errorf("insert index %d out of range [0,%d]", i, len(b.terms))
	}
	b.terms = append(b.terms[:i], append([]FilterTerm{term}, b.terms[i:]...)...)
	return nil
}

// Remove deletes the first term whose path matches (case-sensitively).
// Reports whether a term was removed.
func (b *FilterBuilder) Remove(path string) bool {
	for i, t := range b.terms {
		if t.Path == path {
			b.terms = append(b.terms[:i], b.terms[i+1:]...)
			return true
		}
	}
	return false
}

// Clear drops all terms.
func (b *FilterBuilder) Clear() {
	b.terms = nil
}

// Len returns the number of terms.
func (b *FilterBuilder) Len() int { return len(b.terms) }

// Terms returns a copy of the descriptor list in order.
func (b *FilterBuilder) Terms() []FilterTerm {
	out := make([]FilterTerm, len(b.terms))
	copy(out, b.terms)
	return out
}

// Compile builds and binds the combined predicate against a schema.
// Returns nil for an empty builder. Literal values are coerced to the
// field kind where possible, so a term deserialized from JSON with a
// string value still compiles against a time field.
func (b *FilterBuilder) Compile(s *schema.Schema) (filter.Expr, error) {
	var combined filter.Expr
	for i, t := range b.terms {
		e, err := compileTerm(t, s)
		if err != nil {
			return nil, fmt.Errorf("filter term %d (%s): %w", i, t.Path, err)
		}
		if combined == nil {
			combined = e
		} else if t.Join == ConjOr {
			combined = filter.Or(combined, e)
		} else {
			combined = filter.And(combined, e)
		}
	}
	if combined == nil {
		return nil, nil
	}
	if err := filter.BindPredicate(combined, s); err != nil {
		return nil, err
	}
	return combined, nil
}

func compileTerm(t FilterTerm, s *schema.Schema) (filter.Expr, error) {
	f, ok := s.Field(t.Path)
	if !ok {
		return nil, fmt.Errorf("unknown field %q in schema %q", t.Path, s.Name)
	}
	if t.Val == nil {
		return nil, fmt.Errorf("term value is required (use value.Null for null)")
	}

	if t.Op.StringOp() {
		if f.Kind != value.KindString {
			return nil, fmt.Errorf("operator %s requires a string field, %q is %s", t.Op, t.Path, f.Kind)
		}
		str, ok := t.Val.(value.String)
		if !ok {
			return nil, fmt.Errorf("operator %s requires a string value, got %s", t.Op, t.Val.Kind())
		}
		return filter.StringCall(t.Op.String(), t.Path, str), nil
	}

	val := t.Val
	if !value.IsNull(val) && val.Kind() != f.Kind {
		coerced, err := value.Coerce(val, f.Kind)
		if err != nil {
			return nil, err
		}
		val = coerced
	}

	var op filter.Op
	switch t.Op {
	case OpEq:
		op = filter.OpEq
	case OpNe:
		op = filter.OpNe
	case OpGt:
		op = filter.OpGt
	case OpGe:
		op = filter.OpGe
	case OpLt:
		op = filter.OpLt
	case OpLe:
		op = filter.OpLe
	default:
		return nil, fmt.Errorf("unknown operator %s", t.Op)
	}
	return filter.Compare(t.Path, op, val), nil
}

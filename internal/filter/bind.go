package filter

import (
	"fmt"

	"github.com/querygrid/querygrid/internal/schema"
	"github.com/querygrid/querygrid/internal/value"
)

// Bind resolves field paths in the expression against a schema and
// type-checks every node. On success the tree is annotated in place
// (Field nodes carry their resolved schema field) and the root's result
// kind is returned. A filter used as a predicate must bind to bool;
// callers enforce that with BindPredicate.
//
// Type rules:
//   - comparison operands must be comparable: both numeric, or the
//     same kind; a null literal is only comparable with == and !=
//   - a string literal compared against a time field is coerced to a
//     time value at bind (so added_at > '2024-01-01T00:00:00Z' works)
//   - logical connectives and ! require bool operands
//   - arithmetic requires numeric operands; int op int yields int
//     (with / truncating), anything else yields float
func Bind(e Expr, s *schema.Schema) (value.Kind, error) {
	b := &binder{schema: s}
	return b.bind(e)
}

// BindPredicate binds the expression and requires a boolean result.
func BindPredicate(e Expr, s *schema.Schema) error {
	kind, err := Bind(e, s)
	if err != nil {
		return err
	}
	if kind != value.KindBool {
		return bindErrf(e.Pos(), "filter must be a boolean expression, got %s", kind)
	}
	return nil
}

type binder struct {
	schema *schema.Schema
}

func (b *binder) bind(e Expr) (value.Kind, error) {
	switch n := e.(type) {
	case *Literal:
		return n.Val.Kind(), nil

	case *Field:
		f, ok := b.schema.Field(n.Path)
		if !ok {
			return 0, bindErrf(n.Offset, "unknown field %q in schema %q", n.Path, b.schema.Name)
		}
		n.Resolved = f
		return f.Kind, nil

	case *Unary:
		return b.bindUnary(n)

	case *Binary:
		return b.bindBinary(n)

	case *Call:
		return b.bindCall(n)

	default:
		return 0, fmt.Errorf("unknown expression type: %T", e)
	}
}

func (b *binder) bindUnary(n *Unary) (value.Kind, error) {
	kind, err := b.bind(n.X)
	if err != nil {
		return 0, err
	}
	switch n.Op {
	case OpNot:
		if kind != value.KindBool {
			return 0, bindErrf(n.Offset, "operator ! requires a boolean operand, got %s", kind)
		}
		return value.KindBool, nil
	case OpNeg:
		if !kind.Numeric() {
			return 0, bindErrf(n.Offset, "unary - requires a numeric operand, got %s", kind)
		}
		return kind, nil
	default:
		return 0, bindErrf(n.Offset, "invalid unary operator %s", n.Op)
	}
}

func (b *binder) bindBinary(n *Binary) (value.Kind, error) {
	lk, err := b.bind(n.L)
	if err != nil {
		return 0, err
	}
	rk, err := b.bind(n.R)
	if err != nil {
		return 0, err
	}

	switch {
	case n.Op == OpAnd || n.Op == OpOr:
		if lk != value.KindBool || rk != value.KindBool {
			return 0, bindErrf(n.Offset, "operator %s requires boolean operands, got %s and %s", n.Op, lk, rk)
		}
		return value.KindBool, nil

	case n.Op.Comparison():
		return b.bindComparison(n, lk, rk)

	case n.Op.Arithmetic():
		if !lk.Numeric() || !rk.Numeric() {
			return 0, bindErrf(n.Offset, "operator %s requires numeric operands, got %s and %s", n.Op, lk, rk)
		}
		if lk == value.KindInt && rk == value.KindInt {
			return value.KindInt, nil
		}
		if n.Op == OpMod {
			return 0, bindErrf(n.Offset, "operator %% requires integer operands, got %s and %s", lk, rk)
		}
		return value.KindFloat, nil

	default:
		return 0, bindErrf(n.Offset, "invalid binary operator %s", n.Op)
	}
}

func (b *binder) bindComparison(n *Binary, lk, rk value.Kind) (value.Kind, error) {
	// Null literals: equality against anything, ordering against nothing.
	if lk == value.KindNull || rk == value.KindNull {
		if n.Op != OpEq && n.Op != OpNe {
			return 0, bindErrf(n.Offset, "null supports only == and !=")
		}
		return value.KindBool, nil
	}

	// Coerce a string literal against a time field so RFC 3339 text
	// can be written directly in the expression.
	if lk == value.KindTime && rk == value.KindString {
		if err := coerceTimeLiteral(n.R); err != nil {
			return 0, err
		}
		rk = value.KindTime
	}
	if rk == value.KindTime && lk == value.KindString {
		if err := coerceTimeLiteral(n.L); err != nil {
			return 0, err
		}
		lk = value.KindTime
	}

	comparable := (lk.Numeric() && rk.Numeric()) || lk == rk
	if !comparable {
		return 0, bindErrf(n.Offset, "cannot compare %s with %s", lk, rk)
	}
	return value.KindBool, nil
}

// coerceTimeLiteral rewrites a string literal node into a time literal.
// Non-literal string expressions cannot be coerced.
func coerceTimeLiteral(e Expr) error {
	lit, ok := e.(*Literal)
	if !ok {
		return bindErrf(e.Pos(), "only a string literal can be compared with a time field")
	}
	coerced, err := value.Coerce(lit.Val, value.KindTime)
	if err != nil {
		return bindErrf(lit.Offset, "%v", err)
	}
	lit.Val = coerced
	return nil
}

func (b *binder) bindCall(n *Call) (value.Kind, error) {
	spec, ok := Funcs[n.Name]
	if !ok {
		return 0, bindErrf(n.Offset, "unknown function %q", n.Name)
	}
	if len(n.Args) < spec.MinArgs || (spec.MaxArgs >= 0 && len(n.Args) > spec.MaxArgs) {
		if spec.MinArgs == spec.MaxArgs {
			return 0, bindErrf(n.Offset, "%s expects %d argument(s), got %d", spec.Name, spec.MinArgs, len(n.Args))
		}
		return 0, bindErrf(n.Offset, "%s expects at least %d argument(s), got %d", spec.Name, spec.MinArgs, len(n.Args))
	}

	kinds := make([]value.Kind, len(n.Args))
	for i, arg := range n.Args {
		k, err := b.bind(arg)
		if err != nil {
			return 0, err
		}
		kinds[i] = k
	}
	return spec.Check(n.Offset, kinds)
}

// TypeOf returns the static result kind of a bound expression node.
// Panics on unbound fields or unknown calls; callers must Bind first.
func TypeOf(e Expr) value.Kind {
	switch n := e.(type) {
	case *Literal:
		return n.Val.Kind()
	case *Field:
		if n.Resolved.Path == "" {
			panic(fmt.Sprintf("filter: TypeOf on unbound field %q", n.Path))
		}
		return n.Resolved.Kind
	case *Unary:
		if n.Op == OpNot {
			return value.KindBool
		}
		return TypeOf(n.X)
	case *Binary:
		if n.Op.Comparison() || n.Op == OpAnd || n.Op == OpOr {
			return value.KindBool
		}
		lk, rk := TypeOf(n.L), TypeOf(n.R)
		if lk == value.KindInt && rk == value.KindInt {
			return value.KindInt
		}
		return value.KindFloat
	case *Call:
		spec, ok := Funcs[n.Name]
		if !ok {
			panic(fmt.Sprintf("filter: TypeOf on unknown function %q", n.Name))
		}
		kinds := make([]value.Kind, len(n.Args))
		for i, arg := range n.Args {
			kinds[i] = TypeOf(arg)
		}
		kind, err := spec.Check(n.Offset, kinds)
		if err != nil {
			panic(fmt.Sprintf("filter: TypeOf on ill-typed call %q: %v", n.Name, err))
		}
		return kind
	default:
		panic(fmt.Sprintf("filter: TypeOf on unknown node %T", e))
	}
}

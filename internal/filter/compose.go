package filter

import (
	"github.com/querygrid/querygrid/internal/value"
)

// The constructors below build expression trees programmatically, for
// callers that assemble predicates from descriptor lists instead of
// parsing a string. Trees built this way still go through Bind before
// either backend sees them.

// Compare builds a single-field comparison: path op literal.
func Compare(path string, op Op, val value.Value) Expr {
	return &Binary{
		Op: op,
		L:  &Field{Path: path},
		R:  &Literal{Val: val},
	}
}

// StringCall builds a string-function predicate over a field, e.g.
// contains(path, "text").
func StringCall(name, path string, arg value.Value) Expr {
	return &Call{
		Name: name,
		Args: []Expr{
			&Field{Path: path},
			&Literal{Val: arg},
		},
	}
}

// And conjoins expressions, returning nil for no operands and the
// operand itself for one.
func And(exprs ...Expr) Expr {
	return combine(OpAnd, exprs)
}

// Or disjoins expressions, returning nil for no operands and the
// operand itself for one.
func Or(exprs ...Expr) Expr {
	return combine(OpOr, exprs)
}

func combine(op Op, exprs []Expr) Expr {
	var out Expr
	for _, e := range exprs {
		if e == nil {
			continue
		}
		if out == nil {
			out = e
			continue
		}
		out = &Binary{Op: op, L: out, R: e}
	}
	return out
}

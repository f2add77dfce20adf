package evalmem

import (
	"fmt"

	"github.com/querygrid/querygrid/internal/filter"
	"github.com/querygrid/querygrid/internal/value"
)

// Predicate compiles a bound boolean expression into a closure over
// rows. The expression must have passed filter.BindPredicate.
func Predicate(e filter.Expr) func(Row) (bool, error) {
	return func(row Row) (bool, error) {
		v, err := Eval(e, row)
		if err != nil {
			return false, err
		}
		b, ok := v.(value.Bool)
		if !ok {
			// Null from a null-propagating subtree: not a match.
			return false, nil
		}
		return bool(b), nil
	}
}

// Eval evaluates a bound expression against one row.
//
// Null semantics follow SQL's three-valued logic collapsed to values:
//   - arithmetic and function calls with a null operand yield null
//   - division or modulo by zero yields null, as SQL does
//   - ordering comparisons with a null operand yield false
//   - == and != test nullness when either side is null
//   - a null operand of && or || counts as false
func Eval(e filter.Expr, row Row) (value.Value, error) {
	switch n := e.(type) {
	case *filter.Literal:
		return n.Val, nil

	case *filter.Field:
		return row.Get(n.Resolved.Path), nil

	case *filter.Unary:
		return evalUnary(n, row)

	case *filter.Binary:
		return evalBinary(n, row)

	case *filter.Call:
		return evalCall(n, row)

	default:
		return nil, fmt.Errorf("unknown expression node %T", e)
	}
}

func evalUnary(n *filter.Unary, row Row) (value.Value, error) {
	v, err := Eval(n.X, row)
	if err != nil {
		return nil, err
	}
	if value.IsNull(v) {
		if n.Op == filter.OpNot {
			// not(null) is true under collapsed three-valued logic:
			// the operand counts as false.
			return value.Bool(true), nil
		}
		return value.Null{}, nil
	}

	switch n.Op {
	case filter.OpNot:
		b, ok := v.(value.Bool)
		if !ok {
			return nil, fmt.Errorf("operator ! on %s", v.Kind())
		}
		return value.Bool(!bool(b)), nil
	case filter.OpNeg:
		switch num := v.(type) {
		case value.Int:
			return value.Int(-int64(num)), nil
		case value.Float:
			return value.Float(-float64(num)), nil
		default:
			return nil, fmt.Errorf("unary - on %s", v.Kind())
		}
	default:
		return nil, fmt.Errorf("invalid unary operator %s", n.Op)
	}
}

func evalBinary(n *filter.Binary, row Row) (value.Value, error) {
	// Logical connectives short-circuit.
	if n.Op == filter.OpAnd || n.Op == filter.OpOr {
		return evalLogical(n, row)
	}

	l, err := Eval(n.L, row)
	if err != nil {
		return nil, err
	}
	r, err := Eval(n.R, row)
	if err != nil {
		return nil, err
	}

	if n.Op.Comparison() {
		return evalComparison(n.Op, l, r)
	}
	return evalArithmetic(n.Op, l, r)
}

func evalLogical(n *filter.Binary, row Row) (value.Value, error) {
	l, err := Eval(n.L, row)
	if err != nil {
		return nil, err
	}
	lb := asBool(l)
	if n.Op == filter.OpAnd && !lb {
		return value.Bool(false), nil
	}
	if n.Op == filter.OpOr && lb {
		return value.Bool(true), nil
	}
	r, err := Eval(n.R, row)
	if err != nil {
		return nil, err
	}
	return value.Bool(asBool(r)), nil
}

// asBool collapses a logical operand: null counts as false.
func asBool(v value.Value) bool {
	b, ok := v.(value.Bool)
	return ok && bool(b)
}

func evalComparison(op filter.Op, l, r value.Value) (value.Value, error) {
	lNull, rNull := value.IsNull(l), value.IsNull(r)
	if lNull || rNull {
		switch op {
		case filter.OpEq:
			return value.Bool(lNull && rNull), nil
		case filter.OpNe:
			return value.Bool(lNull != rNull), nil
		default:
			// Ordering against null is never true.
			return value.Bool(false), nil
		}
	}

	c, err := value.Compare(l, r)
	if err != nil {
		return nil, err
	}
	switch op {
	case filter.OpEq:
		return value.Bool(c == 0), nil
	case filter.OpNe:
		return value.Bool(c != 0), nil
	case filter.OpGt:
		return value.Bool(c > 0), nil
	case filter.OpGe:
		return value.Bool(c >= 0), nil
	case filter.OpLt:
		return value.Bool(c < 0), nil
	case filter.OpLe:
		return value.Bool(c <= 0), nil
	default:
		return nil, fmt.Errorf("invalid comparison operator %s", op)
	}
}

func evalArithmetic(op filter.Op, l, r value.Value) (value.Value, error) {
	if value.IsNull(l) || value.IsNull(r) {
		return value.Null{}, nil
	}

	li, lIsInt := l.(value.Int)
	ri, rIsInt := r.(value.Int)
	if lIsInt && rIsInt {
		return evalIntArithmetic(op, int64(li), int64(ri))
	}

	lf, err := asFloat(l)
	if err != nil {
		return nil, err
	}
	rf, err := asFloat(r)
	if err != nil {
		return nil, err
	}
	switch op {
	case filter.OpAdd:
		return value.Float(lf + rf), nil
	case filter.OpSub:
		return value.Float(lf - rf), nil
	case filter.OpMul:
		return value.Float(lf * rf), nil
	case filter.OpDiv:
		if rf == 0 {
			return value.Null{}, nil
		}
		return value.Float(lf / rf), nil
	case filter.OpMod:
		return nil, fmt.Errorf("operator %% requires integer operands")
	default:
		return nil, fmt.Errorf("invalid arithmetic operator %s", op)
	}
}

func evalIntArithmetic(op filter.Op, l, r int64) (value.Value, error) {
	switch op {
	case filter.OpAdd:
		return value.Int(l + r), nil
	case filter.OpSub:
		return value.Int(l - r), nil
	case filter.OpMul:
		return value.Int(l * r), nil
	case filter.OpDiv:
		if r == 0 {
			return value.Null{}, nil
		}
		return value.Int(l / r), nil
	case filter.OpMod:
		if r == 0 {
			return value.Null{}, nil
		}
		return value.Int(l % r), nil
	default:
		return nil, fmt.Errorf("invalid arithmetic operator %s", op)
	}
}

func asFloat(v value.Value) (float64, error) {
	switch num := v.(type) {
	case value.Int:
		return float64(num), nil
	case value.Float:
		return float64(num), nil
	default:
		return 0, fmt.Errorf("expected a numeric value, got %s", v.Kind())
	}
}

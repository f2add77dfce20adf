package querysql

import (
	"fmt"
	"strings"

	"github.com/querygrid/querygrid/internal/filter"
	"github.com/querygrid/querygrid/internal/value"
)

// compileExpr renders a bound expression to a SQL fragment plus its
// parameter list. Every literal becomes a placeholder.
//
// Null handling mirrors the in-memory evaluator:
//   - == and != compile to IS and IS NOT, so equality against null is
//     a real test instead of SQL's unknown
//   - ordering comparisons and string predicates over nullable fields
//     are wrapped in ifnull(..., 0), collapsing unknown to false so
//     NOT behaves the same in both backends
func (c *Compiler) compileExpr(e filter.Expr) (string, []any, error) {
	switch n := e.(type) {
	case *filter.Literal:
		param, err := value.ToParam(n.Val)
		if err != nil {
			return "", nil, err
		}
		return "?", []any{param}, nil

	case *filter.Field:
		if n.Resolved.Column == "" {
			return "", nil, fmt.Errorf("field %q is not bound to a schema", n.Path)
		}
		return n.Resolved.Column, nil, nil

	case *filter.Unary:
		return c.compileUnary(n)

	case *filter.Binary:
		return c.compileBinary(n)

	case *filter.Call:
		return c.compileCall(n)

	default:
		return "", nil, fmt.Errorf("unexpected expression node %T", e)
	}
}

func (c *Compiler) compileUnary(n *filter.Unary) (string, []any, error) {
	sql, args, err := c.compileExpr(n.X)
	if err != nil {
		return "", nil, err
	}
	switch n.Op {
	case filter.OpNot:
		return fmt.Sprintf("NOT %s", sql), args, nil
	case filter.OpNeg:
		return fmt.Sprintf("-%s", sql), args, nil
	default:
		return "", nil, fmt.Errorf("unexpected unary operator %s", n.Op)
	}
}

func (c *Compiler) compileBinary(n *filter.Binary) (string, []any, error) {
	left, leftArgs, err := c.compileExpr(n.L)
	if err != nil {
		return "", nil, err
	}
	right, rightArgs, err := c.compileExpr(n.R)
	if err != nil {
		return "", nil, err
	}
	args := append(leftArgs, rightArgs...)

	var sql string
	switch n.Op {
	case filter.OpEq:
		sql = fmt.Sprintf("%s IS %s", left, right)
	case filter.OpNe:
		sql = fmt.Sprintf("%s IS NOT %s", left, right)
	case filter.OpGt, filter.OpGe, filter.OpLt, filter.OpLe:
		sql = fmt.Sprintf("%s %s %s", left, sqlCmp(n.Op), right)
		if nullable(n.L) || nullable(n.R) {
			sql = fmt.Sprintf("ifnull(%s, 0)", sql)
		}
	case filter.OpAnd:
		sql = fmt.Sprintf("%s AND %s", left, right)
	case filter.OpOr:
		sql = fmt.Sprintf("%s OR %s", left, right)
	case filter.OpAdd, filter.OpSub, filter.OpMul, filter.OpDiv, filter.OpMod:
		sql = fmt.Sprintf("%s %s %s", left, n.Op, right)
	default:
		return "", nil, fmt.Errorf("unexpected binary operator %s", n.Op)
	}
	return "(" + sql + ")", args, nil
}

func sqlCmp(op filter.Op) string {
	switch op {
	case filter.OpGt:
		return ">"
	case filter.OpGe:
		return ">="
	case filter.OpLt:
		return "<"
	case filter.OpLe:
		return "<="
	}
	return op.String()
}

func (c *Compiler) compileCall(n *filter.Call) (string, []any, error) {
	parts := make([]string, len(n.Args))
	params := make([][]any, len(n.Args))
	for i, arg := range n.Args {
		sql, argParams, err := c.compileExpr(arg)
		if err != nil {
			return "", nil, err
		}
		parts[i] = sql
		params[i] = argParams
	}

	// Most functions use each argument once, in order. Cases that
	// repeat an argument fragment must repeat its placeholders too.
	args := make([]any, 0, len(n.Args))
	for _, p := range params {
		args = append(args, p...)
	}

	var sql string
	switch n.Name {
	case "contains":
		sql = fmt.Sprintf("instr(%s, %s) > 0", parts[0], parts[1])
	case "startswith":
		sql = fmt.Sprintf("substr(%s, 1, length(%s)) = %s", parts[0], parts[1], parts[1])
		args = append(args, params[1]...)
	case "endswith":
		// substr from the computed start position rather than a
		// negative index: substr(x, -0) would be the whole string, so
		// an empty needle could never match.
		sql = fmt.Sprintf("substr(%s, length(%s) - length(%s) + 1) = %s",
			parts[0], parts[0], parts[1], parts[1])
		args = args[:0]
		args = append(args, params[0]...)
		args = append(args, params[0]...)
		args = append(args, params[1]...)
		args = append(args, params[1]...)
	case "tolower":
		sql = fmt.Sprintf("lower(%s)", parts[0])
	case "toupper":
		sql = fmt.Sprintf("upper(%s)", parts[0])
	case "trim":
		sql = fmt.Sprintf("trim(%s)", parts[0])
	case "length":
		sql = fmt.Sprintf("length(%s)", parts[0])
	case "indexof":
		sql = fmt.Sprintf("instr(%s, %s) - 1", parts[0], parts[1])
	case "concat":
		sql = strings.Join(parts, " || ")
	case "ceil":
		// The default driver build has no ceil(); CAST truncates toward
		// zero, the comparison corrects the positive non-integer case.
		sql = fmt.Sprintf("CAST(%s AS INTEGER) + (%s > CAST(%s AS INTEGER))", parts[0], parts[0], parts[0])
		args = append(args, params[0]...)
		args = append(args, params[0]...)
	case "floor":
		sql = fmt.Sprintf("CAST(%s AS INTEGER) - (%s < CAST(%s AS INTEGER))", parts[0], parts[0], parts[0])
		args = append(args, params[0]...)
		args = append(args, params[0]...)
	case "abs", "round", "min", "max":
		sql = fmt.Sprintf("%s(%s)", n.Name, strings.Join(parts, ", "))
	default:
		return "", nil, fmt.Errorf("no SQL mapping for function %q", n.Name)
	}

	// String predicates produce booleans; collapse unknown the same
	// way ordering comparisons do.
	switch n.Name {
	case "contains", "startswith", "endswith":
		if anyNullable(n.Args) {
			sql = fmt.Sprintf("ifnull(%s, 0)", sql)
		}
	}
	return "(" + sql + ")", args, nil
}

// nullable reports whether any field in the subtree can hold null, or
// the subtree contains a null literal.
func nullable(e filter.Expr) bool {
	switch n := e.(type) {
	case *filter.Literal:
		return value.IsNull(n.Val)
	case *filter.Field:
		return n.Resolved.Nullable
	case *filter.Unary:
		return nullable(n.X)
	case *filter.Binary:
		return nullable(n.L) || nullable(n.R)
	case *filter.Call:
		return anyNullable(n.Args)
	}
	return false
}

func anyNullable(exprs []filter.Expr) bool {
	for _, e := range exprs {
		if nullable(e) {
			return true
		}
	}
	return false
}

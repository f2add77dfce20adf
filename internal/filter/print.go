package filter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/querygrid/querygrid/internal/value"
)

// Sprint renders an expression in canonical infix form with explicit
// parentheses around every binary operation. The output re-parses to an
// identical tree, which makes it the stable form for golden tests and
// the CLI parse command.
func Sprint(e Expr) string {
	var b strings.Builder
	sprint(&b, e)
	return b.String()
}

func sprint(b *strings.Builder, e Expr) {
	switch n := e.(type) {
	case *Literal:
		b.WriteString(sprintLiteral(n.Val))
	case *Field:
		b.WriteString(n.Path)
	case *Unary:
		b.WriteString(n.Op.String())
		sprintChildGrouped(b, n.X)
	case *Binary:
		b.WriteByte('(')
		sprint(b, n.L)
		b.WriteByte(' ')
		b.WriteString(n.Op.String())
		b.WriteByte(' ')
		sprint(b, n.R)
		b.WriteByte(')')
	case *Call:
		b.WriteString(n.Name)
		b.WriteByte('(')
		for i, arg := range n.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			sprint(b, arg)
		}
		b.WriteByte(')')
	default:
		fmt.Fprintf(b, "<%T>", e)
	}
}

// sprintChildGrouped parenthesizes unary operands that are not already
// self-delimiting, so !a renders as !a but !(a && b) keeps its parens.
func sprintChildGrouped(b *strings.Builder, e Expr) {
	switch e.(type) {
	case *Literal, *Field, *Call, *Binary:
		sprint(b, e)
	default:
		b.WriteByte('(')
		sprint(b, e)
		b.WriteByte(')')
	}
}

func sprintLiteral(v value.Value) string {
	switch val := v.(type) {
	case value.Null:
		return "null"
	case value.Bool:
		if val {
			return "true"
		}
		return "false"
	case value.Int:
		return strconv.FormatInt(int64(val), 10)
	case value.Float:
		return strconv.FormatFloat(float64(val), 'g', -1, 64)
	case value.String:
		return strconv.Quote(string(val))
	case value.Time:
		return strconv.Quote(time.Time(val).Format(time.RFC3339Nano))
	default:
		return fmt.Sprintf("<%T>", v)
	}
}

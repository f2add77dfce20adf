package filter

import (
	"fmt"

	"github.com/querygrid/querygrid/internal/schema"
	"github.com/querygrid/querygrid/internal/value"
)

// Expr represents a node of a parsed filter expression.
//
// This is a sealed interface - only types in this package implement it.
// The marker method pattern prevents external implementations and
// enables exhaustive type switches in the backends.
//
// Node types:
//   - Literal: a constant value
//   - Field: a dotted field path, resolved against a schema by Bind
//   - Unary: logical not and arithmetic negation
//   - Binary: comparisons, logical connectives, arithmetic
//   - Call: a built-in string or math function application
type Expr interface {
	exprNode() // Marker method - seals interface to this package
	Pos() int  // Byte offset of the node in the source expression
}

// Op identifies a unary or binary operator.
type Op int

const (
	OpEq Op = iota
	OpNe
	OpGt
	OpGe
	OpLt
	OpLe
	OpAnd
	OpOr
	OpNot
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpNeg
)

func (o Op) String() string {
	switch o {
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	case OpNot:
		return "!"
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	case OpNeg:
		return "-"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Comparison reports whether the operator compares two operands to a
// boolean.
func (o Op) Comparison() bool {
	switch o {
	case OpEq, OpNe, OpGt, OpGe, OpLt, OpLe:
		return true
	}
	return false
}

// Arithmetic reports whether the operator combines numeric operands.
func (o Op) Arithmetic() bool {
	switch o {
	case OpAdd, OpSub, OpMul, OpDiv, OpMod:
		return true
	}
	return false
}

// Literal is a constant value in the expression.
type Literal struct {
	Val    value.Value
	Offset int
}

func (*Literal) exprNode()  {}
func (e *Literal) Pos() int { return e.Offset }

// Field is a dotted field path. Before Bind only Path is set; Bind
// fills Resolved with the schema field the path names.
type Field struct {
	Path     string
	Resolved schema.Field // zero until Bind succeeds
	Offset   int
}

func (*Field) exprNode()  {}
func (e *Field) Pos() int { return e.Offset }

// Unary is !x or -x.
type Unary struct {
	Op     Op // OpNot or OpNeg
	X      Expr
	Offset int
}

func (*Unary) exprNode()  {}
func (e *Unary) Pos() int { return e.Offset }

// Binary is a two-operand operation: comparison, logical connective, or
// arithmetic.
type Binary struct {
	Op     Op
	L, R   Expr
	Offset int // offset of the operator token
}

func (*Binary) exprNode()  {}
func (e *Binary) Pos() int { return e.Offset }

// Call is a built-in function application, e.g. contains(name, "ah").
// Name is stored lowercased.
type Call struct {
	Name   string
	Args   []Expr
	Offset int
}

func (*Call) exprNode()  {}
func (e *Call) Pos() int { return e.Offset }

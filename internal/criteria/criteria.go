// Package criteria holds the descriptor types a data grid produces:
// filter terms, sort orders, column selections, and SQL-LIKE search
// criteria. Each builder keeps an ordered descriptor list with
// add/insert/remove mutation and compiles it into a filter expression
// or backend input. Descriptors round-trip through JSON; compiled
// expression trees never do.
package criteria

import "fmt"

// Operator is a single-field filter operator.
//
// The ordering and equality operators apply to any comparable field
// kind; the string operators require a string field.
type Operator int

const (
	OpEq Operator = iota
	OpNe
	OpGt
	OpGe
	OpLt
	OpLe
	OpContains
	OpStartsWith
	OpEndsWith
)

var operatorNames = map[Operator]string{
	OpEq:         "eq",
	OpNe:         "ne",
	OpGt:         "gt",
	OpGe:         "ge",
	OpLt:         "lt",
	OpLe:         "le",
	OpContains:   "contains",
	OpStartsWith: "startswith",
	OpEndsWith:   "endswith",
}

func (o Operator) String() string {
	if name, ok := operatorNames[o]; ok {
		return name
	}
	return fmt.Sprintf("operator(%d)", int(o))
}

// ParseOperator converts the wire name of an operator back to its value.
func ParseOperator(name string) (Operator, error) {
	for op, n := range operatorNames {
		if n == name {
			return op, nil
		}
	}
	return 0, fmt.Errorf("unknown filter operator %q", name)
}

// StringOp reports whether the operator is a string predicate
// (contains/startswith/endswith) rather than a comparison.
func (o Operator) StringOp() bool {
	switch o {
	case OpContains, OpStartsWith, OpEndsWith:
		return true
	}
	return false
}

// Direction orders a sort key ascending or descending.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// ParseDirection converts "asc" or "desc" to a Direction.
func ParseDirection(name string) (Direction, error) {
	switch name {
	case "asc":
		return Ascending, nil
	case "desc":
		return Descending, nil
	default:
		return 0, fmt.Errorf("unknown sort direction %q", name)
	}
}

// Conjunction says how a filter term attaches to the terms before it.
type Conjunction int

const (
	ConjAnd Conjunction = iota
	ConjOr
)

func (c Conjunction) String() string {
	if c == ConjOr {
		return "or"
	}
	return "and"
}

// ParseConjunction converts "and" or "or" to a Conjunction.
func ParseConjunction(name string) (Conjunction, error) {
	switch name {
	case "and":
		return ConjAnd, nil
	case "or":
		return ConjOr, nil
	default:
		return 0, fmt.Errorf("unknown conjunction %q", name)
	}
}

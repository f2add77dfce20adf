package value

import (
	"fmt"
	"time"
)

// Compare returns -1, 0, or 1 ordering a before, equal to, or after b.
//
// Comparable pairs:
//   - Int/Int, Float/Float, and mixed Int/Float (compared as float64)
//   - String/String (ordinal byte order; backends apply collation on top)
//   - Bool/Bool (false < true)
//   - Time/Time
//   - Null/Null (equal)
//
// Any other pairing is a comparison error. Null against non-null is
// deliberately an error here: the evaluator implements three-valued
// comparison semantics itself and must not reach Compare with a
// mismatched null.
func Compare(a, b Value) (int, error) {
	if a == nil || b == nil {
		return 0, fmt.Errorf("cannot compare nil Value")
	}

	switch av := a.(type) {
	case Null:
		if IsNull(b) {
			return 0, nil
		}
	case Int:
		switch bv := b.(type) {
		case Int:
			return cmpInt64(int64(av), int64(bv)), nil
		case Float:
			return cmpFloat64(float64(av), float64(bv)), nil
		}
	case Float:
		switch bv := b.(type) {
		case Int:
			return cmpFloat64(float64(av), float64(bv)), nil
		case Float:
			return cmpFloat64(float64(av), float64(bv)), nil
		}
	case String:
		if bv, ok := b.(String); ok {
			switch {
			case av < bv:
				return -1, nil
			case av > bv:
				return 1, nil
			default:
				return 0, nil
			}
		}
	case Bool:
		if bv, ok := b.(Bool); ok {
			switch {
			case !bool(av) && bool(bv):
				return -1, nil
			case bool(av) && !bool(bv):
				return 1, nil
			default:
				return 0, nil
			}
		}
	case Time:
		if bv, ok := b.(Time); ok {
			at, bt := time.Time(av), time.Time(bv)
			switch {
			case at.Before(bt):
				return -1, nil
			case at.After(bt):
				return 1, nil
			default:
				return 0, nil
			}
		}
	}

	return 0, fmt.Errorf("cannot compare %s with %s", a.Kind(), b.Kind())
}

// Equal reports whether a and b are equal under Compare semantics.
// Unlike Compare, mismatched kinds are not an error: they are unequal.
func Equal(a, b Value) bool {
	c, err := Compare(a, b)
	return err == nil && c == 0
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpFloat64(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

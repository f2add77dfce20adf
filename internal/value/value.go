package value

import (
	"fmt"
	"time"
)

// Value is a sealed interface representing the constrained value domain
// used throughout the query layer. Only Null, Bool, Int, Float, String,
// and Time implement it. The marker method pattern prevents external
// implementations and enables exhaustive type switches in the backends.
type Value interface {
	valueNode() // Sealed - only types in this package implement it
	Kind() Kind
}

// Kind identifies the dynamic type of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindTime
)

// String returns the lowercase kind name used in schemas and error messages.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindTime:
		return "time"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Numeric reports whether the kind is Int or Float.
func (k Kind) Numeric() bool {
	return k == KindInt || k == KindFloat
}

// Null represents an absent value.
// Using an explicit type keeps nil out of the value domain.
type Null struct{}

func (Null) valueNode() {}

// Kind returns KindNull.
func (Null) Kind() Kind { return KindNull }

// Bool represents a boolean value.
type Bool bool

func (Bool) valueNode() {}

// Kind returns KindBool.
func (Bool) Kind() Kind { return KindBool }

// Int represents an integer value. Always int64.
type Int int64

func (Int) valueNode() {}

// Kind returns KindInt.
func (Int) Kind() Kind { return KindInt }

// Float represents a floating-point value.
type Float float64

func (Float) valueNode() {}

// Kind returns KindFloat.
func (Float) Kind() Kind { return KindFloat }

// String represents a string value.
type String string

func (String) valueNode() {}

// Kind returns KindString.
func (String) Kind() Kind { return KindString }

// Time represents an instant. Serialized as RFC 3339.
type Time time.Time

func (Time) valueNode() {}

// Kind returns KindTime.
func (Time) Kind() Kind { return KindTime }

// Std returns the underlying time.Time.
func (t Time) Std() time.Time { return time.Time(t) }

// IsNull reports whether v is the Null value.
func IsNull(v Value) bool {
	_, ok := v.(Null)
	return ok
}

package value

import (
	"fmt"
	"time"
)

// TimeText is the layout for times stored or bound as SQL TEXT.
// SQLite has no time type; text with a fixed-width fractional part and
// a UTC offset keeps lexical ordering chronological, which RFC 3339's
// variable-width fractions do not ("...00.5Z" sorts before "...00Z").
const TimeText = "2006-01-02T15:04:05.000000000Z07:00"

// FromAny converts a Go native value to a Value.
// Supports the types produced by database/sql scanning, yaml.v3
// decoding, and encoding/json decoding with UseNumber disabled.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(int64(val)), nil
	case int64:
		return Int(val), nil
	case float64:
		return Float(val), nil
	case string:
		return String(val), nil
	case []byte:
		return String(string(val)), nil
	case time.Time:
		return Time(val), nil
	default:
		return nil, fmt.Errorf("unsupported native type: %T", v)
	}
}

// ToParam converts a Value to a Go native type suitable as a SQL
// parameter. All values are parameterized, never interpolated, so this
// is the only bridge from the value domain into the driver.
func ToParam(v Value) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("cannot convert nil Value to SQL parameter")
	case Null:
		return nil, nil
	case Bool:
		return bool(val), nil
	case Int:
		return int64(val), nil
	case Float:
		return float64(val), nil
	case String:
		return string(val), nil
	case Time:
		return time.Time(val).UTC().Format(TimeText), nil
	default:
		return nil, fmt.Errorf("unsupported Value type for SQL parameter: %T", v)
	}
}

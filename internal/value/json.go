package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Marshal serializes a Value to JSON bytes.
// Uses type-switch dispatch so every member of the sealed domain is
// handled explicitly. Time marshals as an RFC 3339 string.
func Marshal(v Value) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("cannot marshal nil Value (use value.Null)")
	case Null:
		return []byte("null"), nil
	case Bool:
		if val {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case Int:
		return []byte(fmt.Sprintf("%d", int64(val))), nil
	case Float:
		return json.Marshal(float64(val))
	case String:
		return json.Marshal(string(val))
	case Time:
		return json.Marshal(time.Time(val).Format(time.RFC3339Nano))
	default:
		return nil, fmt.Errorf("unknown Value type: %T", v)
	}
}

// Unmarshal decodes JSON bytes into a Value.
// Dispatch is on the first byte of the encoding:
//   - quoted text decodes to String (Time is only produced when a schema
//     binds the field to a time kind, see Coerce)
//   - numbers decode to Int when they have no fraction or exponent,
//     Float otherwise
func Unmarshal(data []byte) (Value, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty JSON value")
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		return String(s), nil

	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, err
		}
		return Bool(b), nil

	case 'n':
		if string(data) != "null" {
			return nil, fmt.Errorf("invalid JSON value: %s", data)
		}
		return Null{}, nil

	case '[', '{':
		return nil, fmt.Errorf("composite JSON values are not part of the value domain: %s", data)

	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		s := string(n)
		if strings.ContainsAny(s, ".eE") {
			f, err := n.Float64()
			if err != nil {
				return nil, fmt.Errorf("number out of float64 range: %s", n)
			}
			return Float(f), nil
		}
		i, err := n.Int64()
		if err != nil {
			return nil, fmt.Errorf("number out of int64 range: %s", n)
		}
		return Int(i), nil
	}
}

// Coerce converts v to the target kind where a lossless conversion
// exists. Used when JSON input is bound against a schema: quoted RFC
// 3339 text coerces to Time, Int widens to Float. Null coerces to
// anything (the schema decides nullability, not the value layer).
func Coerce(v Value, target Kind) (Value, error) {
	if v.Kind() == target {
		return v, nil
	}
	switch {
	case IsNull(v):
		return v, nil
	case v.Kind() == KindInt && target == KindFloat:
		return Float(float64(v.(Int))), nil
	case v.Kind() == KindString && target == KindTime:
		t, err := time.Parse(time.RFC3339Nano, string(v.(String)))
		if err != nil {
			return nil, fmt.Errorf("invalid time literal %q: %w", string(v.(String)), err)
		}
		return Time(t), nil
	default:
		return nil, fmt.Errorf("cannot coerce %s to %s", v.Kind(), target)
	}
}

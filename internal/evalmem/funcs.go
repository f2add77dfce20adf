package evalmem

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/querygrid/querygrid/internal/filter"
	"github.com/querygrid/querygrid/internal/value"
)

// evalCall evaluates a built-in function application. Any null
// argument makes the result null; the signature itself was checked at
// bind time.
func evalCall(n *filter.Call, row Row) (value.Value, error) {
	args := make([]value.Value, len(n.Args))
	for i, arg := range n.Args {
		v, err := Eval(arg, row)
		if err != nil {
			return nil, err
		}
		if value.IsNull(v) {
			return value.Null{}, nil
		}
		args[i] = v
	}

	switch n.Name {
	case "contains":
		return value.Bool(strings.Contains(str(args[0]), str(args[1]))), nil
	case "startswith":
		return value.Bool(strings.HasPrefix(str(args[0]), str(args[1]))), nil
	case "endswith":
		return value.Bool(strings.HasSuffix(str(args[0]), str(args[1]))), nil
	case "tolower":
		return value.String(strings.ToLower(str(args[0]))), nil
	case "toupper":
		return value.String(strings.ToUpper(str(args[0]))), nil
	case "trim":
		return value.String(strings.TrimSpace(str(args[0]))), nil
	case "length":
		return value.Int(int64(utf8.RuneCountInString(str(args[0])))), nil
	case "indexof":
		return value.Int(runeIndex(str(args[0]), str(args[1]))), nil
	case "concat":
		var b strings.Builder
		for _, a := range args {
			b.WriteString(str(a))
		}
		return value.String(b.String()), nil

	case "abs":
		switch num := args[0].(type) {
		case value.Int:
			if num < 0 {
				return value.Int(-num), nil
			}
			return num, nil
		case value.Float:
			return value.Float(math.Abs(float64(num))), nil
		}
	case "ceil":
		f, err := asFloat(args[0])
		if err != nil {
			return nil, err
		}
		return value.Float(math.Ceil(f)), nil
	case "floor":
		f, err := asFloat(args[0])
		if err != nil {
			return nil, err
		}
		return value.Float(math.Floor(f)), nil
	case "round":
		f, err := asFloat(args[0])
		if err != nil {
			return nil, err
		}
		return value.Float(math.Round(f)), nil
	case "min":
		return minMax(args[0], args[1], true)
	case "max":
		return minMax(args[0], args[1], false)
	}
	return nil, fmt.Errorf("unknown function %q", n.Name)
}

func str(v value.Value) string {
	return string(v.(value.String))
}

// runeIndex returns the 0-based rune index of needle in haystack, or
// -1. Rune-based so multi-byte text indexes the way a user counts
// characters.
func runeIndex(haystack, needle string) int64 {
	byteIdx := strings.Index(haystack, needle)
	if byteIdx < 0 {
		return -1
	}
	return int64(utf8.RuneCountInString(haystack[:byteIdx]))
}

func minMax(a, b value.Value, wantMin bool) (value.Value, error) {
	c, err := value.Compare(a, b)
	if err != nil {
		return nil, err
	}
	if (wantMin && c <= 0) || (!wantMin && c >= 0) {
		return a, nil
	}
	return b, nil
}

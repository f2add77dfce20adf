package filter

import (
	"github.com/querygrid/querygrid/internal/value"
)

// FuncSpec describes a built-in function: its arity and a check that
// validates argument kinds and yields the result kind.
type FuncSpec struct {
	Name    string
	MinArgs int
	MaxArgs int // -1 means unbounded
	Check   func(offset int, args []value.Kind) (value.Kind, error)
}

// Funcs is the built-in function table, keyed by lowercase name.
// String functions follow the usual grid-filter surface; math functions
// cover the scalar helpers both backends can express.
var Funcs = map[string]FuncSpec{
	"contains":   stringPredicate("contains"),
	"startswith": stringPredicate("startswith"),
	"endswith":   stringPredicate("endswith"),

	"tolower": stringTransform("tolower"),
	"toupper": stringTransform("toupper"),
	"trim":    stringTransform("trim"),

	"length": {
		Name: "length", MinArgs: 1, MaxArgs: 1,
		Check: func(offset int, args []value.Kind) (value.Kind, error) {
			if args[0] != value.KindString {
				return 0, bindErrf(offset, "length expects a string argument, got %s", args[0])
			}
			return value.KindInt, nil
		},
	},
	"indexof": {
		Name: "indexof", MinArgs: 2, MaxArgs: 2,
		Check: func(offset int, args []value.Kind) (value.Kind, error) {
			if args[0] != value.KindString || args[1] != value.KindString {
				return 0, bindErrf(offset, "indexof expects (string, string), got (%s, %s)", args[0], args[1])
			}
			return value.KindInt, nil
		},
	},
	"concat": {
		Name: "concat", MinArgs: 2, MaxArgs: -1,
		Check: func(offset int, args []value.Kind) (value.Kind, error) {
			for _, k := range args {
				if k != value.KindString {
					return 0, bindErrf(offset, "concat expects string arguments, got %s", k)
				}
			}
			return value.KindString, nil
		},
	},

	"abs": {
		Name: "abs", MinArgs: 1, MaxArgs: 1,
		Check: func(offset int, args []value.Kind) (value.Kind, error) {
			if !args[0].Numeric() {
				return 0, bindErrf(offset, "abs expects a numeric argument, got %s", args[0])
			}
			return args[0], nil
		},
	},
	"ceil":  rounding("ceil"),
	"floor": rounding("floor"),
	"round": rounding("round"),

	"min": minMax("min"),
	"max": minMax("max"),
}

func stringPredicate(name string) FuncSpec {
	return FuncSpec{
		Name: name, MinArgs: 2, MaxArgs: 2,
		Check: func(offset int, args []value.Kind) (value.Kind, error) {
			if args[0] != value.KindString || args[1] != value.KindString {
				return 0, bindErrf(offset, "%s expects (string, string), got (%s, %s)", name, args[0], args[1])
			}
			return value.KindBool, nil
		},
	}
}

func stringTransform(name string) FuncSpec {
	return FuncSpec{
		Name: name, MinArgs: 1, MaxArgs: 1,
		Check: func(offset int, args []value.Kind) (value.Kind, error) {
			if args[0] != value.KindString {
				return 0, bindErrf(offset, "%s expects a string argument, got %s", name, args[0])
			}
			return value.KindString, nil
		},
	}
}

func rounding(name string) FuncSpec {
	return FuncSpec{
		Name: name, MinArgs: 1, MaxArgs: 1,
		Check: func(offset int, args []value.Kind) (value.Kind, error) {
			if !args[0].Numeric() {
				return 0, bindErrf(offset, "%s expects a numeric argument, got %s", name, args[0])
			}
			return value.KindFloat, nil
		},
	}
}

func minMax(name string) FuncSpec {
	return FuncSpec{
		Name: name, MinArgs: 2, MaxArgs: 2,
		Check: func(offset int, args []value.Kind) (value.Kind, error) {
			if !args[0].Numeric() || !args[1].Numeric() {
				return 0, bindErrf(offset, "%s expects numeric arguments, got (%s, %s)", name, args[0], args[1])
			}
			if args[0] == value.KindInt && args[1] == value.KindInt {
				return value.KindInt, nil
			}
			return value.KindFloat, nil
		},
	}
}

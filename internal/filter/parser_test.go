package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parse is a test helper asserting the expression parses.
func parse(t *testing.T, src string) Expr {
	t.Helper()
	e, err := Parse(src)
	require.NoError(t, err, "parse %q", src)
	return e
}

func TestParse_Precedence(t *testing.T) {
	cases := map[string]string{
		`a == 1 && b == 2 || c == 3`:   `(((a == 1) && (b == 2)) || (c == 3))`,
		`a == 1 || b == 2 && c == 3`:   `((a == 1) || ((b == 2) && (c == 3)))`,
		`price + tax * 2 > 100`:        `((price + (tax * 2)) > 100)`,
		`(price + tax) * 2 > 100`:      `(((price + tax) * 2) > 100)`,
		`!done && ready`:               `(!done && ready)`,
		`!(done && ready)`:             `!(done && ready)`,
		`a % 2 == 0`:                   `((a % 2) == 0)`,
		`stock - 1 >= minimum`:         `((stock - 1) >= minimum)`,
		`-price < -10`:                 `(-price < -10)`,
		`contains(name, 'x') || done`:  `(contains(name, "x") || done)`,
		`min(a, b) <= max(a, 1 + 2)`:   `(min(a, b) <= max(a, (1 + 2)))`,
		`tolower(name) == 'ok'`:        `(tolower(name) == "ok")`,
		`Price GT 10 AND Price LE 20`:  `((Price > 10) && (Price <= 20))`,
		`not (a == 1)`:                 `!(a == 1)`,
		`length(trim(name)) > 0`:       `(length(trim(name)) > 0)`,
		`origin.city == "Oslo"`:        `(origin.city == "Oslo")`,
		`discount == null`:             `(discount == null)`,
		`active == true && ok != false`: `((active == true) && (ok != false))`,
	}
	for src, want := range cases {
		assert.Equal(t, want, Sprint(parse(t, src)), "input %q", src)
	}
}

func TestParse_CanonicalFormReparses(t *testing.T) {
	srcs := []string{
		`a == 1 && (b == 2 || c == 3)`,
		`abs(price - cost) / price > 0.1`,
		`concat(first, ' ', last) == 'Ada Lovelace'`,
	}
	for _, src := range srcs {
		first := Sprint(parse(t, src))
		second := Sprint(parse(t, first))
		assert.Equal(t, first, second, "canonical form must be a fixed point")
	}
}

func TestParse_NegativeLiteralFolding(t *testing.T) {
	e := parse(t, `a > -3`)
	bin, ok := e.(*Binary)
	require.True(t, ok)
	_, isLit := bin.R.(*Literal)
	assert.True(t, isLit, "negated numeric literal folds into a literal node")

	e = parse(t, `-price < 0`)
	bin = e.(*Binary)
	_, isUnary := bin.L.(*Unary)
	assert.True(t, isUnary, "negated field stays a unary node")
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		``:                 "empty expression",
		`   `:              "empty expression",
		`a == `:            "unexpected end of input",
		`a == 1)`:          "unexpected ) after expression",
		`(a == 1`:          "expected )",
		`a < b < c`:        "comparisons do not chain",
		`contains(name`:    "expected ',' or ')'",
		`contains(name,)`:  "unexpected )",
		`a.b(c)`:           "cannot contain dots",
		`1 2`:              "unexpected integer literal after expression",
	}
	for src, want := range cases {
		_, err := Parse(src)
		require.Error(t, err, "input %q", src)
		assert.Contains(t, err.Error(), want, "input %q", src)
	}
}

func TestParse_EmptyArgList(t *testing.T) {
	e, err := Parse(`length() > 0`)
	require.NoError(t, err, "arity is a bind concern, not a parse concern")
	bin := e.(*Binary)
	call := bin.L.(*Call)
	assert.Empty(t, call.Args)
}

package evalmem

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querygrid/querygrid/internal/filter"
	"github.com/querygrid/querygrid/internal/schema"
	"github.com/querygrid/querygrid/internal/value"
)

type product struct {
	Name      string    `json:"name"`
	UnitPrice float64   `json:"unit_price"`
	Stock     int       `json:"stock"`
	Active    bool      `json:"active"`
	AddedAt   time.Time `json:"added_at"`
	Discount  *float64  `json:"discount"`
	Origin    struct {
		City string `json:"city"`
	} `json:"origin"`
}

func productSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.FromStruct("products", reflect.TypeOf(product{}))
	require.NoError(t, err)
	return s
}

func sampleRow(t *testing.T) Row {
	t.Helper()
	p := product{
		Name:      "Mahogany Desk",
		UnitPrice: 249.5,
		Stock:     12,
		Active:    true,
		AddedAt:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	p.Origin.City = "Oslo"
	row, err := FromStruct(productSchema(t), p)
	require.NoError(t, err)
	return row
}

// evalSrc parses, binds, and evaluates one expression against a row.
func evalSrc(t *testing.T, src string, row Row) value.Value {
	t.Helper()
	s := productSchema(t)
	e, err := filter.Parse(src)
	require.NoError(t, err, "parse %q", src)
	_, err = filter.Bind(e, s)
	require.NoError(t, err, "bind %q", src)
	v, err := Eval(e, row)
	require.NoError(t, err, "eval %q", src)
	return v
}

func TestFromStruct_NestedAndNil(t *testing.T) {
	row := sampleRow(t)
	assert.Equal(t, value.String("Oslo"), row.Get("origin.city"))
	assert.True(t, value.IsNull(row.Get("discount")), "nil pointer extracts as null")
	assert.True(t, value.IsNull(row.Get("no_such_field")), "missing entries read as null")
}

func TestEval_Comparisons(t *testing.T) {
	row := sampleRow(t)
	cases := map[string]bool{
		`stock == 12`:                      true,
		`stock != 12`:                      false,
		`unit_price > 200`:                 true,
		`unit_price <= 249.5`:              true,
		`stock > unit_price`:               false,
		`name == 'Mahogany Desk'`:          true,
		`origin.city == 'Oslo'`:            true,
		`active == true`:                   true,
		`added_at >= '2024-01-01T00:00:00Z'`: true,
		`added_at < '2024-01-01T00:00:00Z'`:  false,
	}
	for src, want := range cases {
		assert.Equal(t, value.Bool(want), evalSrc(t, src, row), "input %q", src)
	}
}

func TestEval_Arithmetic(t *testing.T) {
	row := sampleRow(t)
	cases := map[string]value.Value{
		`stock + 3`:          value.Int(15),
		`stock - 20`:         value.Int(-8),
		`stock * 2`:          value.Int(24),
		`stock / 5`:          value.Int(2), // integer division truncates
		`stock % 5`:          value.Int(2),
		`unit_price * 2`:     value.Float(499),
		`stock / 8.0`:        value.Float(1.5),
		`-(stock)`:           value.Int(-12),
	}
	for src, want := range cases {
		assert.Equal(t, want, evalSrc(t, src, row), "input %q", src)
	}
}

func TestEval_DivisionByZero(t *testing.T) {
	// A zero divisor yields null, never an error, so one bad row
	// cannot fail a whole query. The comparison then collapses to
	// false like any other null operand.
	row := sampleRow(t)
	cases := map[string]value.Value{
		`stock / 0`:          value.Null{},
		`stock % 0`:          value.Null{},
		`unit_price / 0`:     value.Null{},
		`stock / 0 > 1`:      value.Bool(false),
		`unit_price / 0 > 1`: value.Bool(false),
	}
	for src, want := range cases {
		assert.Equal(t, want, evalSrc(t, src, row), "input %q", src)
	}
}

func TestEval_NullSemantics(t *testing.T) {
	row := sampleRow(t)
	cases := map[string]value.Value{
		`discount == null`:        value.Bool(true),
		`discount != null`:        value.Bool(false),
		`discount > 0`:            value.Bool(false),
		`discount < 0`:            value.Bool(false),
		`discount + 1`:            value.Null{},
		`abs(discount)`:           value.Null{},
		`discount > 0 || active`:  value.Bool(true),
		`discount > 0 && active`:  value.Bool(false),
		`!(discount > 0)`:         value.Bool(true),
	}
	for src, want := range cases {
		assert.Equal(t, want, evalSrc(t, src, row), "input %q", src)
	}
}

func TestEval_StringFunctions(t *testing.T) {
	row := sampleRow(t)
	cases := map[string]value.Value{
		`contains(name, 'gany')`:       value.Bool(true),
		`contains(name, 'walnut')`:     value.Bool(false),
		`startswith(name, 'Maho')`:     value.Bool(true),
		`endswith(name, 'Desk')`:       value.Bool(true),
		`tolower(name)`:                value.String("mahogany desk"),
		`toupper(origin.city)`:         value.String("OSLO"),
		`trim('  x  ')`:                value.String("x"),
		`length(name)`:                 value.Int(13),
		`indexof(name, 'Desk')`:        value.Int(9),
		`indexof(name, 'zzz')`:         value.Int(-1),
		`concat(name, ' / ', origin.city)`: value.String("Mahogany Desk / Oslo"),
	}
	for src, want := range cases {
		assert.Equal(t, want, evalSrc(t, src, row), "input %q", src)
	}
}

func TestEval_LengthCountsRunes(t *testing.T) {
	p := product{Name: "møbel"}
	row, err := FromStruct(productSchema(t), p)
	require.NoError(t, err)
	assert.Equal(t, value.Int(5), evalSrc(t, `length(name)`, row))
	assert.Equal(t, value.Int(1), evalSrc(t, `indexof(name, 'øbel')`, row))
}

func TestEval_MathFunctions(t *testing.T) {
	row := sampleRow(t)
	cases := map[string]value.Value{
		`abs(stock - 20)`:       value.Int(8),
		`abs(0 - unit_price)`:   value.Float(249.5),
		`ceil(unit_price)`:      value.Float(250),
		`floor(unit_price)`:     value.Float(249),
		`round(unit_price)`:     value.Float(249), // 249.5 rounds half away from zero... see below
		`min(stock, 5)`:         value.Int(5),
		`max(stock, 5)`:         value.Int(12),
		`min(unit_price, 100)`:  value.Int(100),
	}
	// math.Round rounds half away from zero: 249.5 -> 250.
	cases[`round(unit_price)`] = value.Float(250)
	for src, want := range cases {
		assert.Equal(t, want, evalSrc(t, src, row), "input %q", src)
	}
}

func TestPredicate_NullResultIsNoMatch(t *testing.T) {
	row := sampleRow(t)
	s := productSchema(t)

	// discount is null, so the whole comparison subtree is false and
	// the predicate cleanly reports no match.
	e, err := filter.Parse(`discount > 10`)
	require.NoError(t, err)
	require.NoError(t, filter.BindPredicate(e, s))

	ok, err := Predicate(e)(row)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFromStructs(t *testing.T) {
	s := productSchema(t)
	rows, err := FromStructs(s, []product{{Name: "a"}, {Name: "b"}})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, value.String("b"), rows[1].Get("name"))

	_, err = FromStructs(s, "not a slice")
	assert.Error(t, err)
}

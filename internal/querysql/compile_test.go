package querysql

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querygrid/querygrid/internal/criteria"
	"github.com/querygrid/querygrid/internal/filter"
	"github.com/querygrid/querygrid/internal/schema"
	"github.com/querygrid/querygrid/internal/value"
)

func productsSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.New("products", []schema.Field{
		{Path: "name", Column: "name", Kind: value.KindString},
		{Path: "unit_price", Column: "unit_price", Kind: value.KindFloat},
		{Path: "stock", Column: "stock", Kind: value.KindInt},
		{Path: "active", Column: "active", Kind: value.KindBool},
		{Path: "added_at", Column: "added_at", Kind: value.KindTime},
		{Path: "discount", Column: "discount", Kind: value.KindFloat, Nullable: true},
		{Path: "origin.city", Column: "origin_city", Kind: value.KindString},
	})
	require.NoError(t, err)
	return s
}

func mustParse(t *testing.T, s *schema.Schema, src string) filter.Expr {
	t.Helper()
	e, err := filter.Parse(src)
	require.NoError(t, err, "parse %q", src)
	require.NoError(t, filter.BindPredicate(e, s), "bind %q", src)
	return e
}

// render flattens a compiled query for golden comparison: SQL on the
// first line, then one line per parameter.
func render(sql string, args []any) []byte {
	var b strings.Builder
	b.WriteString(sql)
	b.WriteByte('\n')
	for i, a := range args {
		fmt.Fprintf(&b, "arg[%d]: %v\n", i, a)
	}
	return []byte(b.String())
}

func TestCompile_Golden(t *testing.T) {
	s := productsSchema(t)
	c := NewCompiler(s)

	testCases := []struct {
		name  string
		in    Input
		count bool
	}{
		{
			name: "filtered_page",
			in: Input{
				Filter: mustParse(t, s, `stock > 0 && contains(name, 'desk')`),
				Orders: []criteria.SortOrder{{Path: "stock", Direction: criteria.Descending}},
				Page:   criteria.Page{Skip: 20, Top: 10},
			},
		},
		{
			name: "nullable_and_null_literal",
			in: Input{
				Filter: mustParse(t, s, `discount > 10 || discount == null`),
			},
		},
		{
			name: "search_select_alias",
			in: Input{
				Search: []criteria.SearchCriteria{
					{Path: "name", Pattern: "ma*", CaseInsensitive: true},
					{Path: "origin.city", Pattern: "Os*"},
				},
				Selections: []criteria.Selection{
					{Path: "name", Alias: "label"},
					{Path: "unit_price"},
				},
				Orders: []criteria.SortOrder{
					{Path: "name", Direction: criteria.Ascending},
					{Path: "unit_price", Direction: criteria.Descending},
				},
				Page: criteria.Page{Top: 5},
			},
		},
		{
			name: "count_startswith",
			in: Input{
				Filter: mustParse(t, s, `startswith(name, 'Ma')`),
			},
			count: true,
		},
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var (
				sql  string
				args []any
				err  error
			)
			if tc.count {
				sql, args, err = c.CompileCount(tc.in)
			} else {
				sql, args, err = c.Compile(tc.in)
			}
			require.NoError(t, err)
			g.Assert(t, tc.name, render(sql, args))
		})
	}
}

func TestCompile_NoStringInterpolation(t *testing.T) {
	s := productsSchema(t)
	c := NewCompiler(s)

	dangerous := "'; DROP TABLE products; --"
	e := filter.Compare("name", filter.OpEq, value.String(dangerous))
	require.NoError(t, filter.BindPredicate(e, s))

	sql, args, err := c.Compile(Input{Filter: e})
	require.NoError(t, err)

	assert.NotContains(t, sql, dangerous, "value must not appear in SQL")
	assert.Contains(t, sql, "name IS ?")
	assert.Equal(t, []any{dangerous}, args)
}

func TestCompile_OrderByAlwaysPresent(t *testing.T) {
	s := productsSchema(t)
	c := NewCompiler(s)

	inputs := []Input{
		{},
		{Filter: mustParse(t, s, `stock > 0`)},
		{Orders: []criteria.SortOrder{{Path: "name", Direction: criteria.Ascending}}},
	}
	for _, in := range inputs {
		sql, _, err := c.Compile(in)
		require.NoError(t, err)
		assert.Contains(t, sql, "ORDER BY")
		assert.True(t, strings.HasSuffix(strings.TrimSuffix(sql, " LIMIT ? OFFSET ?"), "id ASC"),
			"id tiebreaker must close the ORDER BY: %s", sql)
	}
}

func TestCompile_EqualityUsesIS(t *testing.T) {
	s := productsSchema(t)
	c := NewCompiler(s)

	sql, args, err := c.Compile(Input{Filter: mustParse(t, s, `discount != null`)})
	require.NoError(t, err)
	assert.Contains(t, sql, "discount IS NOT ?")
	assert.Equal(t, []any{nil}, args)
}

func TestCompile_TimeLiteralAsText(t *testing.T) {
	s := productsSchema(t)
	c := NewCompiler(s)

	sql, args, err := c.Compile(Input{Filter: mustParse(t, s, `added_at >= '2024-03-01T00:00:00Z'`)})
	require.NoError(t, err)
	assert.Contains(t, sql, "added_at >= ?")
	require.Len(t, args, 1)
	assert.Equal(t, "2024-03-01T00:00:00.000000000Z", args[0],
		"time params are fixed-width text so they order lexically")
}

func TestCompile_FunctionMappings(t *testing.T) {
	s := productsSchema(t)
	c := NewCompiler(s)

	cases := []struct {
		src      string
		wantSQL  string
		wantArgs []any
	}{
		{`endswith(name, 'sk')`, `(substr(name, length(name) - length(?) + 1) = ?)`, []any{"sk", "sk"}},
		{`endswith(name, '')`, `(substr(name, length(name) - length(?) + 1) = ?)`, []any{"", ""}},
		{`indexof(name, 'x') >= 0`, `((instr(name, ?) - 1) >= ?)`, []any{"x", int64(0)}},
		{`concat(name, origin.city) == 'ab'`, `((name || origin_city) IS ?)`, []any{"ab"}},
		{`tolower(name) == 'desk'`, `((lower(name)) IS ?)`, []any{"desk"}},
		{`length(trim(name)) > 3`, `((length((trim(name)))) > ?)`, []any{int64(3)}},
		{`abs(stock - 5) <= 2`, `((abs((stock - ?))) <= ?)`, []any{int64(5), int64(2)}},
		{`min(stock, 3) == 3`, `((min(stock, ?)) IS ?)`, []any{int64(3), int64(3)}},
		{`ceil(unit_price) == 250`, `((CAST(unit_price AS INTEGER) + (unit_price > CAST(unit_price AS INTEGER))) IS ?)`, []any{int64(250)}},
		{`stock % 2 == 0`, `((stock % ?) IS ?)`, []any{int64(2), int64(0)}},
	}
	for _, tc := range cases {
		sql, args, err := c.Compile(Input{Filter: mustParse(t, s, tc.src)})
		require.NoError(t, err, "input %q", tc.src)
		assert.Contains(t, sql, tc.wantSQL, "input %q", tc.src)
		assert.Equal(t, tc.wantArgs, args, "input %q", tc.src)
	}
}

func TestCompile_NullableComparisonWrapped(t *testing.T) {
	s := productsSchema(t)
	c := NewCompiler(s)

	sql, _, err := c.Compile(Input{Filter: mustParse(t, s, `discount > 10`)})
	require.NoError(t, err)
	assert.Contains(t, sql, "ifnull(discount > ?, 0)")

	// Non-nullable operands stay unwrapped.
	sql, _, err = c.Compile(Input{Filter: mustParse(t, s, `stock > 10`)})
	require.NoError(t, err)
	assert.NotContains(t, sql, "ifnull")
}

func TestCompile_Errors(t *testing.T) {
	s := productsSchema(t)
	c := NewCompiler(s)

	_, _, err := c.Compile(Input{Orders: []criteria.SortOrder{{Path: "nope"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown sort field "nope"`)

	_, _, err = c.Compile(Input{Search: []criteria.SearchCriteria{{Path: "stock", Pattern: "1*"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search requires string")

	_, _, err = c.Compile(Input{Selections: []criteria.Selection{{Path: "name", Alias: "bad name"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output name")

	_, _, err = c.Compile(Input{Page: criteria.Page{Skip: -1}})
	require.Error(t, err)

	unbound := filter.Compare("name", filter.OpEq, value.String("x"))
	_, _, err = c.Compile(Input{Filter: unbound})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not bound")
}

func TestCompileCount_IgnoresPagingAndSelections(t *testing.T) {
	s := productsSchema(t)
	c := NewCompiler(s)

	sql, args, err := c.CompileCount(Input{
		Filter:     mustParse(t, s, `active == true`),
		Selections: []criteria.Selection{{Path: "name"}},
		Orders:     []criteria.SortOrder{{Path: "name", Direction: criteria.Ascending}},
		Page:       criteria.Page{Skip: 10, Top: 5},
	})
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM products WHERE (active IS ?)", sql)
	assert.Equal(t, []any{true}, args)
}

package criteria

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

type order struct {
	Customer string    `json:"customer"`
	Total    float64   `json:"total"`
	Items    int       `json:"items"`
	Placed   time.Time `json:"placed"`
	Shipped  bool      `json:"shipped"`
}

func orderSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.FromStruct("orders", reflect.TypeOf(order{}))
	require.NoError(t, err)
	return s
}

func TestFilterBuilder_Compile(t *testing.T) {
	s := orderSchema(t)

	b := NewFilterBuilder().
		Where("total", OpGt, value.Float(100)).
		OrWhere("items", OpGe, value.Int(10)).
		Where("shipped", OpEq, value.Bool(false))

	e, err := b.Compile(s)
	require.NoError(t, err)
	assert.Equal(t, `(((total > 100) || (items >= 10)) && (shipped == false))`, filter.Sprint(e))
}

func TestFilterBuilder_StringOperators(t *testing.T) {
	s := orderSchema(t)

	e, err := NewFilterBuilder().
		Where("customer", OpStartsWith, value.String("A")).
		Compile(s)
	require.NoError(t, err)
	assert.Equal(t, `startswith(customer, "A")`, filter.Sprint(e))

	_, err = NewFilterBuilder().
		Where("total", OpContains, value.String("1")).
		Compile(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires a string field")
}

func TestFilterBuilder_TimeCoercion(t *testing.T) {
	s := orderSchema(t)

	// A term deserialized from JSON holds the time as a string value;
	// Compile coerces it against the schema kind.
	e, err := NewFilterBuilder().
		Where("placed", OpGe, value.String("2024-01-01T00:00:00Z")).
		Compile(s)
	require.NoError(t, err)
	assert.Equal(t, `(placed >= "2024-01-01T00:00:00Z")`, filter.Sprint(e))
}

func TestFilterBuilder_Empty(t *testing.T) {
	e, err := NewFilterBuilder().Compile(orderSchema(t))
	require.NoError(t, err)
	assert.Nil(t, e)
}

func TestFilterBuilder_Mutation(t *testing.T) {
	b := NewFilterBuilder().
		Where("a", OpEq, value.Int(1)).
		Where("b", OpEq, value.Int(2))

	require.NoError(t, b.Insert(1, FilterTerm{Path: "c", Op: OpNe, Val: value.Int(3)}))
	paths := []string{}
	for _, term := range b.Terms() {
		paths = append(paths, term.Path)
	}
	assert.Equal(t, []string{"a", "c", "b"}, paths)

	assert.True(t, b.Remove("c"))
	assert.False(t, b.Remove("c"), "second removal finds nothing")
	assert.Equal(t, 2, b.Len())

	assert.Error(t, b.Insert(5, FilterTerm{Path: "x", Op: OpEq, Val: value.Int(0)}))

	b.Clear()
	assert.Zero(t, b.Len())
}

func TestFilterBuilder_UnknownField(t *testing.T) {
	_, err := NewFilterBuilder().
		Where("nope", OpEq, value.Int(1)).
		Compile(orderSchema(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown field "nope"`)
}

func TestSortBuilder_ByUpdatesInPlace(t *testing.T) {
	b := NewSortBuilder().
		By("customer", Ascending).
		By("total", Descending).
		By("customer", Descending) // toggle, must not move to the end

	orders := b.Orders()
	require.Len(t, orders, 2)
	assert.Equal(t, SortOrder{Path: "customer", Direction: Descending}, orders[0])
	assert.Equal(t, SortOrder{Path: "total", Direction: Descending}, orders[1])
}

func TestSortBuilder_Validate(t *testing.T) {
	s := orderSchema(t)

	b := NewSortBuilder().By("Customer", Ascending)
	require.NoError(t, b.Validate(s))
	assert.Equal(t, "customer", b.Orders()[0].Path, "validation canonicalizes casing")

	b = NewSortBuilder().By("ghost", Ascending)
	assert.Error(t, b.Validate(s))
}

func TestSelectBuilder_Resolve(t *testing.T) {
	s := orderSchema(t)

	sels, err := NewSelectBuilder().
		Pick("customer").
		PickAs("total", "amount").
		Resolve(s)
	require.NoError(t, err)
	require.Len(t, sels, 2)
	assert.Equal(t, "customer", sels[0].Name())
	assert.Equal(t, "amount", sels[1].Name())

	// Empty builder expands to the whole schema.
	all, err := NewSelectBuilder().Resolve(s)
	require.NoError(t, err)
	assert.Len(t, all, len(s.Fields))
}

func TestSelectBuilder_DuplicateOutputName(t *testing.T) {
	s := orderSchema(t)

	_, err := NewSelectBuilder().
		Pick("customer").
		PickAs("total", "customer").
		Resolve(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate output name "customer"`)
}

func TestSearchCriteria_LikePattern(t *testing.T) {
	cases := map[string]string{
		"ada*":      "ada%",
		"?da":       "_da",
		"100%":      "100\\%",
		"a_b":       "a\\_b",
		"back\\end": "back\\\\end",
		"plain":     "plain",
	}
	for pattern, want := range cases {
		c := SearchCriteria{Pattern: pattern}
		assert.Equal(t, want, c.LikePattern(), "pattern %q", pattern)
	}
}

func TestSearchBuilder_Validate(t *testing.T) {
	s := orderSchema(t)

	b := NewSearchBuilder().MatchFold("customer", "ada*")
	require.NoError(t, b.Validate(s))

	b = NewSearchBuilder().Match("total", "1*")
	err := b.Validate(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search requires string")
}

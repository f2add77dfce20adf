package source

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querygrid/querygrid/internal/criteria"
	"github.com/querygrid/querygrid/internal/evalmem"
	"github.com/querygrid/querygrid/internal/schema"
	"github.com/querygrid/querygrid/internal/store"
	"github.com/querygrid/querygrid/internal/value"
)

type item struct {
	Name     string    `json:"name"`
	Qty      int       `json:"qty"`
	Price    float64   `json:"price"`
	Active   bool      `json:"active"`
	AddedAt  time.Time `json:"added_at"`
	Discount *float64  `json:"discount"`
}

func itemSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.FromStruct("items", reflect.TypeOf(item{}))
	require.NoError(t, err)
	return s
}

func fixtureItems() []item {
	ten := 10.0
	day := func(d int) time.Time {
		return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
	}
	return []item{
		{Name: "desk", Qty: 3, Price: 249.5, Active: true, AddedAt: day(1), Discount: &ten},
		{Name: "chair", Qty: 8, Price: 120, Active: true, AddedAt: day(2)},
		{Name: "lamp", Qty: 0, Price: 35, Active: false, AddedAt: day(3)},
		{Name: "drawer", Qty: 5, Price: 180, Active: true, AddedAt: day(4).Add(500 * time.Millisecond)},
	}
}

func memSource(t *testing.T) *Mem {
	t.Helper()
	m, err := NewMemFromStructs(itemSchema(t), fixtureItems())
	require.NoError(t, err)
	return m
}

// sqliteSource loads the same fixture into a fresh dataset store, with
// ids fixed to the fixture order.
func sqliteSource(t *testing.T) *SQLite {
	t.Helper()
	s := itemSchema(t)
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	require.NoError(t, st.CreateDataset(ctx, s))

	rows, err := evalmem.FromStructs(s, fixtureItems())
	require.NoError(t, err)
	inserts := make([]map[string]value.Value, len(rows))
	for i, row := range rows {
		m := map[string]value.Value(row)
		m["id"] = value.String(string(rune('a' + i)))
		inserts[i] = m
	}
	require.NoError(t, st.InsertRows(ctx, s, inserts))

	return NewSQLite(s, st)
}

func rowNames(rows []evalmem.Row, key string) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = string(r.Get(key).(value.String))
	}
	return out
}

func TestMem_FullGridState(t *testing.T) {
	m := memSource(t)

	terms := criteria.NewFilterBuilder().Where("active", criteria.OpEq, value.Bool(true))
	res, err := m.Query(context.Background(), Query{
		Filter: `qty > 0`,
		Terms:  terms,
		Sort:   criteria.NewSortBuilder().By("qty", criteria.Descending),
		Select: criteria.NewSelectBuilder().PickAs("name", "label").Pick("qty"),
		Page:   criteria.Page{Skip: 1, Top: 2},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Total, "lamp fails both predicates")
	assert.Equal(t, []string{"drawer", "desk"}, rowNames(res.Rows, "label"))
	assert.Equal(t, value.Int(5), res.Rows[0].Get("qty"))
}

func TestMem_SearchAcrossColumns(t *testing.T) {
	m := memSource(t)

	res, err := m.Query(context.Background(), Query{
		Search: criteria.NewSearchBuilder().MatchFold("name", "d*"),
		Sort:   criteria.NewSortBuilder().By("name", criteria.Ascending),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"desk", "drawer"}, rowNames(res.Rows, "name"))
}

func TestMem_EmptyQueryReturnsAll(t *testing.T) {
	m := memSource(t)
	res, err := m.Query(context.Background(), Query{})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Total)
	assert.Len(t, res.Rows, 4)
}

func TestResolve_Errors(t *testing.T) {
	m := memSource(t)
	ctx := context.Background()

	_, err := m.Query(ctx, Query{Filter: `qty >`})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse filter")

	_, err = m.Query(ctx, Query{Filter: `nope > 1`})
	require.Error(t, err)

	_, err = m.Query(ctx, Query{Sort: criteria.NewSortBuilder().By("nope", criteria.Ascending)})
	require.Error(t, err)

	_, err = m.Query(ctx, Query{Page: criteria.Page{Skip: -1}})
	require.Error(t, err)
}

func TestSQLite_DecodesValueKinds(t *testing.T) {
	src := sqliteSource(t)

	res, err := src.Query(context.Background(), Query{Filter: `name == 'desk'`})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)

	row := res.Rows[0]
	assert.Equal(t, value.Bool(true), row.Get("active"))
	assert.Equal(t, value.Float(249.5), row.Get("price"))
	assert.Equal(t, value.Int(3), row.Get("qty"))
	assert.Equal(t, value.Float(10), row.Get("discount"))
	assert.Equal(t, value.String("a"), row.Get("id"))

	at, ok := row.Get("added_at").(value.Time)
	require.True(t, ok, "TEXT column decodes back to time")
	assert.True(t, time.Time(at).Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
}

func TestSQLite_MatchesMem(t *testing.T) {
	mem := memSource(t)
	sqlite := sqliteSource(t)
	ctx := context.Background()

	queries := []Query{
		{},
		{Filter: `qty > 0 && active == true`},
		{Filter: `discount == null`},
		{Filter: `!(qty > 2)`},
		{Filter: `contains(name, 'ra') || endswith(name, 'mp')`},
		{Filter: `added_at >= '2024-03-02T00:00:00Z'`},
		// Sub-second instants must compare consistently with whole
		// seconds in both backends.
		{Filter: `added_at > '2024-03-04T00:00:00Z'`},
		{Filter: `endswith(name, '')`},
		{Filter: `10 / qty == 2`},
		{Search: criteria.NewSearchBuilder().MatchFold("name", "*a*")},
		{Filter: `qty % 2 == 0`},
		{Filter: `min(qty, 4) == 4`},
	}
	sort := criteria.NewSortBuilder().By("name", criteria.Ascending)

	for _, q := range queries {
		q.Sort = sort
		memRes, err := mem.Query(ctx, q)
		require.NoError(t, err, "mem %q", q.Filter)
		sqlRes, err := sqlite.Query(ctx, q)
		require.NoError(t, err, "sqlite %q", q.Filter)

		assert.Equal(t, memRes.Total, sqlRes.Total, "total for %q", q.Filter)
		assert.Equal(t, rowNames(memRes.Rows, "name"), rowNames(sqlRes.Rows, "name"),
			"rows for %q", q.Filter)
	}
}

func TestSQLite_PagedWindow(t *testing.T) {
	src := sqliteSource(t)

	res, err := src.Query(context.Background(), Query{
		Sort: criteria.NewSortBuilder().By("qty", criteria.Descending),
		Page: criteria.Page{Skip: 1, Top: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Total, "total ignores the window")
	assert.Equal(t, []string{"drawer", "desk"}, rowNames(res.Rows, "name"))
}

func TestSQLite_SelectionAliases(t *testing.T) {
	src := sqliteSource(t)

	res, err := src.Query(context.Background(), Query{
		Filter: `name == 'chair'`,
		Select: criteria.NewSelectBuilder().PickAs("name", "label").Pick("price"),
	})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, value.String("chair"), res.Rows[0].Get("label"))
	assert.Equal(t, value.Float(120), res.Rows[0].Get("price"))
	assert.True(t, value.IsNull(res.Rows[0].Get("name")), "unselected path is absent")
}

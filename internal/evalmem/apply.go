package evalmem

import (
	"github.com/querygrid/querygrid/internal/criteria"
	"github.com/querygrid/querygrid/internal/filter"
)

// Result is one applied query: the window of matching rows after
// projection, and the total match count before paging.
type Result struct {
	Rows  []Row
	Total int
}

// Apply runs the full pipeline over rows: filter, search, sort, page,
// project. pred may be nil (no filter). The input slice is not
// modified; matching rows are copied before sorting.
func Apply(
	rows []Row,
	pred filter.Expr,
	search []criteria.SearchCriteria,
	orders []criteria.SortOrder,
	selections []criteria.Selection,
	page criteria.Page,
) (*Result, error) {
	var matcher func(Row) (bool, error)
	if pred != nil {
		matcher = Predicate(pred)
	}

	matched := make([]Row, 0, len(rows))
	for _, row := range rows {
		if matcher != nil {
			ok, err := matcher(row)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		if !MatchAny(row, search) {
			continue
		}
		matched = append(matched, row)
	}

	if err := Sort(matched, orders); err != nil {
		return nil, err
	}

	total := len(matched)
	windowed := window(matched, page)

	out := make([]Row, len(windowed))
	for i, row := range windowed {
		out[i] = project(row, selections)
	}
	return &Result{Rows: out, Total: total}, nil
}

func window(rows []Row, page criteria.Page) []Row {
	if page.Skip >= len(rows) {
		return nil
	}
	rows = rows[page.Skip:]
	if page.Top > 0 && page.Top < len(rows) {
		rows = rows[:page.Top]
	}
	return rows
}

// project maps a row through the selection list, renaming fields to
// their output names. An empty selection list passes the row through.
func project(row Row, selections []criteria.Selection) Row {
	if len(selections) == 0 {
		return row
	}
	out := make(Row, len(selections))
	for _, sel := range selections {
		out[sel.Name()] = row.Get(sel.Path)
	}
	return out
}

package evalmem

import (
	"fmt"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/querygrid/querygrid/internal/criteria"
	"github.com/querygrid/querygrid/internal/value"
)

// Sort orders rows by the given keys, stably. String keys use Unicode
// collation (root language) so "a" sorts before "B" the way a grid
// user expects, not by byte value. Null sorts before everything, which
// matches SQLite's NULL ordering.
//
// Stability is the deterministic-output rule here: rows equal under
// every key keep their input order, and callers append a row-id key
// when they need total order across processes.
func Sort(rows []Row, orders []criteria.SortOrder) error {
	if len(orders) == 0 {
		return nil
	}
	c := collate.New(language.Und)

	var sortErr error
	sort.SliceStable(rows, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		for _, o := range orders {
			cmp, err := compareKey(c, rows[i].Get(o.Path), rows[j].Get(o.Path))
			if err != nil {
				sortErr = fmt.Errorf("sort by %s: %w", o.Path, err)
				return false
			}
			if cmp == 0 {
				continue
			}
			if o.Direction == criteria.Descending {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
	return sortErr
}

func compareKey(c *collate.Collator, a, b value.Value) (int, error) {
	aNull, bNull := value.IsNull(a), value.IsNull(b)
	switch {
	case aNull && bNull:
		return 0, nil
	case aNull:
		return -1, nil
	case bNull:
		return 1, nil
	}

	if as, ok := a.(value.String); ok {
		if bs, ok := b.(value.String); ok {
			return c.CompareString(string(as), string(bs)), nil
		}
	}
	return value.Compare(a, b)
}

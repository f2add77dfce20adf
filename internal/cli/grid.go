package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/querygrid/querygrid/internal/criteria"
	"github.com/querygrid/querygrid/internal/source"
)

// gridFlags collects the grid-state flags shared by the compile and
// query commands.
type gridFlags struct {
	filter  string
	sorts   []string // path or path:asc|desc
	search  []string // path=pattern, case-insensitive
	matches []string // path=pattern, case-sensitive
	selects []string // path or path:alias
	skip    int
	top     int
}

func (g *gridFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&g.filter, "filter", "f", "", "filter expression")
	f.StringArrayVar(&g.sorts, "sort", nil, "sort key: path or path:desc (repeatable)")
	f.StringArrayVar(&g.search, "search", nil, "case-insensitive search: path=pattern with * and ? wildcards (repeatable)")
	f.StringArrayVar(&g.matches, "match", nil, "case-sensitive search: path=pattern (repeatable)")
	f.StringArrayVar(&g.selects, "select", nil, "projected column: path or path:alias (repeatable)")
	f.IntVar(&g.skip, "skip", 0, "rows to skip")
	f.IntVar(&g.top, "top", 0, "maximum rows to return (0 = no limit)")
}

// build assembles a source.Query from the flags. Criteria validation
// against the schema happens later, inside the query resolution.
func (g *gridFlags) build() (source.Query, error) {
	q := source.Query{
		Filter: g.filter,
		Page:   criteria.Page{Skip: g.skip, Top: g.top},
	}

	if len(g.sorts) > 0 {
		sort := criteria.NewSortBuilder()
		for _, spec := range g.sorts {
			path, arg, has := strings.Cut(spec, ":")
			dir := criteria.Ascending
			if has {
				d, err := criteria.ParseDirection(arg)
				if err != nil {
					return source.Query{}, fmt.Errorf("sort %q: %w", spec, err)
				}
				dir = d
			}
			sort.By(path, dir)
		}
		q.Sort = sort
	}

	if len(g.search) > 0 || len(g.matches) > 0 {
		search := criteria.NewSearchBuilder()
		for _, spec := range g.search {
			path, pattern, err := cutSearch(spec)
			if err != nil {
				return source.Query{}, err
			}
			search.MatchFold(path, pattern)
		}
		for _, spec := range g.matches {
			path, pattern, err := cutSearch(spec)
			if err != nil {
				return source.Query{}, err
			}
			search.Match(path, pattern)
		}
		q.Search = search
	}

	if len(g.selects) > 0 {
		sel := criteria.NewSelectBuilder()
		for _, spec := range g.selects {
			path, alias, has := strings.Cut(spec, ":")
			if has {
				sel.PickAs(path, alias)
			} else {
				sel.Pick(path)
			}
		}
		q.Select = sel
	}

	return q, nil
}

func cutSearch(spec string) (path, pattern string, err error) {
	path, pattern, ok := strings.Cut(spec, "=")
	if !ok || path == "" {
		return "", "", fmt.Errorf("search %q: want path=pattern", spec)
	}
	return path, pattern, nil
}

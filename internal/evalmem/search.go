package evalmem

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/querygrid/querygrid/internal/criteria"
	"github.com/querygrid/querygrid/internal/value"
)

// MatchAny reports whether any search criterion matches the row.
// Criteria OR together; an empty list matches everything. Null fields
// never match.
func MatchAny(row Row, crits []criteria.SearchCriteria) bool {
	if len(crits) == 0 {
		return true
	}
	for _, c := range crits {
		v := row.Get(c.Path)
		s, ok := v.(value.String)
		if !ok {
			continue
		}
		if matchPattern(string(s), c.Pattern, c.CaseInsensitive) {
			return true
		}
	}
	return false
}

// matchPattern matches text against a grid wildcard pattern: `*` is
// any run of characters, `?` exactly one. Both sides are NFC
// normalized before matching so composed and decomposed input compare
// equal; case folding is plain lowercasing, mirroring what lower()
// does on the SQL side.
func matchPattern(text, pattern string, fold bool) bool {
	text = norm.NFC.String(text)
	pattern = norm.NFC.String(pattern)
	if fold {
		text = strings.ToLower(text)
		pattern = strings.ToLower(pattern)
	}
	return matchRunes([]rune(text), []rune(pattern))
}

// matchRunes is an iterative wildcard matcher with single-star
// backtracking.
func matchRunes(text, pattern []rune) bool {
	ti, pi := 0, 0
	star, starTi := -1, 0

	for ti < len(text) {
		switch {
		case pi < len(pattern) && (pattern[pi] == '?' || pattern[pi] == text[ti]):
			ti++
			pi++
		case pi < len(pattern) && pattern[pi] == '*':
			star, starTi = pi, ti
			pi++
		case star >= 0:
			// Backtrack: let the last * absorb one more rune.
			starTi++
			ti = starTi
			pi = star + 1
		default:
			return false
		}
	}
	for pi < len(pattern) && pattern[pi] == '*' {
		pi++
	}
	return pi == len(pattern)
}

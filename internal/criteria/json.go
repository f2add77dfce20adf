package criteria

import (
	"encoding/json"
	"fmt"

	"github.com/querygrid/querygrid/internal/value"
)

// The JSON wire format carries descriptor metadata only - paths,
// operator names, directions, patterns. Compiled expression trees are
// rebuilt from descriptors on the receiving side, never serialized.

type filterTermJSON struct {
	Path  string          `json:"path"`
	Op    string          `json:"op"`
	Value json.RawMessage `json:"value"`
	Join  string          `json:"join,omitempty"`
}

// MarshalJSON implements json.Marshaler for FilterTerm.
func (t FilterTerm) MarshalJSON() ([]byte, error) {
	if t.Val == nil {
		return nil, fmt.Errorf("filter term %q has no value", t.Path)
	}
	val, err := value.Marshal(t.Val)
	if err != nil {
		return nil, fmt.Errorf("filter term %q: %w", t.Path, err)
	}
	out := filterTermJSON{Path: t.Path, Op: t.Op.String(), Value: val}
	if t.Join == ConjOr {
		out.Join = "or"
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler for FilterTerm.
func (t *FilterTerm) UnmarshalJSON(data []byte) error {
	var raw filterTermJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Path == "" {
		return fmt.Errorf("filter term: path is required")
	}
	op, err := ParseOperator(raw.Op)
	if err != nil {
		return err
	}
	if len(raw.Value) == 0 {
		return fmt.Errorf("filter term %q: value is required", raw.Path)
	}
	val, err := value.Unmarshal(raw.Value)
	if err != nil {
		return fmt.Errorf("filter term %q: %w", raw.Path, err)
	}
	join := ConjAnd
	if raw.Join != "" {
		if join, err = ParseConjunction(raw.Join); err != nil {
			return err
		}
	}
	*t = FilterTerm{Path: raw.Path, Op: op, Val: val, Join: join}
	return nil
}

// MarshalJSON implements json.Marshaler for FilterBuilder.
// An empty builder marshals to [].
func (b *FilterBuilder) MarshalJSON() ([]byte, error) {
	if len(b.terms) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(b.terms)
}

// UnmarshalJSON implements json.Unmarshaler for FilterBuilder.
func (b *FilterBuilder) UnmarshalJSON(data []byte) error {
	var terms []FilterTerm
	if err := json.Unmarshal(data, &terms); err != nil {
		return err
	}
	b.terms = terms
	return nil
}

type sortOrderJSON struct {
	Path string `json:"path"`
	Dir  string `json:"dir"`
}

// MarshalJSON implements json.Marshaler for SortOrder.
func (o SortOrder) MarshalJSON() ([]byte, error) {
	return json.Marshal(sortOrderJSON{Path: o.Path, Dir: o.Direction.String()})
}

// UnmarshalJSON implements json.Unmarshaler for SortOrder.
func (o *SortOrder) UnmarshalJSON(data []byte) error {
	var raw sortOrderJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Path == "" {
		return fmt.Errorf("sort order: path is required")
	}
	dir, err := ParseDirection(raw.Dir)
	if err != nil {
		return err
	}
	*o = SortOrder{Path: raw.Path, Direction: dir}
	return nil
}

// MarshalJSON implements json.Marshaler for SortBuilder.
func (b *SortBuilder) MarshalJSON() ([]byte, error) {
	if len(b.orders) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(b.orders)
}

// UnmarshalJSON implements json.Unmarshaler for SortBuilder.
func (b *SortBuilder) UnmarshalJSON(data []byte) error {
	var orders []SortOrder
	if err := json.Unmarshal(data, &orders); err != nil {
		return err
	}
	b.orders = orders
	return nil
}

type selectionJSON struct {
	Path  string `json:"path"`
	Alias string `json:"as,omitempty"`
}

// MarshalJSON implements json.Marshaler for Selection.
func (s Selection) MarshalJSON() ([]byte, error) {
	return json.Marshal(selectionJSON{Path: s.Path, Alias: s.Alias})
}

// UnmarshalJSON implements json.Unmarshaler for Selection.
func (s *Selection) UnmarshalJSON(data []byte) error {
	var raw selectionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Path == "" {
		return fmt.Errorf("selection: path is required")
	}
	*s = Selection{Path: raw.Path, Alias: raw.Alias}
	return nil
}

// MarshalJSON implements json.Marshaler for SelectBuilder.
func (b *SelectBuilder) MarshalJSON() ([]byte, error) {
	if len(b.selections) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(b.selections)
}

// UnmarshalJSON implements json.Unmarshaler for SelectBuilder.
func (b *SelectBuilder) UnmarshalJSON(data []byte) error {
	var selections []Selection
	if err := json.Unmarshal(data, &selections); err != nil {
		return err
	}
	b.selections = selections
	return nil
}

type searchCriteriaJSON struct {
	Path    string `json:"path"`
	Pattern string `json:"pattern"`
	Fold    bool   `json:"fold,omitempty"`
}

// MarshalJSON implements json.Marshaler for SearchCriteria.
func (c SearchCriteria) MarshalJSON() ([]byte, error) {
	return json.Marshal(searchCriteriaJSON{Path: c.Path, Pattern: c.Pattern, Fold: c.CaseInsensitive})
}

// UnmarshalJSON implements json.Unmarshaler for SearchCriteria.
func (c *SearchCriteria) UnmarshalJSON(data []byte) error {
	var raw searchCriteriaJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Path == "" {
		return fmt.Errorf("search criterion: path is required")
	}
	*c = SearchCriteria{Path: raw.Path, Pattern: raw.Pattern, CaseInsensitive: raw.Fold}
	return nil
}

// MarshalJSON implements json.Marshaler for SearchBuilder.
func (b *SearchBuilder) MarshalJSON() ([]byte, error) {
	if len(b.criteria) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(b.criteria)
}

// UnmarshalJSON implements json.Unmarshaler for SearchBuilder.
func (b *SearchBuilder) UnmarshalJSON(data []byte) error {
	var criteria []SearchCriteria
	if err := json.Unmarshal(data, &criteria); err != nil {
		return err
	}
	b.criteria = criteria
	return nil
}

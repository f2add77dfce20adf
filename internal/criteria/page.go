package criteria

import "fmt"

// Page bounds one result window of a grid query. Top == 0 means no
// limit; Skip past the end of the result yields an empty window.
type Page struct {
	Skip int `json:"skip,omitempty"`
	Top  int `json:"top,omitempty"`
}

// Validate rejects negative bounds.
func (p Page) Validate() error {
	if p.Skip < 0 {
		return fmt.Errorf("page skip must not be negative, got %d", p.Skip)
	}
	if p.Top < 0 {
		return fmt.Errorf("page top must not be negative, got %d", p.Top)
	}
	return nil
}

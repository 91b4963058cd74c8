package domain

import "slices"

// CategoryIndex is the set of distinct categories present in a quote list.
// It is derived state: always rebuilt in full from the quotes, never updated
// incrementally.
type CategoryIndex struct {
	set map[string]struct{}
}

// NewCategoryIndex builds an index over quotes.
func NewCategoryIndex(quotes []Quote) *CategoryIndex {
	idx := &CategoryIndex{}
	idx.Rebuild(quotes)

	return idx
}

// Rebuild replaces the index contents with the categories found in quotes.
func (c *CategoryIndex) Rebuild(quotes []Quote) {
	set := make(map[string]struct{}, len(quotes))
	for _, q := range quotes {
		set[q.Category] = struct{}{}
	}

	c.set = set
}

// Categories returns the distinct categories in ascending order.
func (c *CategoryIndex) Categories() []string {
	out := make([]string, 0, len(c.set))
	for category := range c.set {
		out = append(out, category)
	}

	slices.Sort(out)

	return out
}

// Contains reports whether label is a known category.
func (c *CategoryIndex) Contains(label string) bool {
	_, ok := c.set[label]
	return ok
}

// IsSelectable reports whether label can be used as a filter: a known category
// or the CategoryAll sentinel.
func (c *CategoryIndex) IsSelectable(label string) bool {
	return label == CategoryAll || c.Contains(label)
}

// Len returns the number of distinct categories.
func (c *CategoryIndex) Len() int {
	return len(c.set)
}

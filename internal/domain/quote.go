package domain

import (
	"fmt"
	"strings"
)

// CategoryAll is the filter label that selects every quote.
const CategoryAll = "all"

// Quote is a single user-entered or synchronized quotation.
// Quotes created through the service or imported from a file carry an ID;
// the built-in defaults and legacy records may not.
type Quote struct {
	// ID is the optional identifier. Nil means the quote has never been assigned one.
	ID *int64 `json:"id,omitempty"`

	// Text is the quotation itself.
	Text string `json:"text"`

	// Category is the free-form label used for filtering.
	Category string `json:"category"`
}

// NewQuote trims and validates text and category and returns a quote without an ID.
func NewQuote(text, category string) (Quote, error) {
	q := Quote{
		Text:     strings.TrimSpace(text),
		Category: strings.TrimSpace(category),
	}

	if err := q.Validate(); err != nil {
		return Quote{}, err
	}

	return q, nil
}

// Validate reports whether the quote has a non-empty text and category.
func (q Quote) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return NewValidationError("text", "must not be empty")
	}

	if strings.TrimSpace(q.Category) == "" {
		return NewValidationError("category", "must not be empty")
	}

	return nil
}

// HasID reports whether the quote carries an identifier.
func (q Quote) HasID() bool {
	return q.ID != nil
}

// WithID returns a copy of the quote carrying id.
func (q Quote) WithID(id int64) Quote {
	q.ID = &id
	return q
}

// Equal reports whether two quotes are structurally identical, including the
// presence and value of the ID.
func (q Quote) Equal(other Quote) bool {
	if q.Text != other.Text || q.Category != other.Category {
		return false
	}

	switch {
	case q.ID == nil && other.ID == nil:
		return true
	case q.ID == nil || other.ID == nil:
		return false
	default:
		return *q.ID == *other.ID
	}
}

// Format renders the quote the way it is shown to the user and remembered as
// the last viewed quote.
func (q Quote) Format() string {
	return fmt.Sprintf("\"%s\" — [%s]", q.Text, q.Category)
}

// MatchesCategory reports whether the quote passes the given filter label.
func (q Quote) MatchesCategory(label string) bool {
	return label == "" || label == CategoryAll || q.Category == label
}

// FilterByCategory returns the quotes whose category equals label.
// The CategoryAll sentinel and the empty label return a copy of every quote.
func FilterByCategory(quotes []Quote, label string) []Quote {
	out := make([]Quote, 0, len(quotes))
	for _, q := range quotes {
		if q.MatchesCategory(label) {
			out = append(out, q)
		}
	}

	return out
}

// DefaultQuotes returns the built-in quotes used to seed an empty repository.
func DefaultQuotes() []Quote {
	return []Quote{
		{Text: "The only limit to our realization of tomorrow is our doubts of today.", Category: "Motivation"},
		{Text: "Life is what happens when you're busy making other plans.", Category: "Life"},
		{Text: "The purpose of our lives is to be happy.", Category: "Happiness"},
	}
}

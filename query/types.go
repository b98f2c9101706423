package query

import "claims/models"

// Filters is the declarative filter state of one request. Every predicate is
// optional; a zero value means no restriction, never match-nothing.
type Filters struct {
	// Inclusive year range; zero bounds are open.
	YearFrom int
	YearTo   int

	Companies       []string
	Channels        []string
	Platforms       []string
	Classifications []string

	// Subcategory flag names, each required to be set on matching posts.
	Subcategories []string

	// Case-insensitive substring matched against title or body.
	Keyword string

	// Drop URL-insensitive duplicate posts before filtering.
	UniqueOnly bool
}

// FilterStrategy decides whether a single post stays in the filtered view.
type FilterStrategy interface {
	Matches(post *models.Post) bool
}

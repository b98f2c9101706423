package feed

import (
	"strings"

	"claims/models"
	"claims/query"

	"github.com/samber/lo"
)

// YearRangeFilter keeps posts published within an inclusive year range.
// Posts without a parsable date (Year 0) only pass when no bound is set.
type YearRangeFilter struct {
	From int
	To   int
}

func (f *YearRangeFilter) Matches(post *models.Post) bool {
	if f.From != 0 && post.Year < f.From {
		return false
	}
	if f.To != 0 && post.Year > f.To {
		return false
	}
	return true
}

// MembershipFilter keeps posts whose selected field value is in a set. An
// empty set matches everything.
type MembershipFilter struct {
	Values []string
	Field  func(post *models.Post) string
}

func (f *MembershipFilter) Matches(post *models.Post) bool {
	if len(f.Values) == 0 {
		return true
	}
	return lo.Contains(f.Values, f.Field(post))
}

// SubcategoryFilter requires every named classification flag to be set.
type SubcategoryFilter struct {
	Names []string
}

func (f *SubcategoryFilter) Matches(post *models.Post) bool {
	return lo.EveryBy(f.Names, func(name string) bool {
		return post.Flag(name)
	})
}

// KeywordFilter matches a case-insensitive substring against the title or
// the body. Keyword must already be lowercased; strategies does this once at
// construction rather than per post. Exports without a searchable field
// leave both empty; those posts simply never match, they do not error.
type KeywordFilter struct {
	Keyword string
}

func (f *KeywordFilter) Matches(post *models.Post) bool {
	if f.Keyword == "" {
		return true
	}
	return strings.Contains(strings.ToLower(post.Title), f.Keyword) ||
		strings.Contains(strings.ToLower(post.Text), f.Keyword)
}

var _ query.FilterStrategy = (*YearRangeFilter)(nil)
var _ query.FilterStrategy = (*MembershipFilter)(nil)
var _ query.FilterStrategy = (*SubcategoryFilter)(nil)
var _ query.FilterStrategy = (*KeywordFilter)(nil)

// strategies assembles the active filter strategies for a request; inactive
// predicates are not instantiated at all.
func strategies(filters query.Filters) []query.FilterStrategy {
	var active []query.FilterStrategy

	if filters.YearFrom != 0 || filters.YearTo != 0 {
		active = append(active, &YearRangeFilter{From: filters.YearFrom, To: filters.YearTo})
	}
	if len(filters.Companies) > 0 {
		active = append(active, &MembershipFilter{
			Values: filters.Companies,
			Field:  func(post *models.Post) string { return post.Company },
		})
	}
	if len(filters.Channels) > 0 {
		active = append(active, &MembershipFilter{
			Values: filters.Channels,
			Field:  func(post *models.Post) string { return post.ChannelName },
		})
	}
	if len(filters.Platforms) > 0 {
		active = append(active, &MembershipFilter{
			Values: filters.Platforms,
			Field:  func(post *models.Post) string { return post.PlatformName },
		})
	}
	if len(filters.Classifications) > 0 {
		active = append(active, &MembershipFilter{
			Values: filters.Classifications,
			Field:  func(post *models.Post) string { return post.GreenBrown },
		})
	}
	if len(filters.Subcategories) > 0 {
		active = append(active, &SubcategoryFilter{Names: filters.Subcategories})
	}
	if filters.Keyword != "" {
		active = append(active, &KeywordFilter{Keyword: strings.ToLower(filters.Keyword)})
	}

	return active
}

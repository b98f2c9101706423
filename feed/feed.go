// Package feed produces filtered, paginated views of the canonical post
// table for the post listing and for the analytics aggregations. Every
// operation returns a new slice; the canonical table is never mutated.
package feed

import (
	"sort"

	"claims/models"
	"claims/query"

	"github.com/samber/lo"
)

// Apply produces the filtered view of the post table for one request. The
// uniqueness pass runs first so that filters see the deduplicated table,
// matching the presentation's post counts.
func Apply(posts []models.Post, filters query.Filters) []models.Post {
	view := posts
	if filters.UniqueOnly {
		view = lo.Filter(view, func(post models.Post, _ int) bool {
			return !post.Duplicate
		})
	}

	active := strategies(filters)
	if len(active) == 0 {
		return view
	}

	return lo.Filter(view, func(post models.Post, _ int) bool {
		for _, strategy := range active {
			if !strategy.Matches(&post) {
				return false
			}
		}
		return true
	})
}

// Page slices one page out of the filtered view. Out-of-range pages clamp to
// the nearest valid page instead of erroring.
func Page(filtered []models.Post, page, pageSize int) models.FeedResponse {
	if pageSize < 1 {
		pageSize = 10
	}
	lastPage := 0
	if len(filtered) > 0 {
		lastPage = (len(filtered) - 1) / pageSize
	}
	if page < 0 {
		page = 0
	}
	if page > lastPage {
		page = lastPage
	}

	start := page * pageSize
	end := start + pageSize
	if start > len(filtered) {
		start = len(filtered)
	}
	if end > len(filtered) {
		end = len(filtered)
	}

	return models.FeedResponse{
		Posts:    filtered[start:end],
		Total:    len(filtered),
		Page:     page,
		PageSize: pageSize,
		HasMore:  end < len(filtered),
	}
}

// Compare splits the filtered view into two classification sides, each
// paginated independently with the same page index.
func Compare(filtered []models.Post, left, right string, page, pageSize int) models.ComparisonResponse {
	side := func(classification string) models.FeedResponse {
		subset := lo.Filter(filtered, func(post models.Post, _ int) bool {
			return post.GreenBrown == classification
		})
		return Page(subset, page, pageSize)
	}

	return models.ComparisonResponse{
		Left:  side(left),
		Right: side(right),
	}
}

// Options collects every selectable filter value from the canonical table
// for sidebar population.
func Options(posts []models.Post) models.FilterOptions {
	options := models.FilterOptions{
		ChannelsByCompany: map[string][]string{},
		Classifications:   []string{"green", "brown", "green_brown", "misc"},
	}

	companies := map[string]bool{}
	platforms := map[string]bool{}
	channelSets := map[string]map[string]bool{}

	for _, post := range posts {
		if post.PlatformName != "" {
			platforms[post.PlatformName] = true
		}
		if post.Year != 0 {
			if options.MinYear == 0 || post.Year < options.MinYear {
				options.MinYear = post.Year
			}
			if post.Year > options.MaxYear {
				options.MaxYear = post.Year
			}
		}
		if post.Company == "" {
			continue
		}
		companies[post.Company] = true
		if channelSets[post.Company] == nil {
			channelSets[post.Company] = map[string]bool{}
		}
		if post.ChannelName != "" {
			channelSets[post.Company][post.ChannelName] = true
		}
	}

	options.Companies = sortedKeys(companies)
	options.Platforms = sortedKeys(platforms)
	for company, channels := range channelSets {
		options.ChannelsByCompany[company] = sortedKeys(channels)
	}

	return options
}

func sortedKeys(set map[string]bool) []string {
	keys := lo.Keys(set)
	sort.Strings(keys)
	return keys
}

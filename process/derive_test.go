package process_test

import (
	"testing"
	"time"

	"claims/config"
	"claims/ingest"
	"claims/process"
	"claims/refdata"

	"github.com/stretchr/testify/assert"
)

func TestDecodeLabels(t *testing.T) {
	tests := []struct {
		name     string
		cell     any
		arity    int
		expected []bool
		ok       bool
	}{
		{
			name:     "comma separated zeros and ones",
			cell:     "1,0,0,0,1,0,0,0,0",
			arity:    9,
			expected: []bool{true, false, false, false, true, false, false, false, false},
			ok:       true,
		},
		{
			name:     "list literal",
			cell:     "[0, 0, 0, 0, 1, 1, 0, 0, 0]",
			arity:    9,
			expected: []bool{false, false, false, false, true, true, false, false, false},
			ok:       true,
		},
		{
			name:     "actual JSON list of numbers",
			cell:     []any{float64(1), float64(0), float64(0)},
			arity:    3,
			expected: []bool{true, false, false},
			ok:       true,
		},
		{
			name:  "wrong arity",
			cell:  "1,0,1",
			arity: 9,
			ok:    false,
		},
		{
			name:  "non binary token",
			cell:  "1,0,2,0,0,0,0,0,0",
			arity: 9,
			ok:    false,
		},
		{
			name:  "unterminated list literal",
			cell:  "[1,0,0,0,0,0,0,0,0",
			arity: 9,
			ok:    false,
		},
		{
			name:  "empty string",
			cell:  "",
			arity: 9,
			ok:    false,
		},
		{
			name:  "nil cell",
			cell:  nil,
			arity: 9,
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags, ok := process.DecodeLabels(tt.cell, tt.arity)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, flags)
			}
		})
	}
}

func TestGreenBrownLabel(t *testing.T) {
	tests := []struct {
		name     string
		green    bool
		fossil   bool
		expected string
	}{
		{name: "green only", green: true, expected: "green"},
		{name: "fossil only", fossil: true, expected: "brown"},
		{name: "both", green: true, fossil: true, expected: "green_brown"},
		{name: "neither", expected: "misc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, process.GreenBrownLabel(tt.green, tt.fossil))
		})
	}
}

func TestStripURLs(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{
			name:     "http link",
			text:     "Check out our new solar farm https://example.com/solar",
			expected: "Check out our new solar farm [URL]",
		},
		{
			name:     "www link without scheme",
			text:     "More at www.example.com today",
			expected: "More at [URL] today",
		},
		{
			name:     "no links",
			text:     "No links here",
			expected: "No links here",
		},
		{
			name:     "multiple links",
			text:     "http://a.example and http://b.example",
			expected: "[URL] and [URL]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, process.StripURLs(tt.text))
		})
	}
}

func TestPostsDerivesFlagsAndLabels(t *testing.T) {
	raw := []ingest.RawPost{
		{
			ID:           "1",
			PublishedAt:  "2020-06-01T12:00:00Z",
			ChannelName:  "acme_energy",
			PlatformName: "Facebook",
			Text:         "Oil and solar",
			Labels:       "1,0,0,0,1,0,0,0,0",
			Likes:        float64(10),
			Comments:     float64(5),
		},
		{
			ID:           "2",
			PublishedAt:  "2020-06-02T12:00:00Z",
			ChannelName:  "acme_energy",
			PlatformName: "InstagramDirect",
			Text:         "Wind power",
			Labels:       "0,0,0,0,1,1,0,0,0",
			Likes:        "n/a",
			Comments:     float64(-3),
		},
		{
			ID:           "3",
			PublishedAt:  "2020-06-03T12:00:00Z",
			ChannelName:  "acme_energy",
			PlatformName: "Facebook",
			Text:         "Nothing classified",
			Labels:       "not a label cell",
		},
	}
	mapping := []refdata.ChannelRow{{Channel: "acme_energy", Company: "Acme"}}

	posts := process.Posts(raw, config.TomlTaxonomy{
		Categories:    config.DefaultCategories,
		GreenSubcats:  config.DefaultGreenSubcats,
		FossilSubcats: config.DefaultFossilSubcats,
	}, mapping)

	assert.Len(t, posts, 3)

	// Sorted most recent first
	assert.Equal(t, "3", posts[0].ID)
	assert.Equal(t, "2", posts[1].ID)
	assert.Equal(t, "1", posts[2].ID)

	// Malformed labels default to all-zero flags, classified misc
	assert.True(t, posts[0].Misc)
	assert.Equal(t, "misc", posts[0].GreenBrown)

	// Green with a named subcategory is not other_green
	assert.Equal(t, "green", posts[1].GreenBrown)
	assert.True(t, posts[1].RenewableEnergy)
	assert.False(t, posts[1].OtherGreen)
	assert.Equal(t, "Instagram", posts[1].PlatformName)
	// Non-numeric likes and negative comments both coerce to zero
	assert.Equal(t, 0, posts[1].Engagement)

	// Umbrella flags without subcategories set the other flags
	assert.Equal(t, "green_brown", posts[2].GreenBrown)
	assert.True(t, posts[2].OtherGreen)
	assert.True(t, posts[2].OtherFossil)
	assert.Equal(t, 15, posts[2].Engagement)
	assert.Equal(t, 2020, posts[2].Year)

	// Company joined from the channel mapping
	for _, post := range posts {
		assert.Equal(t, "Acme", post.Company)
	}
}

func TestPostsDropsExactDuplicatesAndMarksNearDuplicates(t *testing.T) {
	raw := []ingest.RawPost{
		{
			ID:          "1",
			PublishedAt: "2021-01-03",
			Text:        "New solar farm https://example.com/a",
			Labels:      "0,0,0,0,1,1,0,0,0",
		},
		{
			ID:          "2",
			PublishedAt: "2021-01-02",
			Text:        "New solar farm https://example.com/b",
			Labels:      "0,0,0,0,1,1,0,0,0",
		},
		{
			ID:          "3",
			PublishedAt: "2021-01-01",
			Text:        "New solar farm https://example.com/a",
			Labels:      "0,0,0,0,1,1,0,0,0",
		},
	}

	posts := process.Posts(raw, config.TomlTaxonomy{
		Categories:    config.DefaultCategories,
		GreenSubcats:  config.DefaultGreenSubcats,
		FossilSubcats: config.DefaultFossilSubcats,
	}, nil)

	// Post 3 shares its exact text with post 1 and is dropped outright
	assert.Len(t, posts, 2)
	assert.Equal(t, "1", posts[0].ID)
	assert.Equal(t, "2", posts[1].ID)

	// Posts 1 and 2 differ only in the link; the later one in table order is
	// flagged as a duplicate for the unique view
	assert.False(t, posts[0].Duplicate)
	assert.True(t, posts[1].Duplicate)
}

func TestPostsSortsUndatedLast(t *testing.T) {
	raw := []ingest.RawPost{
		{ID: "undated", PublishedAt: "never", Text: "a", Labels: "0,0,0,0,0,0,0,0,0"},
		{ID: "old", PublishedAt: "2019-01-01", Text: "b", Labels: "0,0,0,0,0,0,0,0,0"},
		{ID: "new", PublishedAt: "2023-01-01", Text: "c", Labels: "0,0,0,0,0,0,0,0,0"},
	}

	posts := process.Posts(raw, config.TomlTaxonomy{Categories: config.DefaultCategories}, nil)

	assert.Equal(t, "new", posts[0].ID)
	assert.Equal(t, "old", posts[1].ID)
	assert.Equal(t, "undated", posts[2].ID)
	assert.True(t, posts[2].PublishedAt.IsZero())
	assert.Equal(t, 0, posts[2].Year)
}

func TestPostsRejectsImplausibleEpochMillis(t *testing.T) {
	raw := []ingest.RawPost{
		// A bare year is not an epoch timestamp and must not decode to 1970
		{ID: "1", PublishedAt: "2020", Text: "a", Labels: "0,0,0,0,0,0,0,0,0"},
		{ID: "2", PublishedAt: float64(2020), Text: "b", Labels: "0,0,0,0,0,0,0,0,0"},
	}

	posts := process.Posts(raw, config.TomlTaxonomy{Categories: config.DefaultCategories}, nil)

	for _, post := range posts {
		assert.True(t, post.PublishedAt.IsZero())
		assert.Equal(t, 0, post.Year)
	}
}

func TestPostsParsesEpochMillis(t *testing.T) {
	raw := []ingest.RawPost{
		{ID: "1", PublishedAt: float64(1589895230000), Text: "a", Labels: "0,0,0,0,0,0,0,0,0"},
		{ID: "2", PublishedAt: "1589895230000", Text: "b", Labels: "0,0,0,0,0,0,0,0,0"},
	}

	posts := process.Posts(raw, config.TomlTaxonomy{Categories: config.DefaultCategories}, nil)

	expected := time.UnixMilli(1589895230000).UTC()
	assert.Equal(t, expected, posts[0].PublishedAt)
	assert.Equal(t, expected, posts[1].PublishedAt)
	assert.Equal(t, 2020, posts[0].Year)
}

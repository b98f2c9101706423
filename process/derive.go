// Package process turns the normalized raw export into the canonical post
// table: it decodes the encoded classification cell into named flags,
// derives the composite labels, attaches companies, normalizes dates and
// platforms, computes engagement and deduplicates near-identical posts.
package process

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"claims/config"
	"claims/ingest"
	"claims/models"
	"claims/refdata"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

var urlPattern = regexp.MustCompile(`http\S+|www\S+`)

// Posts builds the canonical post table from the normalized export. The
// table is sorted by publish time descending and is treated as immutable by
// everything downstream.
func Posts(raw []ingest.RawPost, taxonomy config.TomlTaxonomy, channelMapping []refdata.ChannelRow) []models.Post {
	posts := make([]models.Post, 0, len(raw))
	badLabels := 0

	for _, r := range raw {
		post := models.Post{
			ID:           r.ID,
			ChannelName:  r.ChannelName,
			PlatformName: normalizePlatform(r.PlatformName),
			Title:        r.Title,
			Text:         r.Text,
			Engagement:   coerceCount(r.Likes) + coerceCount(r.Comments),
		}

		flags, ok := DecodeLabels(r.Labels, len(taxonomy.Categories))
		if !ok {
			// A malformed label cell costs that row its flags, never the
			// batch.
			badLabels++
			flags = make([]bool, len(taxonomy.Categories))
		}
		for i, name := range taxonomy.Categories {
			setFlag(&post, name, flags[i])
		}

		post.Misc = !lo.Contains(flags, true)
		post.OtherGreen = post.Green && !anyFlag(&post, taxonomy.GreenSubcats)
		post.OtherFossil = post.FossilFuel && !anyFlag(&post, taxonomy.FossilSubcats)
		post.GreenBrown = GreenBrownLabel(post.Green, post.FossilFuel)

		post.PublishedAt = parseTime(r.PublishedAt)
		if !post.PublishedAt.IsZero() {
			post.Year = post.PublishedAt.Year()
		}

		post.NormalizedText = StripURLs(post.Text)

		posts = append(posts, post)
	}

	JoinCompanies(posts, channelMapping)

	if badLabels > 0 {
		log.WithFields(log.Fields{
			"rows": badLabels,
		}).Warn("Defaulted rows with malformed label cells to all-zero flags")
	}

	posts = dropExactDuplicates(posts)

	// Most recent first; posts without a parsable date sort last.
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i].PublishedAt, posts[j].PublishedAt
		if a.IsZero() {
			return false
		}
		if b.IsZero() {
			return true
		}
		return a.After(b)
	})

	MarkDuplicates(posts)

	log.WithFields(log.Fields{
		"posts": len(posts),
	}).Info("Built canonical post table")

	return posts
}

// DecodeLabels decodes the encoded multi-label classification cell into
// positional booleans. Two encodings exist in the wild: a comma-separated
// string of 0/1 tokens and a literal list representation (or an actual JSON
// list). Returns ok=false on malformed cells or wrong arity.
func DecodeLabels(cell any, arity int) ([]bool, bool) {
	var tokens []string

	switch v := cell.(type) {
	case nil:
		return nil, false
	case []any:
		for _, item := range v {
			tokens = append(tokens, strings.TrimSpace(asToken(item)))
		}
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil, false
		}
		// A leading bracket marks the list-literal encoding.
		if strings.HasPrefix(s, "[") {
			if !strings.HasSuffix(s, "]") {
				return nil, false
			}
			s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
		}
		for _, tok := range strings.Split(s, ",") {
			tokens = append(tokens, strings.TrimSpace(tok))
		}
	default:
		return nil, false
	}

	if len(tokens) != arity {
		return nil, false
	}

	flags := make([]bool, arity)
	for i, tok := range tokens {
		switch tok {
		case "0":
			flags[i] = false
		case "1":
			flags[i] = true
		default:
			return nil, false
		}
	}
	return flags, true
}

// GreenBrownLabel is the final four-way label as a pure function of the two
// umbrella flags.
func GreenBrownLabel(green, fossil bool) string {
	switch {
	case green && fossil:
		return "green_brown"
	case green:
		return "green"
	case fossil:
		return "brown"
	default:
		return "misc"
	}
}

// StripURLs collapses URL-like substrings to a [URL] token so that posts
// differing only in links compare equal.
func StripURLs(text string) string {
	return urlPattern.ReplaceAllString(text, "[URL]")
}

// MarkDuplicates flags every post after the first sharing the same
// URL-stripped text, in table order. The unique view of the filter engine
// drops flagged posts, keeping the first occurrence.
func MarkDuplicates(posts []models.Post) {
	seen := make(map[string]bool, len(posts))
	for i := range posts {
		key := posts[i].NormalizedText
		posts[i].Duplicate = seen[key]
		seen[key] = true
	}
}

// dropExactDuplicates removes rows with byte-identical body text, keeping
// the first occurrence in input order.
func dropExactDuplicates(posts []models.Post) []models.Post {
	return lo.UniqBy(posts, func(p models.Post) string {
		return p.Text
	})
}

func anyFlag(post *models.Post, names []string) bool {
	return lo.SomeBy(names, func(name string) bool {
		return post.Flag(name)
	})
}

func setFlag(post *models.Post, name string, value bool) {
	switch name {
	case "fossil_fuel":
		post.FossilFuel = value
	case "primary_product":
		post.PrimaryProduct = value
	case "petrochemical_product":
		post.PetrochemicalProduct = value
	case "infrastructure_production":
		post.InfrastructureProduction = value
	case "green":
		post.Green = value
	case "renewable_energy":
		post.RenewableEnergy = value
	case "emissions_reduction":
		post.EmissionsReduction = value
	case "false_solutions":
		post.FalseSolutions = value
	case "recycling":
		post.Recycling = value
	}
}

// normalizePlatform collapses the one known historical platform synonym.
func normalizePlatform(platform string) string {
	if platform == "InstagramDirect" {
		return "Instagram"
	}
	return platform
}

// timeLayouts are the string timestamp formats seen across exports.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// minEpochMillis is the smallest numeric value read as epoch milliseconds.
// Small integers like a bare "2020" are not timestamps and must not decode
// to a moment shortly after 1970.
const minEpochMillis = 1e11

// parseTime normalizes the published_at cell, which is either an epoch
// milliseconds number or a string timestamp. Unparsable values yield the
// zero time; such rows sort last and are excluded from year aggregations.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case float64:
		if t < minEpochMillis {
			return time.Time{}
		}
		return time.UnixMilli(int64(t)).UTC()
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}
		}
		if millis, err := strconv.ParseInt(s, 10, 64); err == nil && millis >= minEpochMillis {
			return time.UnixMilli(millis).UTC()
		}
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed.UTC()
			}
		}
	}
	return time.Time{}
}

func asToken(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatInt(int64(t), 10)
	case bool:
		if t {
			return "1"
		}
		return "0"
	default:
		return ""
	}
}

// coerceCount coerces a loosely typed count cell to a non-negative int,
// defaulting non-numeric or missing values to zero.
func coerceCount(v any) int {
	var n int
	switch t := v.(type) {
	case float64:
		n = int(t)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		n = int(parsed)
	default:
		return 0
	}
	if n < 0 {
		return 0
	}
	return n
}

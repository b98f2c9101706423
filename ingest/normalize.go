package ingest

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// RawPost is one row of the export projected down to the logical columns the
// pipeline consumes. Fields that need further coercion downstream (dates,
// counts, the encoded label cell) stay untyped here; the export formats
// disagree on their types.
type RawPost struct {
	ID           string
	PublishedAt  any
	ChannelName  string
	PlatformName string
	Title        string
	Text         string
	Labels       any
	Likes        any
	Comments     any
}

// columnAliases maps each logical column to the source spellings seen across
// export generations, tried in order. Dotted names are also resolved as
// nested object paths for row-oriented exports that keep the nesting.
var columnAliases = map[string][]string{
	"id":            {"id", "attributes.id", "post_uid", "uid"},
	"published_at":  {"published_at", "attributes.published_at", "attributes.search_data_fields.published_at"},
	"channel_name":  {"channel_name", "attributes.search_data_fields.channel_data.channel_name", "search_data_fields.channel_data.channel_name"},
	"platform_name": {"platform_name", "attributes.search_data_fields.platform_name", "search_data_fields.platform_name", "platform"},
	"title":         {"title", "attributes.search_data_fields.post_title", "search_data_fields.post_title", "post_title"},
	"text":          {"complete_post_text", "attributes.complete_post_text", "search_data_fields.description", "content", "text"},
	"labels":        {"y_pred"},
	"likes":         {"likes_count", "attributes.engagement_fields.likes_count", "engagement_fields.likes_count"},
	"comments":      {"comments_count", "attributes.engagement_fields.comments_count", "engagement_fields.comments_count"},
}

// Normalize projects a decoded raw export onto the logical column set. The
// export is either column-oriented (column name -> row index -> value, the
// pandas to_json orient="columns" shape) or row-oriented (a list of post
// objects). Missing columns are synthesized as nulls; a missing id column is
// fatal because nothing downstream can key the table.
func Normalize(doc any) ([]RawPost, error) {
	switch v := doc.(type) {
	case []any:
		return normalizeRows(v)
	case map[string]any:
		return normalizeColumns(v)
	default:
		return nil, fmt.Errorf("unsupported export shape %T", doc)
	}
}

func normalizeColumns(columns map[string]any) ([]RawPost, error) {
	// Resolve each logical column to whichever alias the export carries.
	// Columns are either row-index keyed objects or plain lists; lists get
	// their implicit order as row indices so both shapes flow the same way.
	resolved := map[string]map[string]any{}
	for logical, aliases := range columnAliases {
		for _, alias := range aliases {
			switch col := columns[alias].(type) {
			case map[string]any:
				resolved[logical] = col
			case []any:
				indexed := make(map[string]any, len(col))
				for i, v := range col {
					indexed[strconv.Itoa(i)] = v
				}
				resolved[logical] = indexed
			default:
				continue
			}
			break
		}
	}

	idCol, ok := resolved["id"]
	if !ok {
		return nil, fmt.Errorf("export has no post id column (tried %s)", strings.Join(columnAliases["id"], ", "))
	}

	// Row indices are string keys in no particular order; parse and sort to
	// restore row order.
	indices := make([]int, 0, len(idCol))
	for key := range idCol {
		idx, err := strconv.Atoi(key)
		if err != nil {
			log.WithFields(log.Fields{
				"key": key,
			}).Warn("Skipping non-numeric row index")
			continue
		}
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	posts := make([]RawPost, 0, len(indices))
	for _, idx := range indices {
		key := strconv.Itoa(idx)
		cell := func(logical string) any {
			col, ok := resolved[logical]
			if !ok {
				return nil
			}
			return col[key]
		}
		posts = append(posts, RawPost{
			ID:           asString(cell("id")),
			PublishedAt:  cell("published_at"),
			ChannelName:  asString(cell("channel_name")),
			PlatformName: asString(cell("platform_name")),
			Title:        asString(cell("title")),
			Text:         asString(cell("text")),
			Labels:       cell("labels"),
			Likes:        cell("likes"),
			Comments:     cell("comments"),
		})
	}

	return posts, nil
}

func normalizeRows(rows []any) ([]RawPost, error) {
	posts := make([]RawPost, 0, len(rows))
	sawID := false

	for _, raw := range rows {
		row, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		cell := func(logical string) any {
			v, _ := lookup(row, columnAliases[logical])
			return v
		}
		if _, ok := lookup(row, columnAliases["id"]); ok {
			sawID = true
		}
		posts = append(posts, RawPost{
			ID:           asString(cell("id")),
			PublishedAt:  cell("published_at"),
			ChannelName:  asString(cell("channel_name")),
			PlatformName: asString(cell("platform_name")),
			Title:        asString(cell("title")),
			Text:         asString(cell("text")),
			Labels:       cell("labels"),
			Likes:        cell("likes"),
			Comments:     cell("comments"),
		})
	}

	if len(posts) > 0 && !sawID {
		return nil, fmt.Errorf("export has no post id column (tried %s)", strings.Join(columnAliases["id"], ", "))
	}

	return posts, nil
}

// lookup tries each alias against the row, first as a flat key and then as a
// dotted path into nested objects.
func lookup(row map[string]any, aliases []string) (any, bool) {
	for _, alias := range aliases {
		if v, ok := row[alias]; ok {
			return v, true
		}
		if !strings.Contains(alias, ".") {
			continue
		}
		if v, ok := nested(row, strings.Split(alias, ".")); ok {
			return v, true
		}
	}
	return nil, false
}

func nested(row map[string]any, path []string) (any, bool) {
	var current any = row
	for _, part := range path {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// asString coerces the loosely typed JSON cells into strings. Numeric ids
// arrive as float64 from encoding/json and must not pick up an exponent.
func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		if s == float64(int64(s)) {
			return strconv.FormatInt(int64(s), 10)
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return fmt.Sprintf("%v", s)
	}
}

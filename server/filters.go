package server

import (
	"strings"

	"claims/query"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

// parseFilters reads the shared filter query parameters. Multi-valued
// parameters are comma separated; empty parameters place no constraint.
func parseFilters(c *fiber.Ctx) query.Filters {
	return query.Filters{
		YearFrom:        c.QueryInt("year_from", 0),
		YearTo:          c.QueryInt("year_to", 0),
		Companies:       splitParam(c.Query("companies")),
		Channels:        splitParam(c.Query("channels")),
		Platforms:       splitParam(c.Query("platforms")),
		Classifications: splitParam(c.Query("classifications")),
		Subcategories:   splitParam(c.Query("subcategories")),
		Keyword:         strings.TrimSpace(c.Query("keyword")),
		UniqueOnly:      c.QueryBool("unique", false),
	}
}

func splitParam(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := lo.Map(strings.Split(raw, ","), func(part string, _ int) string {
		return strings.TrimSpace(part)
	})
	return lo.Filter(parts, func(part string, _ int) bool {
		return part != ""
	})
}

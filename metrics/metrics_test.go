package metrics_test

import (
	"math"
	"testing"

	"claims/metrics"
	"claims/models"
	"claims/refdata"

	"github.com/stretchr/testify/assert"
)

// group appends count posts for a company and year with the given flags.
func group(posts []models.Post, company string, year, count int, green, fossil bool) []models.Post {
	for i := 0; i < count; i++ {
		posts = append(posts, models.Post{
			Company:    company,
			Year:       year,
			Green:      green,
			FossilFuel: fossil,
			GreenBrown: greenBrown(green, fossil),
		})
	}
	return posts
}

func greenBrown(green, fossil bool) string {
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

func TestProportions(t *testing.T) {
	codebook := refdata.Codebook{
		{
			SuperCategory:     "green",
			MultilineCategory: "Renewable\nenergy",
			SubCategories:     []refdata.CodebookSubCategory{{Label: "renewable_energy"}},
		},
		{
			SuperCategory:     "green",
			MultilineCategory: "Emissions\nreduction",
			SubCategories:     []refdata.CodebookSubCategory{{Label: "emissions_reduction"}},
		},
		{
			SuperCategory:     "fossil_fuel",
			MultilineCategory: "Primary\nproduct",
			SubCategories:     []refdata.CodebookSubCategory{{Label: "primary_product"}},
		},
	}
	posts := []models.Post{
		{RenewableEnergy: true},
		{RenewableEnergy: true},
		{RenewableEnergy: true},
		{EmissionsReduction: true},
	}

	rows := metrics.Proportions(posts, codebook)

	assert.Len(t, rows, 3)

	assert.Equal(t, "renewable_energy", rows[0].Name)
	assert.Equal(t, 3, rows[0].Count)
	assert.Equal(t, 0.75, rows[0].Share)

	assert.Equal(t, 1, rows[1].Count)
	assert.Equal(t, 0.25, rows[1].Share)

	// A super-group without any positives yields zero shares, not NaN
	assert.Equal(t, 0, rows[2].Count)
	assert.Equal(t, 0.0, rows[2].Share)
}

func TestClassTotals(t *testing.T) {
	posts := []models.Post{
		{GreenBrown: "green"},
		{GreenBrown: "green"},
		{GreenBrown: "brown"},
		{GreenBrown: "misc"},
	}

	totals := metrics.ClassTotals(posts)

	assert.Len(t, totals, 4)
	assert.Equal(t, "green", totals[0].GreenBrown)
	assert.Equal(t, 2, totals[0].Count)
	assert.Equal(t, 0.5, totals[0].Share)
	assert.Equal(t, "green_brown", totals[2].GreenBrown)
	assert.Equal(t, 0, totals[2].Count)
}

func TestClassTotalsEmpty(t *testing.T) {
	totals := metrics.ClassTotals(nil)

	assert.Len(t, totals, 4)
	for _, total := range totals {
		assert.Equal(t, 0, total.Count)
		assert.Equal(t, 0.0, total.Share)
	}
}

func TestGreenwashingScores(t *testing.T) {
	var posts []models.Post
	// Acme 2020: 75 green, 25 fossil -> pct_green 0.75
	posts = group(posts, "Acme", 2020, 75, true, false)
	posts = group(posts, "Acme", 2020, 25, false, true)
	// Acme 2019: below the fossil gate
	posts = group(posts, "Acme", 2019, 75, true, false)
	posts = group(posts, "Acme", 2019, 24, false, true)
	// Globex 2020: qualifies but has no CAPEX ratio
	posts = group(posts, "Globex", 2020, 25, true, false)
	posts = group(posts, "Globex", 2020, 25, false, true)
	// Misc posts never count toward the gate
	posts = group(posts, "Acme", 2020, 50, false, false)

	ratios := refdata.CapexTable{
		{Company: "Acme", Year: 2020}: 0.25,
		{Company: "Acme", Year: 2019}: 0.25,
	}

	rows := metrics.GreenwashingScores(posts, ratios)

	assert.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, "Acme", row.Company)
	assert.Equal(t, 2020, row.Year)
	assert.Equal(t, 100, row.TotalPosts)
	assert.Equal(t, 75, row.GreenPosts)
	assert.Equal(t, 25, row.FossilPosts)
	assert.Equal(t, 0.75, row.PctGreen)
	assert.Equal(t, 0.25, row.LowCarbonRatio)
	assert.Equal(t, models.JSONFloat(3.0), row.RawScore)
	assert.Equal(t, models.JSONFloat(2.0), row.NormalizedScore)
}

func TestGreenwashingScoresNonFinite(t *testing.T) {
	var posts []models.Post
	// 50/50 split: pct_green 0.5 equals the ratio, normalized divides by zero
	posts = group(posts, "Acme", 2020, 25, true, false)
	posts = group(posts, "Acme", 2020, 25, false, true)

	ratios := refdata.CapexTable{
		{Company: "Acme", Year: 2020}: 0.5,
	}

	rows := metrics.GreenwashingScores(posts, ratios)

	assert.Len(t, rows, 1)
	assert.True(t, math.IsInf(float64(rows[0].NormalizedScore), 1))
	assert.Equal(t, models.JSONFloat(1.0), rows[0].RawScore)
}

func TestGreenwashingGateBoundary(t *testing.T) {
	var exactly []models.Post
	exactly = group(exactly, "Acme", 2020, 25, true, false)
	exactly = group(exactly, "Acme", 2020, 25, false, true)

	var oneShort []models.Post
	oneShort = group(oneShort, "Acme", 2020, 25, true, false)
	oneShort = group(oneShort, "Acme", 2020, 24, false, true)

	ratios := refdata.CapexTable{{Company: "Acme", Year: 2020}: 0.5}

	assert.Len(t, metrics.GreenwashingScores(exactly, ratios), 1)
	assert.Empty(t, metrics.GreenwashingScores(oneShort, ratios))
}

func TestGreenwashingCountsBothFlagsOnGreenBrownPosts(t *testing.T) {
	var posts []models.Post
	// Every post carries both umbrella flags, so 25 posts satisfy both gates
	posts = group(posts, "Acme", 2020, 25, true, true)

	ratios := refdata.CapexTable{{Company: "Acme", Year: 2020}: 0.5}

	rows := metrics.GreenwashingScores(posts, ratios)

	assert.Len(t, rows, 1)
	assert.Equal(t, 25, rows[0].TotalPosts)
	assert.Equal(t, 25, rows[0].GreenPosts)
	assert.Equal(t, 25, rows[0].FossilPosts)
	assert.Equal(t, 1.0, rows[0].PctGreen)
}

func TestGreenShare(t *testing.T) {
	var posts []models.Post
	for year := 2018; year <= 2022; year++ {
		posts = group(posts, "Acme", year, 30, true, false)
		posts = group(posts, "Acme", year, 30, false, true)
	}
	posts = group(posts, "Globex", 2020, 25, true, false)
	posts = group(posts, "Globex", 2020, 75, false, true)

	rows := metrics.GreenShare(posts, 5)

	assert.Len(t, rows, 6)

	// Rows are ordered by company then year
	assert.Equal(t, "Acme", rows[0].Company)
	assert.Equal(t, 2018, rows[0].Year)
	assert.Equal(t, 50.0, rows[0].PctGreen)
	// Five qualifying years meets the minimum
	assert.False(t, rows[0].ShortHistory)

	last := rows[5]
	assert.Equal(t, "Globex", last.Company)
	assert.Equal(t, 25.0, last.PctGreen)
	// A single qualifying year is flagged as a short history
	assert.True(t, last.ShortHistory)
}

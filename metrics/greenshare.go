package metrics

import (
	"claims/models"

	"github.com/samber/lo"
)

// GreenShare computes the share of green posts among climate-relevant posts
// per (company, year), as a percentage, behind the same minimum-sample gate
// as the greenwashing score. Companies with fewer than minYears qualifying
// years are flagged ShortHistory; the flag is a display hint, the rows stay
// in the output.
func GreenShare(posts []models.Post, minYears int) []models.GreenShareRow {
	groups := summarize(posts)
	keys := qualified(groups)

	yearsPerCompany := lo.CountValuesBy(keys, func(key companyYear) string {
		return key.Company
	})

	rows := make([]models.GreenShareRow, 0, len(keys))
	for _, key := range keys {
		counts := groups[key]
		rows = append(rows, models.GreenShareRow{
			Company:      key.Company,
			Year:         key.Year,
			PctGreen:     float64(counts.Green) / float64(counts.Total) * 100,
			ShortHistory: yearsPerCompany[key.Company] < minYears,
		})
	}

	return rows
}

// Package metrics computes the aggregated tables behind the analytics
// charts. All functions are pure over a filtered view of the post table.
package metrics

import (
	"claims/models"
	"claims/refdata"
)

// greenBrownOrder fixes the segment order of the stacked totals bar.
var greenBrownOrder = []string{"green", "brown", "green_brown", "misc"}

// Proportions computes, for every codebook subcategory, the positive post
// count and its share of positives within the subcategory's super-group. A
// super-group with zero positives yields zero shares, not NaN.
func Proportions(posts []models.Post, codebook refdata.Codebook) []models.ProportionRow {
	labels := codebook.Labels()

	counts := make([]int, len(labels))
	groupTotals := map[string]int{}
	for i, label := range labels {
		for _, post := range posts {
			if post.Flag(label.Name) {
				counts[i]++
			}
		}
		groupTotals[label.SuperCategory] += counts[i]
	}

	rows := make([]models.ProportionRow, len(labels))
	for i, label := range labels {
		share := 0.0
		if total := groupTotals[label.SuperCategory]; total > 0 {
			share = float64(counts[i]) / float64(total)
		}
		rows[i] = models.ProportionRow{
			Name:          label.Name,
			Label:         label.Label,
			SuperCategory: label.SuperCategory,
			Count:         counts[i],
			Share:         share,
		}
	}

	return rows
}

// ClassTotals computes the four-way green/brown distribution of the
// filtered view for the stacked totals bar.
func ClassTotals(posts []models.Post) []models.ClassTotal {
	counts := map[string]int{}
	for _, post := range posts {
		counts[post.GreenBrown]++
	}

	totals := make([]models.ClassTotal, 0, len(greenBrownOrder))
	for _, class := range greenBrownOrder {
		share := 0.0
		if len(posts) > 0 {
			share = float64(counts[class]) / float64(len(posts))
		}
		totals = append(totals, models.ClassTotal{
			GreenBrown: class,
			Count:      counts[class],
			Share:      share,
		})
	}

	return totals
}

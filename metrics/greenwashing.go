package metrics

import (
	"sort"

	"claims/models"
	"claims/refdata"
)

// Minimum green and fossil post counts before a (company, year) group is
// considered statistically meaningful. This gate is deliberate and fixed.
const (
	minGreenPosts  = 25
	minFossilPosts = 25
)

type companyYear struct {
	Company string
	Year    int
}

type groupCounts struct {
	Total  int
	Green  int
	Fossil int
}

// summarize counts climate-relevant posts (green_brown != misc) per
// (company, year). Posts without a company or a parsable date cannot be
// grouped and are left out.
func summarize(posts []models.Post) map[companyYear]groupCounts {
	groups := map[companyYear]groupCounts{}
	for _, post := range posts {
		if post.GreenBrown == "misc" || post.Company == "" || post.Year == 0 {
			continue
		}
		key := companyYear{Company: post.Company, Year: post.Year}
		counts := groups[key]
		counts.Total++
		if post.Green {
			counts.Green++
		}
		if post.FossilFuel {
			counts.Fossil++
		}
		groups[key] = counts
	}
	return groups
}

// qualified filters groups through the minimum-sample gate and returns them
// in (company, year) order.
func qualified(groups map[companyYear]groupCounts) []companyYear {
	var keys []companyYear
	for key, counts := range groups {
		if counts.Green < minGreenPosts || counts.Fossil < minFossilPosts {
			continue
		}
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Company != keys[j].Company {
			return keys[i].Company < keys[j].Company
		}
		return keys[i].Year < keys[j].Year
	})
	return keys
}

// GreenwashingScores computes the per-company-year greenwashing score
// series: the share of green messaging against the share of low-carbon
// capital expenditure. Groups without a CAPEX ratio are dropped, not
// imputed. Both the raw ratio and the normalized score are exposed per row;
// the normalized formula is numerically unstable near pct_green ==
// low_carbon_ratio and surfaces non-finite values rather than failing.
func GreenwashingScores(posts []models.Post, ratios refdata.CapexTable) []models.GreenwashingRow {
	groups := summarize(posts)

	var rows []models.GreenwashingRow
	for _, key := range qualified(groups) {
		ratio, ok := ratios.Ratio(key.Company, key.Year)
		if !ok {
			continue
		}
		counts := groups[key]
		pctGreen := float64(counts.Green) / float64(counts.Total)

		rows = append(rows, models.GreenwashingRow{
			Company:         key.Company,
			Year:            key.Year,
			TotalPosts:      counts.Total,
			GreenPosts:      counts.Green,
			FossilPosts:     counts.Fossil,
			PctGreen:        pctGreen,
			LowCarbonRatio:  ratio,
			RawScore:        models.JSONFloat(pctGreen / ratio),
			NormalizedScore: models.JSONFloat((pctGreen + ratio) / (pctGreen - ratio)),
		})
	}

	return rows
}

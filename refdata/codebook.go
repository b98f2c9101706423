package refdata

import (
	"encoding/json"
	"fmt"
	"os"
)

// CodebookSubCategory is one classifier subcategory. Label is the machine
// name matching the decoded flag column.
type CodebookSubCategory struct {
	Label string `json:"label"`
}

// CodebookEntry is one taxonomy entry: the super-group it belongs to, its
// human-readable (possibly multi-line) chart label and the flag columns it
// covers.
type CodebookEntry struct {
	SuperCategory     string                `json:"super_category"`
	MultilineCategory string                `json:"multiline_category"`
	SubCategories     []CodebookSubCategory `json:"sub_categories"`
}

// Codebook is the category taxonomy consumed by the proportion metric to
// label its axes.
type Codebook []CodebookEntry

// CategoryLabel pairs a flag column with its chart metadata.
type CategoryLabel struct {
	Name          string
	Label         string
	SuperCategory string
}

// Labels flattens the codebook into one row per flag column.
func (c Codebook) Labels() []CategoryLabel {
	var labels []CategoryLabel
	for _, entry := range c {
		for _, sub := range entry.SubCategories {
			labels = append(labels, CategoryLabel{
				Name:          sub.Label,
				Label:         entry.MultilineCategory,
				SuperCategory: entry.SuperCategory,
			})
		}
	}
	return labels
}

// LoadCodebook reads the category taxonomy JSON.
func LoadCodebook(path string) (Codebook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading codebook: %w", err)
	}

	var codebook Codebook
	if err := json.Unmarshal(data, &codebook); err != nil {
		return nil, fmt.Errorf("error parsing codebook: %w", err)
	}

	return codebook, nil
}

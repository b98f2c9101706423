package models

import "time"

// Post is one row of the canonical post table. All downstream code reads
// typed fields; dot-path column access ends at the normalizer.
type Post struct {
	ID           string    `json:"id"`
	PublishedAt  time.Time `json:"publishedAt"`
	Year         int       `json:"year"`
	Company      string    `json:"company,omitempty"`
	ChannelName  string    `json:"channelName"`
	PlatformName string    `json:"platformName"`
	Title        string    `json:"title,omitempty"`
	Text         string    `json:"text"`
	Engagement   int       `json:"engagement"`

	// Classification flags decoded from the classifier output, in codebook
	// order.
	FossilFuel               bool `json:"fossilFuel"`
	PrimaryProduct           bool `json:"primaryProduct"`
	PetrochemicalProduct     bool `json:"petrochemicalProduct"`
	InfrastructureProduction bool `json:"infrastructureProduction"`
	Green                    bool `json:"green"`
	RenewableEnergy          bool `json:"renewableEnergy"`
	EmissionsReduction       bool `json:"emissionsReduction"`
	FalseSolutions           bool `json:"falseSolutions"`
	Recycling                bool `json:"recycling"`

	// Derived flags. Misc is set when no classification flag is. OtherGreen
	// and OtherFossil mark posts where an umbrella flag is set but none of
	// its subcategories are.
	Misc        bool `json:"misc"`
	OtherGreen  bool `json:"otherGreen"`
	OtherFossil bool `json:"otherFossil"`

	// GreenBrown is the final four-way label derived from the Green and
	// FossilFuel umbrella flags: green, brown, green_brown or misc.
	GreenBrown string `json:"greenBrown"`

	// NormalizedText is Text with URLs collapsed to a [URL] token; Duplicate
	// marks every post after the first sharing the same normalized text in
	// table order.
	NormalizedText string `json:"-"`
	Duplicate      bool   `json:"duplicate"`
}

// Flag returns the value of a classification flag by its machine name.
// Unknown names return false.
func (p *Post) Flag(name string) bool {
	switch name {
	case "fossil_fuel":
		return p.FossilFuel
	case "primary_product":
		return p.PrimaryProduct
	case "petrochemical_product":
		return p.PetrochemicalProduct
	case "infrastructure_production":
		return p.InfrastructureProduction
	case "green":
		return p.Green
	case "renewable_energy":
		return p.RenewableEnergy
	case "emissions_reduction":
		return p.EmissionsReduction
	case "false_solutions":
		return p.FalseSolutions
	case "recycling":
		return p.Recycling
	case "misc":
		return p.Misc
	case "other_green":
		return p.OtherGreen
	case "other_fossil":
		return p.OtherFossil
	}
	return false
}

// FeedResponse is one page of posts plus pagination metadata.
type FeedResponse struct {
	Posts    []Post `json:"posts"`
	Total    int    `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
	HasMore  bool   `json:"hasMore"`
}

// ComparisonResponse holds the two independently paginated sides of the
// side-by-side view.
type ComparisonResponse struct {
	Left  FeedResponse `json:"left"`
	Right FeedResponse `json:"right"`
}

// ProportionRow is one subcategory bar of the overview chart: positive count
// and the share of positives within the subcategory's super-group.
type ProportionRow struct {
	Name          string  `json:"name"`
	Label         string  `json:"label"`
	SuperCategory string  `json:"superCategory"`
	Count         int     `json:"count"`
	Share         float64 `json:"share"`
}

// ClassTotal is one segment of the stacked green/brown totals bar.
type ClassTotal struct {
	GreenBrown string  `json:"greenBrown"`
	Count      int     `json:"count"`
	Share      float64 `json:"share"`
}

// GreenwashingRow is one (company, year) point of the greenwashing score
// series. RawScore and NormalizedScore are encoded as JSONFloat so that the
// non-finite values of the normalized formula survive JSON encoding.
type GreenwashingRow struct {
	Company         string    `json:"company"`
	Year            int       `json:"year"`
	TotalPosts      int       `json:"totalPosts"`
	GreenPosts      int       `json:"greenPosts"`
	FossilPosts     int       `json:"fossilPosts"`
	PctGreen        float64   `json:"pctGreen"`
	LowCarbonRatio  float64   `json:"lowCarbonRatio"`
	RawScore        JSONFloat `json:"rawScore"`
	NormalizedScore JSONFloat `json:"normalizedScore"`
}

// GreenShareRow is one (company, year) point of the green share series.
// ShortHistory is a display hint: the company has fewer qualifying years
// than the configured minimum and should be rendered initially hidden.
type GreenShareRow struct {
	Company      string  `json:"company"`
	Year         int     `json:"year"`
	PctGreen     float64 `json:"pctGreen"`
	ShortHistory bool    `json:"shortHistory"`
}

// FilterOptions is the sidebar population payload: every selectable value
// plus the year bounds for the range slider.
type FilterOptions struct {
	Companies         []string            `json:"companies"`
	ChannelsByCompany map[string][]string `json:"channelsByCompany"`
	Platforms         []string            `json:"platforms"`
	Classifications   []string            `json:"classifications"`
	MinYear           int                 `json:"minYear"`
	MaxYear           int                 `json:"maxYear"`
}

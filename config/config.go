package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// TomlData holds the input file paths for the dashboard dataset.
type TomlData struct {
	Posts          string `toml:"posts"`
	ChannelMapping string `toml:"channel_mapping"`
	LowCarbonCSV   string `toml:"low_carbon_ratios"`
	Codebook       string `toml:"codebook"`
}

// TomlTaxonomy declares the classifier output layout: the ordered category
// names the encoded label field decodes to, and which subcategories belong
// to each umbrella. Defaults match the current classifier export; older
// exports with renamed columns can override without a code change.
type TomlTaxonomy struct {
	Categories    []string `toml:"categories"`
	GreenSubcats  []string `toml:"green_subcategories"`
	FossilSubcats []string `toml:"fossil_subcategories"`
}

// TomlAnalytics holds the aggregation knobs that are configurable. The
// 25-post significance gate is deliberately not configurable.
type TomlAnalytics struct {
	MinSeriesYears int `toml:"min_series_years"`
}

// TomlServer holds HTTP server settings.
type TomlServer struct {
	Port     int    `toml:"port"`
	Hostname string `toml:"hostname"`
}

// TomlProxy holds settings for the post embed proxy.
type TomlProxy struct {
	BaseURL  string `toml:"base_url"`
	CacheDir string `toml:"cache_dir"`
	TTLHours int    `toml:"ttl_hours"`
}

// TomlConfig represents the top-level configuration
type TomlConfig struct {
	Data      TomlData      `toml:"data"`
	Taxonomy  TomlTaxonomy  `toml:"taxonomy"`
	Analytics TomlAnalytics `toml:"analytics"`
	Server    TomlServer    `toml:"server"`
	Proxy     TomlProxy     `toml:"proxy"`
}

// DefaultCategories is the positional decode order of the encoded label
// field for current exports.
var DefaultCategories = []string{
	"fossil_fuel",
	"primary_product",
	"petrochemical_product",
	"infrastructure_production",
	"green",
	"renewable_energy",
	"emissions_reduction",
	"false_solutions",
	"recycling",
}

// DefaultGreenSubcats are the named subcategories under the green umbrella.
var DefaultGreenSubcats = []string{
	"renewable_energy",
	"emissions_reduction",
	"false_solutions",
	"recycling",
}

// DefaultFossilSubcats are the named subcategories under the fossil_fuel
// umbrella.
var DefaultFossilSubcats = []string{
	"primary_product",
	"petrochemical_product",
	"infrastructure_production",
}

func LoadConfig(path string) (*TomlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config TomlConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	applyDefaults(&config)

	return &config, nil
}

// Default returns a config with all defaults applied, for callers that run
// without a config file (everything set via flags).
func Default() *TomlConfig {
	config := &TomlConfig{}
	applyDefaults(config)
	return config
}

func applyDefaults(config *TomlConfig) {
	if len(config.Taxonomy.Categories) == 0 {
		config.Taxonomy.Categories = DefaultCategories
	}
	if len(config.Taxonomy.GreenSubcats) == 0 {
		config.Taxonomy.GreenSubcats = DefaultGreenSubcats
	}
	if len(config.Taxonomy.FossilSubcats) == 0 {
		config.Taxonomy.FossilSubcats = DefaultFossilSubcats
	}
	if config.Analytics.MinSeriesYears == 0 {
		config.Analytics.MinSeriesYears = 5
	}
	if config.Server.Port == 0 {
		config.Server.Port = 3000
	}
	if config.Proxy.BaseURL == "" {
		config.Proxy.BaseURL = "https://www.junkipedia.org"
	}
	if config.Proxy.CacheDir == "" {
		config.Proxy.CacheDir = os.TempDir() + "/claims_proxy_cache"
	}
	if config.Proxy.TTLHours == 0 {
		config.Proxy.TTLHours = 24
	}
}

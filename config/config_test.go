package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"claims/config"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	assert.NoError(t, os.WriteFile(path, []byte(`
[data]
posts = "posts.json"
channel_mapping = "channels.csv"

[server]
port = 8080

[analytics]
min_series_years = 3

[proxy]
ttl_hours = 48
`), 0644))

	cfg, err := config.LoadConfig(path)

	assert.NoError(t, err)
	assert.Equal(t, "posts.json", cfg.Data.Posts)
	assert.Equal(t, "channels.csv", cfg.Data.ChannelMapping)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Analytics.MinSeriesYears)
	assert.Equal(t, 48, cfg.Proxy.TTLHours)

	// Unset sections fall back to defaults
	assert.Equal(t, config.DefaultCategories, cfg.Taxonomy.Categories)
	assert.Equal(t, "https://www.junkipedia.org", cfg.Proxy.BaseURL)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))

	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := config.Default()

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Analytics.MinSeriesYears)
	assert.Equal(t, 24, cfg.Proxy.TTLHours)
	assert.Len(t, cfg.Taxonomy.Categories, 9)
	assert.Equal(t, "fossil_fuel", cfg.Taxonomy.Categories[0])
	assert.NotEmpty(t, cfg.Taxonomy.GreenSubcats)
	assert.NotEmpty(t, cfg.Taxonomy.FossilSubcats)
}

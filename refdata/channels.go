// Package refdata loads the read-only reference tables the dashboard joins
// against: the channel to company mapping, the low-carbon CAPEX ratios and
// the category codebook.
package refdata

import (
	"encoding/csv"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
)

// ChannelRow is one raw row of the channel to company mapping. Rows are
// returned as-is, duplicates included; deduplication happens in the join.
type ChannelRow struct {
	Channel string
	Company string
}

// channelHeaderAliases lists the header spellings of the channel name column
// across mapping file generations.
var channelHeaderAliases = []string{
	"channel_name",
	"search_data_fields.channel_data.channel_name",
	"attributes.search_data_fields.channel_data.channel_name",
}

// entityHeaderAliases lists the header spellings of the company column. The
// mapping files call it entity; downstream it is always company.
var entityHeaderAliases = []string{"entity", "company"}

// LoadChannelMapping reads the channel to company reference CSV.
func LoadChannelMapping(path string) ([]ChannelRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening channel mapping: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading channel mapping: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("channel mapping %s is empty", path)
	}

	header := records[0]
	channelIdx := findColumn(header, channelHeaderAliases)
	entityIdx := findColumn(header, entityHeaderAliases)
	if channelIdx < 0 || entityIdx < 0 {
		return nil, fmt.Errorf("channel mapping %s has no channel/entity columns", path)
	}

	var rows []ChannelRow
	for _, record := range records[1:] {
		if len(record) <= channelIdx || len(record) <= entityIdx {
			continue
		}
		if record[channelIdx] == "" {
			continue
		}
		rows = append(rows, ChannelRow{
			Channel: record[channelIdx],
			Company: record[entityIdx],
		})
	}

	log.WithFields(log.Fields{
		"path": path,
		"rows": len(rows),
	}).Info("Loaded channel mapping")

	return rows, nil
}

func findColumn(header []string, aliases []string) int {
	for _, alias := range aliases {
		for i, name := range header {
			if name == alias {
				return i
			}
		}
	}
	return -1
}

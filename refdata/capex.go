package refdata

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// CapexKey identifies one row of the low-carbon ratio table.
type CapexKey struct {
	Company string
	Year    int
}

// CapexTable maps (company, year) to the fraction of capital expenditure
// classified as low-carbon. Missing pairs are missing data, never imputed.
type CapexTable map[CapexKey]float64

// Ratio looks up the low-carbon ratio for a company and year.
func (t CapexTable) Ratio(company string, year int) (float64, bool) {
	ratio, ok := t[CapexKey{Company: company, Year: year}]
	return ratio, ok
}

// LoadCapexRatios reads the external per-company-year low-carbon CAPEX
// ratio CSV. Rows with an unparsable year or ratio are skipped with a
// warning.
func LoadCapexRatios(path string) (CapexTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening low-carbon ratios: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading low-carbon ratios: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("low-carbon ratio table %s is empty", path)
	}

	header := records[0]
	companyIdx := findColumn(header, []string{"company", "entity"})
	yearIdx := findColumn(header, []string{"year"})
	ratioIdx := findColumn(header, []string{"low_carbon_ratio", "ratio"})
	if companyIdx < 0 || yearIdx < 0 || ratioIdx < 0 {
		return nil, fmt.Errorf("low-carbon ratio table %s has no company/year/ratio columns", path)
	}

	table := make(CapexTable)
	for _, row := range records[1:] {
		if len(row) <= companyIdx || len(row) <= yearIdx || len(row) <= ratioIdx {
			continue
		}
		year, err := strconv.Atoi(strings.TrimSpace(row[yearIdx]))
		if err != nil {
			log.WithFields(log.Fields{
				"year": row[yearIdx],
			}).Warn("Skipping ratio row with bad year")
			continue
		}
		ratio, err := strconv.ParseFloat(strings.TrimSpace(row[ratioIdx]), 64)
		if err != nil {
			log.WithFields(log.Fields{
				"ratio": row[ratioIdx],
			}).Warn("Skipping ratio row with bad ratio")
			continue
		}
		table[CapexKey{Company: row[companyIdx], Year: year}] = ratio
	}

	log.WithFields(log.Fields{
		"path": path,
		"rows": len(table),
	}).Info("Loaded low-carbon ratios")

	return table, nil
}

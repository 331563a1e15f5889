package importers

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// ParseCSV parses one CSV spreadsheet into a draft block-week.
func ParseCSV(sourceFile string, data []byte) (*ParsedBlockWeek, error) {
	// Strip a UTF-8 BOM; several spreadsheet tools emit one.
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	cr := csv.NewReader(bytes.NewReader(data))
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("importers: read %s: %w", sourceFile, err)
	}
	return parseGrid(sourceFile, records)
}

package importers

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ParseXLSX parses the first sheet of an xlsx workbook into a draft
// block-week. The sheet uses the same column layout as the CSV format.
func ParseXLSX(sourceFile string, data []byte) (*ParsedBlockWeek, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("importers: open %s: %w", sourceFile, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("importers: %s has no sheets", sourceFile)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("importers: read sheet %q of %s: %w", sheets[0], sourceFile, err)
	}
	return parseGrid(sourceFile, rows)
}

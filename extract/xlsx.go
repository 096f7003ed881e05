package extract

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// LoadXLSX reads the first sheet of a modern workbook into a Grid. Cells are
// read raw, so native dates arrive as serial numbers and are classified as
// CellNumber; parseHeaderDate resolves them from there.
func LoadXLSX(path string) (*Grid, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}
	raw, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}

	rows := make([][]Cell, len(raw))
	for i, r := range raw {
		cells := make([]Cell, len(r))
		for j, v := range r {
			cells[j] = classifyCell(v)
		}
		rows[i] = cells
	}
	return NewGrid(rows), nil
}

// classifyCell turns a raw cell string into a typed Cell. Purely numeric
// content becomes CellNumber so date serials can be recognized.
func classifyCell(v string) Cell {
	v = strings.TrimSpace(v)
	if v == "" {
		return Cell{}
	}
	if n, err := strconv.ParseFloat(v, 64); err == nil {
		return Cell{Kind: CellNumber, Number: n, Text: v}
	}
	return Cell{Kind: CellText, Text: v}
}

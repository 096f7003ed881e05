package extract

import (
	"fmt"

	"github.com/shakinm/xlsReader/xls"
)

// LoadXLS reads the first sheet of a legacy binary workbook into a Grid.
func LoadXLS(path string) (*Grid, error) {
	wb, err := xls.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	sheet, err := wb.GetSheet(0)
	if err != nil {
		return nil, fmt.Errorf("read sheet 0: %w", err)
	}

	var rows [][]Cell
	for i := 0; i < sheet.GetNumberRows(); i++ {
		row, err := sheet.GetRow(i)
		if err != nil || row == nil {
			rows = append(rows, nil)
			continue
		}
		var cells []Cell
		for _, col := range row.GetCols() {
			if col == nil {
				cells = append(cells, Cell{})
				continue
			}
			cells = append(cells, classifyCell(col.GetString()))
		}
		rows = append(rows, cells)
	}
	return NewGrid(rows), nil
}

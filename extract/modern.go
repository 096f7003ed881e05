package extract

import (
	"github.com/crwntec/mensaLog/plan"
)

// Default date row (0-based) when sniffing finds no date cell.
const modernDefaultDateRow = 2

// sniffModernDateRow scans a bounded window (rows 0-8, columns 1-5) for the
// first cell resolving to a date and returns its row.
func sniffModernDateRow(g *Grid) (int, bool) {
	for row := 0; row < 9; row++ {
		for col := 1; col <= 5; col++ {
			if _, ok := parseHeaderDate(g.At(row, col)); ok {
				return row, true
			}
		}
	}
	return 0, false
}

// ExtractModern parses a modern workbook sheet. Weekday columns are accepted
// only when their date-row cell resolves to a date; category rows are any
// later row whose first-column label contains a category keyword, normalized
// to its canonical name by the ordered keyword rules.
func ExtractModern(g *Grid) Days {
	dateRow, ok := sniffModernDateRow(g)
	if !ok {
		dateRow = modernDefaultDateRow
	}
	days := Days{}
	for col := 1; col <= 8; col++ {
		date, ok := parseHeaderDate(g.At(dateRow, col))
		if !ok {
			continue
		}
		meals := map[string]string{}
		for row := dateRow + 1; row < g.Rows(); row++ {
			label := cellString(g.At(row, 0))
			category, ok := plan.MatchCategory(label)
			if !ok {
				continue
			}
			meal := plan.CleanMealText(cellString(g.At(row, col)))
			if meal == "" {
				continue
			}
			meals[category] = meal
		}
		if len(meals) > 0 {
			days[isoDate(date)] = plan.Day{
				Weekday: date.Weekday().String(),
				Meals:   meals,
			}
		}
	}
	return days
}

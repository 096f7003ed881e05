package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/crwntec/mensaLog/plan"
)

// legacyAnchor locates the legacy layout: the row holding the weekday dates
// and the column holding the category labels.
type legacyAnchor struct {
	DateRow     int
	CategoryCol int
}

// Fallback layout used when sniffing finds nothing.
var legacyDefault = legacyAnchor{DateRow: 2, CategoryCol: 0}

// sniffLegacyLayout scans the top-left corner (rows 0-4, columns 0-2) for a
// cell whose right-hand neighbor holds a date serial. That row is the date
// row and that column the category column.
func sniffLegacyLayout(g *Grid) (legacyAnchor, bool) {
	for row := 0; row < 5; row++ {
		for col := 0; col < 3; col++ {
			next := g.At(row, col+1)
			if next.Kind != CellNumber {
				continue
			}
			if _, ok := serialToTime(next.Number); ok {
				return legacyAnchor{DateRow: row, CategoryCol: col}, true
			}
		}
	}
	return legacyAnchor{}, false
}

// ExtractLegacy parses a legacy workbook sheet: five weekday columns right of
// the category column, dates as serials in the date row, up to four category
// rows beneath it. A day is emitted only when at least one category yielded
// non-empty dish text.
func ExtractLegacy(g *Grid) Days {
	anchor, ok := sniffLegacyLayout(g)
	if !ok {
		anchor = legacyDefault
	}
	days := Days{}
	for col := 1; col <= 5; col++ {
		dateCell := g.At(anchor.DateRow, col)
		if dateCell.Kind != CellNumber {
			continue
		}
		date, ok := serialToTime(dateCell.Number)
		if !ok {
			continue
		}
		meals := map[string]string{}
		for row := anchor.DateRow + 1; row <= anchor.DateRow+4; row++ {
			if row >= g.Rows() {
				break
			}
			category := strings.TrimSpace(cellString(g.At(row, anchor.CategoryCol)))
			meal := plan.CleanMealText(cellString(g.At(row, col)))
			if category == "" || meal == "" {
				continue
			}
			meals[plan.Canonical(category)] = meal
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

// cellString renders any cell as display text.
func cellString(c Cell) string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case CellTime:
		return c.Time.Format("02.01.2006")
	}
	return ""
}

var weekMarker = regexp.MustCompile(`(?i)KW\s*(\d+)`)

// SheetWeekMarker scans the first column of the top rows for an in-sheet
// "KW <n>" marker and returns the week number if present.
func SheetWeekMarker(g *Grid) (int, bool) {
	for row := 0; row < 5; row++ {
		c := g.At(row, 0)
		if c.Kind != CellText {
			continue
		}
		if m := weekMarker.FindStringSubmatch(c.Text); m != nil {
			if week, err := strconv.Atoi(m[1]); err == nil {
				return week, true
			}
		}
	}
	return 0, false
}

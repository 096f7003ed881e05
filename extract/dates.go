package extract

import (
	"strings"
	"time"
)

// Excel serial day 0 is 1899-12-30 in the 1900 date system.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// serialToTime converts an Excel date serial to a calendar date. Serials
// outside a plausible menu range (1990..2100) are rejected so ordinary
// numbers in cells are not mistaken for dates.
func serialToTime(serial float64) (time.Time, bool) {
	if serial < 32874 || serial > 73415 { // 1990-01-01 .. 2100-12-31
		return time.Time{}, false
	}
	days := int(serial)
	return excelEpoch.AddDate(0, 0, days), true
}

// parseDottedDate parses "DD.MM.YY" or "DD.MM.YYYY".
func parseDottedDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"02.01.06", "02.01.2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseHeaderDate resolves a modern-sheet date cell. The encodings are tried
// in fixed order: native date value, DD.MM.YYYY text, DD/MM/YYYY text, date
// serial. First success wins.
func parseHeaderDate(c Cell) (time.Time, bool) {
	switch c.Kind {
	case CellTime:
		return c.Time, true
	case CellText:
		s := strings.TrimSpace(c.Text)
		if t, err := time.Parse("02.01.2006", s); err == nil {
			return t, true
		}
		if t, err := time.Parse("02/01/2006", s); err == nil {
			return t, true
		}
		return time.Time{}, false
	case CellNumber:
		return serialToTime(c.Number)
	}
	return time.Time{}, false
}

// isoDate formats a date the way schedules are keyed.
func isoDate(t time.Time) string {
	return t.Format("2006-01-02")
}

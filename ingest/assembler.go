// Package ingest assembles extracted day schedules into week-tagged
// mealplans and drives document import.
package ingest

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/crwntec/mensaLog/extract"
	"github.com/crwntec/mensaLog/plan"
)

// ErrWeekUnknown marks a document whose week number could not be
// determined. The document is rejected; the batch continues.
var ErrWeekUnknown = errors.New("could not determine week number")

var (
	kwPattern    = regexp.MustCompile(`(?i)KW\s*(\d+)`)
	mensaPattern = regexp.MustCompile(`(?i)Mensa\s+(\d+)`)
	digitPattern = regexp.MustCompile(`(\d+)`)
	textDateRe   = regexp.MustCompile(`\d{2}\.\d{2}\.\d{2,4}`)
)

// WeekFromFilename extracts a week number from a document filename, trying
// "KW 02", "Mensa 24" and finally any standalone integer.
func WeekFromFilename(name string) (int, bool) {
	for _, re := range []*regexp.Regexp{kwPattern, mensaPattern, digitPattern} {
		if m := re.FindStringSubmatch(name); m != nil {
			if week, err := strconv.Atoi(m[1]); err == nil {
				return week, true
			}
		}
	}
	return 0, false
}

// WeekFromText extracts an in-document "KW <n>" marker.
func WeekFromText(text string) (int, bool) {
	if m := kwPattern.FindStringSubmatch(text); m != nil {
		if week, err := strconv.Atoi(m[1]); err == nil {
			return week, true
		}
	}
	return 0, false
}

// YearFromDir reads the year from the name of the directory the document
// lives in; the archive is laid out as <archive>/<year>/<file>.
func YearFromDir(path string) (int, bool) {
	year, err := strconv.Atoi(filepath.Base(filepath.Dir(path)))
	if err != nil || year < 1990 || year > 2100 {
		return 0, false
	}
	return year, true
}

// YearFromText reads the year from the first dotted date in the text,
// falling back to now's year.
func YearFromText(text string, now time.Time) int {
	if m := textDateRe.FindString(text); m != "" {
		if t, ok := parseDotted(m); ok {
			return t.Year()
		}
	}
	return now.Year()
}

func parseDotted(s string) (time.Time, bool) {
	for _, layout := range []string{"02.01.06", "02.01.2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// AssembleSpreadsheet tags a sheet's extracted days with (year, week). Week
// comes from the in-sheet marker, then the filename; year from the archive
// directory. A missing week is a hard error for the document.
func AssembleSpreadsheet(path string, g *extract.Grid, days extract.Days) (plan.Mealplan, error) {
	week, ok := extract.SheetWeekMarker(g)
	if !ok {
		week, ok = WeekFromFilename(filepath.Base(path))
	}
	if !ok {
		return plan.Mealplan{}, fmt.Errorf("%s: %w", path, ErrWeekUnknown)
	}
	year, ok := YearFromDir(path)
	if !ok {
		return plan.Mealplan{}, fmt.Errorf("%s: no year directory", path)
	}
	return plan.Mealplan{Year: year, Week: week, Days: days}, nil
}

// SplitByISOWeek buckets extracted days by the ISO week of their date and
// returns one mealplan fragment per week, ordered by (year, week). Dates
// that do not parse are skipped.
func SplitByISOWeek(days extract.Days) []plan.Mealplan {
	type key struct{ year, week int }
	buckets := map[key]map[string]plan.Day{}
	for date, day := range days {
		t, err := time.Parse("2006-01-02", date)
		if err != nil {
			continue
		}
		year, week := t.ISOWeek()
		k := key{year, week}
		if buckets[k] == nil {
			buckets[k] = map[string]plan.Day{}
		}
		buckets[k][date] = day
	}

	fragments := make([]plan.Mealplan, 0, len(buckets))
	for k, d := range buckets {
		fragments = append(fragments, plan.Mealplan{Year: k.year, Week: k.week, Days: d})
	}
	sort.Slice(fragments, func(i, j int) bool {
		if fragments[i].Year != fragments[j].Year {
			return fragments[i].Year < fragments[j].Year
		}
		return fragments[i].Week < fragments[j].Week
	})
	return fragments
}

// AssemblePDF turns the pages of one PDF into per-ISO-week mealplan
// fragments. Published PDFs cover two weeks in one file; each fragment is
// checked and stored independently. When no days could be extracted the
// week marker decides between "empty document" and a hard error.
func AssemblePDF(pages []extract.PDFPage, filename string, now time.Time) ([]plan.Mealplan, error) {
	days := extract.Days{}
	var text string
	for _, page := range pages {
		text += page.Text
		for date, day := range extract.ExtractPDFPage(page) {
			days[date] = day
		}
	}

	fragments := SplitByISOWeek(days)
	if len(fragments) > 0 {
		return fragments, nil
	}

	week, ok := WeekFromText(text)
	if !ok {
		week, ok = WeekFromFilename(filename)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", filename, ErrWeekUnknown)
	}
	year := YearFromText(text, now)
	return []plan.Mealplan{{Year: year, Week: week, Days: extract.Days{}}}, nil
}

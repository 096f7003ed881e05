package ingest

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/crwntec/mensaLog/extract"
	"github.com/crwntec/mensaLog/plan"
)

func TestWeekFromFilename(t *testing.T) {
	cases := []struct {
		name string
		want int
		ok   bool
	}{
		{"KW 02.xls", 2, true},
		{"kw36_speiseplan.xlsx", 36, true},
		{"Mensa 24.xls", 24, true},
		{"speiseplan-7.pdf", 7, true},
		{"speiseplan.pdf", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			week, ok := WeekFromFilename(tc.name)
			if ok != tc.ok || week != tc.want {
				t.Errorf("WeekFromFilename(%q) = (%d, %v), want (%d, %v)", tc.name, week, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestYearFromDir(t *testing.T) {
	if year, ok := YearFromDir(filepath.Join("archive", "2025", "KW 36.xls")); !ok || year != 2025 {
		t.Errorf("got (%d, %v), want (2025, true)", year, ok)
	}
	if _, ok := YearFromDir(filepath.Join("archive", "misc", "KW 36.xls")); ok {
		t.Errorf("non-numeric directory accepted")
	}
	if _, ok := YearFromDir(filepath.Join("archive", "123", "KW 36.xls")); ok {
		t.Errorf("implausible year accepted")
	}
}

func TestYearFromText(t *testing.T) {
	now := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	if year := YearFromText("Speiseplan 01.09.2025 bis 05.09.2025", now); year != 2025 {
		t.Errorf("got %d, want 2025", year)
	}
	if year := YearFromText("Speiseplan ohne Datum", now); year != 2026 {
		t.Errorf("got %d, want fallback 2026", year)
	}
}

func day(weekday string) plan.Day {
	return plan.Day{Weekday: weekday, Meals: map[string]string{plan.CategoryTagesgericht: "Braten"}}
}

// 2025-02-03..07 is ISO week 6, 2025-02-10..14 week 7.
func TestSplitByISOWeek(t *testing.T) {
	days := extract.Days{
		"2025-02-03": day("Monday"),
		"2025-02-05": day("Wednesday"),
		"2025-02-10": day("Monday"),
		"2025-02-14": day("Friday"),
		"kein-datum": day("Monday"),
	}
	fragments := SplitByISOWeek(days)
	if len(fragments) != 2 {
		t.Fatalf("got %d fragments, want 2", len(fragments))
	}
	if fragments[0].Year != 2025 || fragments[0].Week != 6 || len(fragments[0].Days) != 2 {
		t.Errorf("first fragment = %d/W%d with %d days", fragments[0].Year, fragments[0].Week, len(fragments[0].Days))
	}
	if fragments[1].Year != 2025 || fragments[1].Week != 7 || len(fragments[1].Days) != 2 {
		t.Errorf("second fragment = %d/W%d with %d days", fragments[1].Year, fragments[1].Week, len(fragments[1].Days))
	}
}

// A late-December date can belong to week 1 of the following ISO year.
func TestSplitByISOWeekYearBoundary(t *testing.T) {
	fragments := SplitByISOWeek(extract.Days{"2025-12-29": day("Monday")})
	if len(fragments) != 1 {
		t.Fatalf("got %d fragments", len(fragments))
	}
	if fragments[0].Year != 2026 || fragments[0].Week != 1 {
		t.Errorf("got %d/W%d, want 2026/W1", fragments[0].Year, fragments[0].Week)
	}
}

func TestAssembleSpreadsheet(t *testing.T) {
	path := filepath.Join("archive", "2025", "speiseplan.xls")
	g := extract.NewGrid([][]extract.Cell{
		{{Kind: extract.CellText, Text: "KW 36"}},
	})
	days := extract.Days{"2025-09-01": day("Monday")}

	p, err := AssembleSpreadsheet(path, g, days)
	if err != nil {
		t.Fatalf("AssembleSpreadsheet: %v", err)
	}
	if p.Year != 2025 || p.Week != 36 {
		t.Errorf("got %d/W%d, want 2025/W36", p.Year, p.Week)
	}
}

// Without an in-sheet marker the filename decides the week.
func TestAssembleSpreadsheetFilenameFallback(t *testing.T) {
	path := filepath.Join("archive", "2025", "KW 14.xls")
	p, err := AssembleSpreadsheet(path, extract.NewGrid(nil), extract.Days{})
	if err != nil {
		t.Fatalf("AssembleSpreadsheet: %v", err)
	}
	if p.Week != 14 {
		t.Errorf("week = %d, want 14", p.Week)
	}
}

func TestAssembleSpreadsheetWeekUnknown(t *testing.T) {
	path := filepath.Join("archive", "2025", "speiseplan.xls")
	_, err := AssembleSpreadsheet(path, extract.NewGrid(nil), extract.Days{})
	if !errors.Is(err, ErrWeekUnknown) {
		t.Errorf("err = %v, want ErrWeekUnknown", err)
	}
}

func TestAssemblePDFSplitsWeeks(t *testing.T) {
	page := extract.PDFPage{
		Tables: [][][]string{
			{
				{"", "Montag 01.09.2025", "Dienstag 02.09.2025"},
				{"Tagesgericht", "Braten", "Schnitzel"},
			},
			{
				{"", "Montag 08.09.2025"},
				{"Tagesgericht", "Fischfilet"},
			},
		},
	}
	fragments, err := AssemblePDF([]extract.PDFPage{page}, "speiseplan.pdf", time.Now())
	if err != nil {
		t.Fatalf("AssemblePDF: %v", err)
	}
	if len(fragments) != 2 {
		t.Fatalf("got %d fragments, want 2", len(fragments))
	}
	if fragments[0].Week != 36 || fragments[1].Week != 37 {
		t.Errorf("weeks = %d, %d, want 36, 37", fragments[0].Week, fragments[1].Week)
	}
	if len(fragments[0].Days) != 2 || len(fragments[1].Days) != 1 {
		t.Errorf("day counts = %d, %d", len(fragments[0].Days), len(fragments[1].Days))
	}
}

// An empty document with a recognizable week marker yields one empty
// fragment instead of an error.
func TestAssemblePDFEmptyWithMarker(t *testing.T) {
	now := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	pages := []extract.PDFPage{{Text: "Speiseplan KW 12"}}
	fragments, err := AssemblePDF(pages, "speiseplan.pdf", now)
	if err != nil {
		t.Fatalf("AssemblePDF: %v", err)
	}
	if len(fragments) != 1 || fragments[0].Week != 12 || fragments[0].Year != 2025 {
		t.Errorf("got %+v", fragments)
	}
	if len(fragments[0].Days) != 0 {
		t.Errorf("expected empty fragment")
	}
}

func TestAssemblePDFWeekUnknown(t *testing.T) {
	_, err := AssemblePDF([]extract.PDFPage{{Text: "kein Plan"}}, "speiseplan.pdf", time.Now())
	if !errors.Is(err, ErrWeekUnknown) {
		t.Errorf("err = %v, want ErrWeekUnknown", err)
	}
}

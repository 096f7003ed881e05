package extract

import (
	"testing"

	"github.com/crwntec/mensaLog/plan"
)

func pdfWeekTable() [][]string {
	return [][]string{
		{"Speiseplan der Mensa"},
		{"", "Montag\n01.09.2025", "Dienstag\n02.09.2025", "Mittwoch\n03.09.2025"},
		{"Tagesgericht", "Rinderbraten", "Schnitzel", "Gulasch"},
		{"", "mit Soße dazu Reis", "mit Pommes", ""},
		{"Vegetarisch", "Gemüsebratling", "Auflauf", "Quiche"},
		{"Pizza & Pasta", "Pizza Salami", "Penne", "Lasagne"},
	}
}

func TestExtractPDFTable(t *testing.T) {
	days := ExtractPDFTable(pdfWeekTable())
	if len(days) != 3 {
		t.Fatalf("got %d days, want 3: %v", len(days), days)
	}

	monday := days["2025-09-01"]
	if monday.Weekday != "Montag" {
		t.Errorf("weekday = %q, want Montag", monday.Weekday)
	}
	// Continuation rows extend the open category until the next boundary.
	if got := monday.Meals[plan.CategoryTagesgericht]; got != "Rinderbraten mit Soße dazu Reis" {
		t.Errorf("Tagesgericht = %q, continuation row not accumulated", got)
	}
	if got := days["2025-09-03"].Meals[plan.CategoryTagesgericht]; got != "Gulasch" {
		t.Errorf("empty continuation cell must not change %q", got)
	}
	if got := monday.Meals[plan.CategoryVegetarisch]; got != "Gemüsebratling" {
		t.Errorf("Vegetarisch = %q", got)
	}
	if got := monday.Meals[plan.CategoryPizzaPasta]; got != "Pizza Salami" {
		t.Errorf("Pizza & Pasta = %q", got)
	}
}

func TestExtractPDFTableNoHeader(t *testing.T) {
	table := [][]string{
		{"Tagesgericht", "Braten"},
		{"Vegetarisch", "Auflauf"},
	}
	if days := ExtractPDFTable(table); len(days) != 0 {
		t.Errorf("table without weekday header produced %v", days)
	}
}

func TestExtractPDFTableShort(t *testing.T) {
	if days := ExtractPDFTable([][]string{{"Montag 01.09.2025"}}); len(days) != 0 {
		t.Errorf("single-row table produced %v", days)
	}
}

// Days whose columns stay empty through the whole table are dropped.
func TestExtractPDFTableDropsEmptyDays(t *testing.T) {
	table := [][]string{
		{"", "Montag 01.09.2025", "Dienstag 02.09.2025"},
		{"Tagesgericht", "Braten", ""},
	}
	days := ExtractPDFTable(table)
	if len(days) != 1 {
		t.Fatalf("got %d days, want 1: %v", len(days), days)
	}
	if _, ok := days["2025-09-02"]; ok {
		t.Errorf("day without meals must be dropped")
	}
}

// Two-week documents carry one table per week; the page union keeps both.
func TestExtractPDFPageUnionsTables(t *testing.T) {
	page := PDFPage{
		Tables: [][][]string{
			{
				{"", "Montag 01.09.2025"},
				{"Tagesgericht", "Braten"},
			},
			{
				{"", "Montag 08.09.2025"},
				{"Tagesgericht", "Fischfilet"},
			},
		},
	}
	days := ExtractPDFPage(page)
	if len(days) != 2 {
		t.Fatalf("got %d days, want 2: %v", len(days), days)
	}
	if days["2025-09-08"].Meals[plan.CategoryTagesgericht] != "Fischfilet" {
		t.Errorf("second table lost: %v", days)
	}
}

// Two-digit years in the header are accepted.
func TestExtractPDFTableShortYear(t *testing.T) {
	table := [][]string{
		{"", "Montag 01.09.25"},
		{"Tagesgericht", "Braten"},
	}
	days := ExtractPDFTable(table)
	if _, ok := days["2025-09-01"]; !ok {
		t.Errorf("two-digit year not parsed: %v", days)
	}
}

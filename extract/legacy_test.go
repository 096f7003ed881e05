package extract

import (
	"testing"

	"github.com/crwntec/mensaLog/plan"
)

func text(s string) Cell    { return Cell{Kind: CellText, Text: s} }
func number(f float64) Cell { return Cell{Kind: CellNumber, Number: f} }

// Serials 45901..45905 are 2025-09-01 (Monday) through 2025-09-05 (Friday).
const mondaySerial = 45901

func legacyWeekGrid() *Grid {
	return NewGrid([][]Cell{
		{text("Speiseplan")},
		{},
		{text("KW 36"), number(mondaySerial), number(mondaySerial + 1), number(mondaySerial + 2), number(mondaySerial + 3), number(mondaySerial + 4)},
		{text("Tagesgericht"), text("Rinderbraten (a1) mit Soße"), text("Schnitzel"), text("Gulasch"), text("Braten"), text("Fischfilet")},
		{text("Vegetarisch"), text("Gemüsebratling"), text("Auflauf"), text("Quiche"), text("Bratling"), text("Curry")},
		{text("Pizza/Pasta"), text("Pizza Salami"), text("Penne"), text("Lasagne"), text("Spaghetti"), text("Tortellini")},
		{text("Wok"), text("Gebratene Nudeln"), text("Reis süß-sauer"), text(""), text("Wok-Gemüse"), text("Curry-Huhn")},
	})
}

func TestExtractLegacyWeek(t *testing.T) {
	days := ExtractLegacy(legacyWeekGrid())
	if len(days) != 5 {
		t.Fatalf("got %d days, want 5: %v", len(days), days)
	}

	monday, ok := days["2025-09-01"]
	if !ok {
		t.Fatalf("missing 2025-09-01, got keys %v", days)
	}
	if monday.Weekday != "Monday" {
		t.Errorf("weekday = %q, want Monday", monday.Weekday)
	}
	if got := monday.Meals[plan.CategoryTagesgericht]; got != "Rinderbraten mit Soße" {
		t.Errorf("Tagesgericht = %q, additive code should be stripped", got)
	}
	if got := monday.Meals[plan.CategoryPizzaPasta]; got != "Pizza Salami" {
		t.Errorf("Pizza & Pasta = %q, label variant should canonicalize", got)
	}

	// Wednesday has an empty Wok cell; the category is simply absent.
	wednesday := days["2025-09-03"]
	if _, ok := wednesday.Meals[plan.CategoryWok]; ok {
		t.Errorf("empty cell must not produce a category entry")
	}
	if len(wednesday.Meals) != 3 {
		t.Errorf("got %d categories for Wednesday, want 3", len(wednesday.Meals))
	}
}

// A column whose date cell is not a serial is skipped entirely.
func TestExtractLegacySkipsNonDateColumns(t *testing.T) {
	g := NewGrid([][]Cell{
		{},
		{},
		{text("Gericht"), number(mondaySerial), text("Feiertag")},
		{text("Tagesgericht"), text("Braten"), text("geschlossen")},
	})
	days := ExtractLegacy(g)
	if len(days) != 1 {
		t.Fatalf("got %d days, want 1", len(days))
	}
	if _, ok := days["2025-09-01"]; !ok {
		t.Errorf("expected only 2025-09-01, got %v", days)
	}
}

// Sniffing finds the date row away from the default position.
func TestSniffLegacyLayoutOffset(t *testing.T) {
	g := NewGrid([][]Cell{
		{text("Mensa am Park"), number(mondaySerial), number(mondaySerial + 1)},
		{text("Tagesgericht"), text("Braten"), text("Schnitzel")},
	})
	days := ExtractLegacy(g)
	if len(days) != 2 {
		t.Fatalf("got %d days, want 2", len(days))
	}
	if days["2025-09-01"].Meals[plan.CategoryTagesgericht] != "Braten" {
		t.Errorf("unexpected extraction: %v", days)
	}
}

func TestExtractLegacyEmptyGrid(t *testing.T) {
	if days := ExtractLegacy(NewGrid(nil)); len(days) != 0 {
		t.Errorf("empty grid produced %v", days)
	}
}

func TestSheetWeekMarker(t *testing.T) {
	cases := []struct {
		cell string
		want int
		ok   bool
	}{
		{"KW 36", 36, true},
		{"kw2", 2, true},
		{"Speiseplan KW 07", 7, true},
		{"Speiseplan", 0, false},
	}
	for _, tc := range cases {
		g := NewGrid([][]Cell{{text(tc.cell)}})
		week, ok := SheetWeekMarker(g)
		if ok != tc.ok || week != tc.want {
			t.Errorf("SheetWeekMarker(%q) = (%d, %v), want (%d, %v)", tc.cell, week, ok, tc.want, tc.ok)
		}
	}
}

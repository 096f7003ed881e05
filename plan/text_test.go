package plan

import "testing"

func TestCleanMealText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Rinderbraten mit Soße", "Rinderbraten mit Soße"},
		{"trims", "  Rinderbraten  ", "Rinderbraten"},
		{"newlines become spaces", "Rinderbraten\nmit Soße\ndazu Reis", "Rinderbraten mit Soße dazu Reis"},
		{"carriage returns dropped", "Rinderbraten\r\nmit Soße", "Rinderbraten mit Soße"},
		{"additive codes stripped", "Gnocchi (a1,c) mit Pfannengemüse", "Gnocchi mit Pfannengemüse"},
		{"numeric codes stripped", "Currywurst (2,3) mit Pommes", "Currywurst mit Pommes"},
		{"annotations with spaces kept", "Braten (mit Speck) dazu Knödel", "Braten (mit Speck) dazu Knödel"},
		{"whitespace collapsed", "Pasta   mit    Tomatensoße", "Pasta mit Tomatensoße"},
		{"compatibility normalization", "Kartoffelauﬂauf", "Kartoffelauflauf"},
		{"empty", "", ""},
		{"only annotation", "(a1,c)", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CleanMealText(tc.in); got != tc.want {
				t.Errorf("CleanMealText(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeLabel(t *testing.T) {
	if got := NormalizeLabel("  Pizza & Pasta  "); got != "Pizza & Pasta" {
		t.Errorf("NormalizeLabel = %q", got)
	}
}

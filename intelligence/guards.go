package intelligence

import "strings"

// proteinGroups are mutually exclusive keyword groups. Two dishes whose
// texts fall into different groups are never merged, whatever their score:
// "Rinderbraten" and "Schweinebraten" read almost identically to the model
// but are different meals.
var proteinGroups = [][]string{
	{"rind", "rindfleisch"},
	{"schwein", "schweinefleisch"},
	{"hähnchen", "huhn", "geflügel", "pute"},
	{"lamm"},
	{"fisch", "lachs", "seelachs", "dorsch", "hoki"},
}

// skipList holds dish texts that must never be merged with anything; each
// scored as a duplicate of a genuinely different dish at least once.
var skipList = map[string]struct{}{
	"Chili sin Carne  mit Mais, Bohnen dazu Baguette":    {},
	"Gemüsebratling mit Currysauce dazu Reis":            {},
	"Gnocchi a1.c mit tomatisiertem Pfannengemüse und K": {}, // different from Schupfnudeln
	"Fischfrikadelle mit Joghurtremoulade dazu Kartoffe": {}, // different from Fischfilet in Backteig
}

// proteinGroup returns the index of the protein group the text mentions,
// or false when none matches.
func proteinGroup(text string) (int, bool) {
	t := strings.ToLower(text)
	for i, group := range proteinGroups {
		for _, keyword := range group {
			if strings.Contains(t, keyword) {
				return i, true
			}
		}
	}
	return 0, false
}

// guardedPair reports whether the merge guards block merging the two texts,
// with a short reason for logging.
func guardedPair(nameA, nameB string) (string, bool) {
	ga, okA := proteinGroup(nameA)
	gb, okB := proteinGroup(nameB)
	if okA && okB && ga != gb {
		return "protein mismatch", true
	}
	if _, ok := skipList[nameA]; ok {
		return "skip list", true
	}
	if _, ok := skipList[nameB]; ok {
		return "skip list", true
	}
	return "", false
}

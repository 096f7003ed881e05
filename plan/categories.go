package plan

import "strings"

// Canonical menu categories. Every label found in a source document is
// normalized to one of these four before storage.
const (
	CategoryTagesgericht = "Tagesgericht"
	CategoryVegetarisch  = "Vegetarisch"
	CategoryPizzaPasta   = "Pizza & Pasta"
	CategoryWok          = "Wok"
)

// Categories lists the canonical categories in keyword-priority order. When a
// raw label matches more than one keyword, the earlier entry wins.
var Categories = []string{
	CategoryTagesgericht,
	CategoryVegetarisch,
	CategoryPizzaPasta,
	CategoryWok,
}

// CategoryRule maps a lower-cased label keyword to its canonical category.
type CategoryRule struct {
	Keyword   string
	Canonical string
}

// CategoryRules is the ordered keyword table used for substring matching,
// evaluated first-match-wins. It covers the canonical names themselves plus
// historical label variants seen in older sheets.
var CategoryRules = []CategoryRule{
	{"tagesgericht", CategoryTagesgericht},
	{"tagesessen", CategoryTagesgericht},
	{"vegetarisch", CategoryVegetarisch},
	{"veggie", CategoryVegetarisch},
	{"pizza & pasta", CategoryPizzaPasta},
	{"pizza", CategoryPizzaPasta},
	{"pasta", CategoryPizzaPasta},
	{"wok", CategoryWok},
}

// MatchCategory reports the canonical category whose keyword occurs in the
// label (case-insensitive substring), if any.
func MatchCategory(label string) (string, bool) {
	l := strings.ToLower(strings.TrimSpace(label))
	if l == "" {
		return "", false
	}
	for _, rule := range CategoryRules {
		if strings.Contains(l, rule.Keyword) {
			return rule.Canonical, true
		}
	}
	return "", false
}

// Canonical returns the canonical category for a raw label, or the trimmed
// label unchanged when no keyword matches.
func Canonical(label string) string {
	if c, ok := MatchCategory(label); ok {
		return c
	}
	return strings.TrimSpace(label)
}

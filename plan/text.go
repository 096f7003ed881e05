package plan

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// additiveCode matches parenthesized allergen/additive annotations such as
// "(a1,c)" or "(3)". Annotations containing spaces are left alone.
var additiveCode = regexp.MustCompile(`\([^ ]*\)`)

// CleanMealText canonicalizes a raw dish cell: NFKC normalization, newlines
// collapsed to spaces, additive-code annotations stripped, whitespace
// collapsed and trimmed.
func CleanMealText(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", " ")
	s = additiveCode.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeLabel trims and NFKC-normalizes a header or category label without
// touching its inner punctuation.
func NormalizeLabel(s string) string {
	return strings.TrimSpace(norm.NFKC.String(s))
}

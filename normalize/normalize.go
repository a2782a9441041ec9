package normalize

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize returns the canonical lookup key for raw item text.
// It never fails; empty or whitespace-only input yields "".
func Normalize(raw string) string {
	s := fold(raw)
	if target, ok := synonyms[s]; ok {
		return target
	}
	return s
}

// fold applies the case, width and whitespace folding without synonym lookup.
func fold(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	s = strings.ToLower(norm.NFKC.String(s))
	return strings.Join(strings.Fields(s), " ")
}

// Synonym reports the canonical target for a folded name, if one exists.
func Synonym(name string) (string, bool) {
	target, ok := synonyms[fold(name)]
	return target, ok
}

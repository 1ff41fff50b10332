package phonetic

import (
	"strings"
	"unicode/utf8"

	"github.com/antzucaro/matchr"
)

// Levenshtein is the case-insensitive edit distance between a and b, with
// unit cost for insertion, deletion and substitution.
func Levenshtein(a, b string) int {
	return matchr.Levenshtein(strings.ToLower(a), strings.ToLower(b))
}

// Similarity is 1 - lev(a,b)/max(|a|,|b|), measured in runes.
// Two empty strings are identical.
func Similarity(a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(Levenshtein(a, b))/float64(longest)
}

// JaroWinkler is the case-insensitive Jaro-Winkler similarity in [0,1], used
// to rank free-text search results.
func JaroWinkler(a, b string) float64 {
	return matchr.JaroWinkler(strings.ToLower(a), strings.ToLower(b), false)
}

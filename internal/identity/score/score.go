// Package score turns a (candidate, query) pair into a confidence in [0,1].
//
// The model is additive: phonetic and lexical agreement are counted
// separately, then a Levenshtein bonus is added on top. Weights are kept in
// hundredths so threshold comparisons downstream are exact.
package score

import (
	"strings"

	"lineage/internal/identity/names"
	"lineage/internal/identity/phonetic"
)

// Weights in hundredths of confidence.
const (
	pointsLastSoundex  = 25
	pointsFirstSoundex = 25
	pointsLastExact    = 15
	pointsFirstExact   = 15
	pointsLastInitial  = 10
	pointsFirstInitial = 10
	pointsMax          = 100
)

// similarityBands maps a minimum similarity to its bonus, highest band first.
var similarityBands = []struct {
	min    float64
	points int
}{
	{0.90, 50},
	{0.85, 40},
	{0.80, 30},
	{0.70, 20},
	{0.60, 10},
}

// Name is one side of a comparison: the full spelling and its parsed parts.
type Name struct {
	Full  string
	First string
	Last  string
}

// NameOf parses a full name into a Name.
func NameOf(full string) Name {
	p := names.Parse(full)
	return Name{Full: names.Normalize(full), First: p.First, Last: p.Last}
}

// Confidence scores candidate against query. Identical spellings (ignoring
// case) score exactly 1.0.
func Confidence(candidate, query Name) float64 {
	if strings.EqualFold(candidate.Full, query.Full) {
		return 1.0
	}
	points := componentPoints(candidate.First, query.First, pointsFirstSoundex, pointsFirstExact, pointsFirstInitial) +
		componentPoints(candidate.Last, query.Last, pointsLastSoundex, pointsLastExact, pointsLastInitial) +
		SimilarityBonus(phonetic.Similarity(candidate.Full, query.Full))
	return float64(min(max(points, 0), pointsMax)) / 100
}

// SimilarityBonus is the Levenshtein bonus in hundredths for a similarity.
func SimilarityBonus(sim float64) int {
	for _, band := range similarityBands {
		if sim >= band.min {
			return band.points
		}
	}
	return 0
}

// componentPoints scores one name component. Empty components never agree,
// so a missing first name on both sides earns nothing.
func componentPoints(a, b string, soundexPts, exactPts, initialPts int) int {
	if a == "" || b == "" {
		return 0
	}
	points := 0
	if sa := phonetic.Soundex(a); sa != "" && sa == phonetic.Soundex(b) {
		points += soundexPts
	}
	if strings.EqualFold(a, b) {
		points += exactPts
	}
	if ia := Initial(a); ia != 0 && ia == Initial(b) {
		points += initialPts
	}
	return points
}

// Initial is the uppercased first letter of a name component, or 0.
func Initial(s string) byte {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' {
			return c - 'a' + 'A'
		}
		if c >= 'A' && c <= 'Z' {
			return c
		}
	}
	return 0
}

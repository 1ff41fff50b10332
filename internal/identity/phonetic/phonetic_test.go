package phonetic

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSoundex(t *testing.T) {
	cases := map[string]string{
		"Swailes":  "S420",
		"Swales":   "S420",
		"swailes":  "S420",
		"Key":      "K000",
		"Robert":   "R163",
		"Rupert":   "R163",
		"Ashcraft": "A261",
		"Pfister":  "P236",
		"Tymczak":  "T520",
		"Lee":      "L000",
		"O'Neal":   "O540",
	}
	for name, want := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, want, Soundex(name))
		})
	}

	t.Run("no letters encodes to empty", func(t *testing.T) {
		assert.Equal(t, "", Soundex(""))
		assert.Equal(t, "", Soundex("  1848 "))
	})

	t.Run("always one letter and three digits", func(t *testing.T) {
		shape := regexp.MustCompile(`^[A-Z]\d{3}$`)
		for _, name := range []string{"A", "Ng", "Washington", "Bbbbbbb", "Hhhh", "Yvonne", "Zachariah", "x"} {
			assert.Regexp(t, shape, Soundex(name), name)
		}
	})

	t.Run("first letter is never merged across names", func(t *testing.T) {
		kolman, holman := Soundex("Kolman"), Soundex("Holman")
		assert.NotEqual(t, kolman, holman)
		assert.Equal(t, kolman[1:], holman[1:])
	})
}

func TestMetaphone(t *testing.T) {
	t.Run("rewrite-equivalent spellings share a key", func(t *testing.T) {
		pairs := [][2]string{
			{"Philips", "Filips"},
			{"Knight", "Night"},
			{"Wright", "Right"},
			{"Jackson", "Jakson"},
			{"Schmidt", "Skmidt"},
			{"Whitaker", "Witaker"},
			{"Cecil", "Sesil"},
			{"Quincy", "Kuinsy"},
			{"Dumb", "Dum"},
		}
		for _, p := range pairs {
			assert.Equal(t, Metaphone(p[1]), Metaphone(p[0]), "%s vs %s", p[0], p[1])
		}
	})

	t.Run("keeps first character and strips interior vowels", func(t *testing.T) {
		assert.Equal(t, "SWLS", Metaphone("Swailes"))
		assert.Equal(t, "ALN", Metaphone("Allen"))
		assert.Equal(t, "JRJ", Metaphone("George"))
	})

	t.Run("truncates to eight characters", func(t *testing.T) {
		assert.LessOrEqual(t, len(Metaphone("Brandenburgerschmidtstrasse")), 8)
	})

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, Metaphone("Swailes"), Metaphone("SWAILES"))
	})

	t.Run("no letters encodes to empty", func(t *testing.T) {
		assert.Equal(t, "", Metaphone(""))
		assert.Equal(t, "", Metaphone("--"))
	})

	t.Run("encoding a key again is stable", func(t *testing.T) {
		keys := map[string]string{
			"Smith":     "SM0",
			"Thomas":    "0MS",
			"Thompson":  "0MPSN",
			"Catherine": "K0RN",
			"Elizabeth": "ELZB0",
			"Swailes":   "SWLS",
			"Phillips":  "FLPS",
			"Schmidt":   "SKMDT",
			"Knight":    "NT",
			"Lamb":      "LM",
		}
		for name, want := range keys {
			key := Metaphone(name)
			assert.Equal(t, want, key, name)
			assert.Equal(t, key, Metaphone(key), "re-encoding %s", name)
		}
	})

	t.Run("simpler spelling encodes like the original", func(t *testing.T) {
		assert.Equal(t, Metaphone("Smith"), Metaphone("Smi0"))
		assert.Equal(t, Metaphone("Philips"), Metaphone(Metaphone("Filips")))
	})

	t.Run("SH output collides with the X rewrite", func(t *testing.T) {
		// X from SH is a Metaphone output symbol but also a rewrite source.
		assert.Equal(t, "XW", Metaphone("Shaw"))
		assert.Equal(t, "KSW", Metaphone("XW"))
	})
}

func TestLevenshtein(t *testing.T) {
	t.Run("known distances", func(t *testing.T) {
		assert.Equal(t, 3, Levenshtein("kitten", "sitting"))
		assert.Equal(t, 1, Levenshtein("Sally Swailes", "Sally Swailer"))
		assert.Equal(t, 0, Levenshtein("SWAILES", "swailes"))
		assert.Equal(t, 4, Levenshtein("", "Ruth"))
	})

	words := []string{"", "a", "Swailes", "Swales", "Swann", "Swailer", "Holman", "Kolman"}

	t.Run("identity and symmetry", func(t *testing.T) {
		for _, a := range words {
			assert.Equal(t, 0, Levenshtein(a, a))
			for _, b := range words {
				assert.Equal(t, Levenshtein(a, b), Levenshtein(b, a))
			}
		}
	})

	t.Run("triangle inequality", func(t *testing.T) {
		for _, a := range words {
			for _, b := range words {
				for _, c := range words {
					require.LessOrEqual(t, Levenshtein(a, c), Levenshtein(a, b)+Levenshtein(b, c))
				}
			}
		}
	})
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0-1.0/13.0, Similarity("Sally Swailes", "Sally Swailer"), 1e-9)
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 1.0, Similarity("Ruth", "ruth"))
	assert.Equal(t, 0.0, Similarity("abc", "xyz"))
}

func TestJaroWinkler(t *testing.T) {
	assert.InDelta(t, 1.0, JaroWinkler("Swailes", "swailes"), 1e-9)
	assert.Greater(t, JaroWinkler("Swailes", "Swales"), JaroWinkler("Swailes", "Johnson"))
}

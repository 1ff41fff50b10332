package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfidence(t *testing.T) {
	swailes := NameOf("Sally Swailes")
	swann := NameOf("Sally Swann")

	t.Run("identical spelling ignoring case is exactly 1.0", func(t *testing.T) {
		assert.Equal(t, 1.0, Confidence(swailes, NameOf("sally SWAILES")))
	})

	t.Run("single OCR substitution clamps to 1.0", func(t *testing.T) {
		assert.Equal(t, 1.0, Confidence(swailes, NameOf("Sally Swailer")))
	})

	cases := []struct {
		name      string
		candidate Name
		query     string
		want      float64
	}{
		{"different first name, same surname", swailes, "Sarah Swailes", 0.8},
		{"same first name, surname shares initial", swailes, "Sally Salmon", 0.7},
		{"same first name, short surname", swann, "Sally Salmon", 0.7},
		{"surname only agreement", swailes, "Ann Swailes", 0.6},
		{"nothing in common", swailes, "William Key", 0},
		{"missing surname earns no surname points", swailes, "Sally", 0.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Confidence(tc.candidate, NameOf(tc.query)))
		})
	}

	t.Run("always within [0,1]", func(t *testing.T) {
		queries := []string{"", "S", "Sally Swale", "Swailes Sally", "Sally Sally Sally Swailes Jr"}
		for _, q := range queries {
			got := Confidence(swailes, NameOf(q))
			assert.GreaterOrEqual(t, got, 0.0, q)
			assert.LessOrEqual(t, got, 1.0, q)
		}
	})
}

func TestSimilarityBonus(t *testing.T) {
	cases := map[float64]int{
		1.0:   50,
		0.90:  50,
		0.899: 40,
		0.85:  40,
		0.80:  30,
		0.70:  20,
		0.60:  10,
		0.599: 0,
		0:     0,
	}
	for sim, want := range cases {
		assert.Equal(t, want, SimilarityBonus(sim), "sim %v", sim)
	}
}

func TestInitial(t *testing.T) {
	assert.Equal(t, byte('S'), Initial("sally"))
	assert.Equal(t, byte('O'), Initial("O'Neal"))
	assert.Equal(t, byte(0), Initial(""))
	assert.Equal(t, byte(0), Initial("'"))
}

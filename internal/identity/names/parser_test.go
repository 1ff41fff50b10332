package names

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Parsed
	}{
		{"empty string", "", Parsed{}},
		{"whitespace only", "  \n\t ", Parsed{}},
		{"single token", "Sally", Parsed{First: "Sally"}},
		{"first and last", "Sally Swailes", Parsed{First: "Sally", Last: "Swailes"}},
		{"middle names joined", "Mary Ann Elizabeth Key", Parsed{First: "Mary", Middle: "Ann Elizabeth", Last: "Key"}},
		{"suffix with punctuation", "William Key, Jr.", Parsed{First: "William", Last: "Key", Suffix: "Jr."}},
		{"roman numeral suffix", "John Henry Carroll III", Parsed{First: "John", Middle: "Henry", Last: "Carroll", Suffix: "III"}},
		{"suffix only", "Sr", Parsed{Suffix: "Sr"}},
		{"collapses OCR whitespace", "  Sally \n  Swailes ", Parsed{First: "Sally", Last: "Swailes"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.input))
		})
	}
}

func TestJoinRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"Sally",
		"Sally Swailes",
		"Mary Ann Elizabeth Key",
		"John Henry Carroll III",
		"Charles Carroll Jr.",
		"V",
	}
	for _, input := range inputs {
		parsed := Parse(input)
		assert.Equal(t, parsed, Parse(Join(parsed)), input)
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "Sally Swailes", Normalize("\tSally\r\n  Swailes  "))
	assert.Equal(t, "", Normalize("   "))
}

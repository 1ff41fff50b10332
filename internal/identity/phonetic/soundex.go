// Package phonetic holds the pure name encoders used for candidate retrieval:
// American Soundex, a simplified Metaphone, and case-insensitive edit distance.
//
// The mapping tables are built once at package initialisation and never change.
package phonetic

import "strings"

// soundexDigits maps 'A'..'Z' to their Soundex digit. Vowels, H, W and Y map to '0'.
var soundexDigits = buildSoundexDigits()

func buildSoundexDigits() [26]byte {
	var table [26]byte
	for i := range table {
		table[i] = '0'
	}
	groups := map[byte]string{
		'1': "BFPV",
		'2': "CGJKQSXZ",
		'3': "DT",
		'4': "L",
		'5': "MN",
		'6': "R",
	}
	for digit, letters := range groups {
		for i := 0; i < len(letters); i++ {
			table[letters[i]-'A'] = digit
		}
	}
	return table
}

const soundexLength = 4

// Soundex encodes a name component as one letter followed by three digits.
// Returns "" when the input has no ASCII letters.
func Soundex(name string) string {
	letters := asciiLetters(name)
	if letters == "" {
		return ""
	}

	out := make([]byte, 0, soundexLength)
	out = append(out, letters[0])
	prev := soundexDigits[letters[0]-'A']
	var lastEmitted byte

	for i := 1; i < len(letters) && len(out) < soundexLength; i++ {
		digit := soundexDigits[letters[i]-'A']
		if digit != '0' && digit != prev && digit != lastEmitted {
			out = append(out, digit)
			lastEmitted = digit
		}
		// the preceding letter's mapping counts even when it emitted nothing
		prev = digit
	}

	for len(out) < soundexLength {
		out = append(out, '0')
	}
	return string(out)
}

// asciiLetters uppercases s and drops everything outside A-Z.
func asciiLetters(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToUpper(s) {
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

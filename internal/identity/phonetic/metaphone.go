package phonetic

import "strings"

const metaphoneMaxLength = 8

type rewrite func(string) string

// metaphoneRewrites is applied once, in order. It is not iterated to a fixed
// point, so output symbols such as X (from SH) are not rewritten again.
var metaphoneRewrites = []rewrite{
	replaceInitial(map[string]string{"KN": "N", "GN": "N", "PN": "N", "WR": "R", "WH": "W"}),
	replaceTrailing("MB", "M"),
	replaceAll("X", "KS"),
	replaceAll("SCH", "SK"),
	replaceAll("PH", "F"),
	replaceAll("CK", "K"),
	replaceAll("SH", "X"),
	replaceAll("TH", "0"),
	replaceBeforeFront('C', 'S'),
	replaceAll("C", "K"),
	replaceAll("Q", "K"),
	replaceBeforeFront('G', 'J'),
	hardG,
	replaceAll("GH", ""),
}

// Metaphone returns a simplified Metaphone key of at most 8 characters.
// TH encodes as the digit '0', and a '0' in the input is read back as that
// symbol so encoding a key again leaves TH intact. Returns "" when the input
// has no ASCII letters.
func Metaphone(name string) string {
	word := metaphoneSymbols(name)
	if word == "" {
		return ""
	}
	for _, rw := range metaphoneRewrites {
		word = rw(word)
	}
	if word == "" {
		return ""
	}

	collapsed := make([]byte, 0, len(word))
	for i := 0; i < len(word); i++ {
		if i > 0 && word[i] == word[i-1] {
			continue
		}
		collapsed = append(collapsed, word[i])
	}

	out := collapsed[:1]
	for _, c := range collapsed[1:] {
		if isVowel(c) {
			continue
		}
		out = append(out, c)
	}
	if len(out) > metaphoneMaxLength {
		out = out[:metaphoneMaxLength]
	}
	return string(out)
}

// metaphoneSymbols uppercases s and keeps A-Z plus the encoded TH symbol '0'.
func metaphoneSymbols(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToUpper(s) {
		if (r >= 'A' && r <= 'Z') || r == '0' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func replaceInitial(prefixes map[string]string) rewrite {
	return func(s string) string {
		if len(s) < 2 {
			return s
		}
		if to, ok := prefixes[s[:2]]; ok {
			return to + s[2:]
		}
		return s
	}
}

func replaceTrailing(suffix, to string) rewrite {
	return func(s string) string {
		if strings.HasSuffix(s, suffix) {
			return s[:len(s)-len(suffix)] + to
		}
		return s
	}
}

func replaceAll(from, to string) rewrite {
	return func(s string) string {
		return strings.ReplaceAll(s, from, to)
	}
}

// replaceBeforeFront rewrites letter to soft when it precedes I, E or Y.
func replaceBeforeFront(letter, soft byte) rewrite {
	return func(s string) string {
		b := []byte(s)
		for i := 0; i+1 < len(b); i++ {
			if b[i] == letter && isFrontVowel(b[i+1]) {
				b[i] = soft
			}
		}
		return string(b)
	}
}

// hardG turns every remaining G into K except in GH, which the next rule drops.
func hardG(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] == 'G' && (i+1 == len(b) || b[i+1] != 'H') {
			b[i] = 'K'
		}
	}
	return string(b)
}

func isFrontVowel(c byte) bool {
	return c == 'I' || c == 'E' || c == 'Y'
}

func isVowel(c byte) bool {
	switch c {
	case 'A', 'E', 'I', 'O', 'U':
		return true
	}
	return false
}

// Package names splits a full-name string into first, middle, last and suffix.
package names

import "strings"

// Parsed holds the components of a name; any may be empty.
type Parsed struct {
	First  string `json:"first"`
	Middle string `json:"middle"`
	Last   string `json:"last"`
	Suffix string `json:"suffix"`
}

var suffixes = map[string]struct{}{
	"JR": {}, "SR": {}, "II": {}, "III": {}, "IV": {}, "V": {},
}

// Normalize trims the name and collapses runs of whitespace, including
// newlines from OCR output, to single spaces.
func Normalize(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// Parse splits a name into components. A trailing generational suffix
// (Jr, Sr, II, III, IV, V; dots and commas ignored) moves into Suffix, and
// the comma separating it from the preceding token is dropped.
func Parse(name string) Parsed {
	tokens := strings.Fields(name)
	var p Parsed

	if n := len(tokens); n > 0 {
		key := strings.ToUpper(strings.NewReplacer(".", "", ",", "").Replace(tokens[n-1]))
		if _, ok := suffixes[key]; ok {
			p.Suffix = tokens[n-1]
			tokens = tokens[:n-1]
			if n > 1 {
				tokens[n-2] = strings.TrimRight(tokens[n-2], ",")
			}
		}
	}

	switch len(tokens) {
	case 0:
	case 1:
		p.First = tokens[0]
	case 2:
		p.First, p.Last = tokens[0], tokens[1]
	default:
		p.First = tokens[0]
		p.Last = tokens[len(tokens)-1]
		p.Middle = strings.Join(tokens[1:len(tokens)-1], " ")
	}
	return p
}

// Join reassembles components in first-middle-last-suffix order.
// Parse(Join(p)) == p for any p produced by Parse.
func Join(p Parsed) string {
	parts := make([]string, 0, 4)
	for _, part := range []string{p.First, p.Middle, p.Last, p.Suffix} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, " ")
}

// IsEmpty reports whether neither first nor last name is present.
func (p Parsed) IsEmpty() bool {
	return p.First == "" && p.Last == ""
}

// Package strings holds list helpers for comma-separated settings.
package strings

import (
	"strings"
)

// SplitList splits s on sep, trims each element and drops empty and repeated
// elements. Order is preserved. An empty input yields nil.
//
// Example:
//
//	SplitList(" k1:9092, k2:9092,,k1:9092 ", ",")
//	// Returns: []string{"k1:9092", "k2:9092"}
func SplitList(s, sep string) []string {
	var out []string
	seen := make(map[string]struct{})
	for part := range strings.SplitSeq(s, sep) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, ok := seen[part]; ok {
			continue
		}
		seen[part] = struct{}{}
		out = append(out, part)
	}
	return out
}
